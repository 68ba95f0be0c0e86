// ABOUTME: Decoded identity model derived from the access token payload
// ABOUTME: Parses the JWT without verification; the console never holds the signing key

package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUndecodableToken is returned when a token yields no usable identity
var ErrUndecodableToken = errors.New("access token could not be decoded")

// DecodedUser is the identity carried by an access token.
// It is replaced wholesale on login and refresh, never mutated in place.
type DecodedUser struct {
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}

// accessClaims mirrors the claims the auth server signs into access tokens
type accessClaims struct {
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	EmailVerified bool   `json:"email_verified"`
	PhoneVerified bool   `json:"phone_verified"`
	jwt.RegisteredClaims
}

// Decode maps an access token to a DecodedUser.
func Decode(token string) (*DecodedUser, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrUndecodableToken
	}

	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableToken, err)
	}

	userID := claims.UserID
	if userID == 0 && claims.Subject != "" {
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric subject %q", ErrUndecodableToken, claims.Subject)
		}
		userID = id
	}
	if userID <= 0 {
		return nil, fmt.Errorf("%w: no user id", ErrUndecodableToken)
	}

	u := &DecodedUser{
		UserID:        userID,
		Username:      claims.Username,
		Email:         claims.Email,
		FirstName:     claims.FirstName,
		LastName:      claims.LastName,
		EmailVerified: claims.EmailVerified,
		PhoneVerified: claims.PhoneVerified,
	}
	if claims.ExpiresAt != nil {
		u.ExpiresAt = claims.ExpiresAt.Time
	}
	return u, nil
}

// Expired reports whether the token's expiry has passed. Tokens without exp never expire here.
func (u *DecodedUser) Expired(now time.Time) bool {
	if u == nil {
		return true
	}
	return !u.ExpiresAt.IsZero() && !now.Before(u.ExpiresAt)
}

// DisplayName prefers the full name, then username, then email
func (u *DecodedUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
