// ABOUTME: Authentication endpoints of the CentralAuth API
// ABOUTME: Register, login, token refresh, logout and health

package client

import (
	"context"
	"net/http"
)

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token pair.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       int64  `json:"user_id"`
	ExpireAt     int64  `json:"expire_at"`
}

// RefreshRequest is the payload for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the new access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpireAt    int64  `json:"expire_at"`
}

// LogoutRequest is the payload for POST /auth/logout.
type LogoutRequest struct {
	AccessToken string `json:"access_token"`
}

// LogoutResponse reports whether the server revoked the token.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// HealthResponse represents the /health endpoint response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Version  string `json:"version,omitempty"`
}

// Register calls POST /auth/register
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	return do[RegisterResponse](ctx, c, http.MethodPost, "/auth/register", req)
}

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	return do[LoginResponse](ctx, c, http.MethodPost, "/auth/login", req)
}

// Refresh calls POST /auth/refresh
func (c *Client) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	return do[RefreshResponse](ctx, c, http.MethodPost, "/auth/refresh", req)
}

// Logout calls POST /auth/logout
func (c *Client) Logout(ctx context.Context, req LogoutRequest) (*LogoutResponse, error) {
	return do[LogoutResponse](ctx, c, http.MethodPost, "/auth/logout", req)
}

// Health calls GET /health. A server that answers with an empty body is
// reported as "ok".
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	health, err := do[HealthResponse](ctx, c, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	if health == nil {
		health = &HealthResponse{Status: "ok"}
	}
	return health, nil
}
