// ABOUTME: Sign-in form values, their validation and the messages shown when sign-in fails
// ABOUTME: Shared by the console login screen and the login command

package signin

import (
	"errors"

	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/query"
	"github.com/markalston/centralauth-console/internal/session"
	"github.com/markalston/centralauth-console/internal/validate"
)

// Messages shown when sign-in fails without a server message
const (
	MsgFailed        = "Login failed. Please try again."
	MsgUnreachable   = "Could not reach the server. Please try again."
	MsgInvalidSignIn = "The server returned an invalid session. Please try again."
)

// Values is the content of the sign-in form.
type Values struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var schema = validate.New(validate.Messages{
	"email":    "Please enter a valid email address",
	"password": "Password is required",
})

// Validate returns nil or a *validate.ValidationError.
func (v Values) Validate() error {
	return schema.Struct(v)
}

// Request builds the login payload.
func (v Values) Request() client.LoginRequest {
	return client.LoginRequest{Email: v.Email, Password: v.Password}
}

// ErrorMessage turns a failed sign-in into the text shown to the user.
// Raw error strings are never shown.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if ve, ok := validate.AsValidationError(err); ok {
		for _, f := range ve.Fields.Fields() {
			return ve.Fields[f]
		}
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Description != "" {
			return apiErr.Description
		}
		return MsgFailed
	}

	var te *client.TransportError
	if errors.As(err, &te) {
		return MsgUnreachable
	}

	if errors.Is(err, session.ErrUndecodableToken) || errors.Is(err, query.ErrEmptyResponse) {
		return MsgInvalidSignIn
	}
	return MsgFailed
}
