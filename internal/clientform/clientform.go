// ABOUTME: Create/edit form values for OAuth clients and their validation rules
// ABOUTME: Also builds the one-time secret notifications shown after create and regenerate

package clientform

import (
	"errors"
	"time"

	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/notify"
	"github.com/markalston/centralauth-console/internal/validate"
)

// Values is the content of the create and edit forms.
type Values struct {
	Name        string `json:"name" validate:"min=3,max=100"`
	Description string `json:"description" validate:"max=500"`
	Website     string `json:"website" validate:"omitempty,url,max=255"`
	RedirectURI string `json:"redirect_uri" validate:"url,max=255"`
	IsPublic    bool   `json:"is_public"`
}

var schema = validate.New(validate.Messages{
	"name.min":         "Name must be at least 3 characters",
	"name.max":         "Name cannot exceed 100 characters",
	"description.max":  "Description cannot exceed 500 characters",
	"website.url":      "Please enter a valid URL",
	"website.max":      "Website URL cannot exceed 255 characters",
	"redirect_uri.url": "Please enter a valid redirect URI",
	"redirect_uri.max": "Redirect URI cannot exceed 255 characters",
})

// Validate returns nil or a *validate.ValidationError keyed by JSON field.
func (v Values) Validate() error {
	return schema.Struct(v)
}

// FieldError returns the message for one field, or "" when it is valid.
func (v Values) FieldError(field string) string {
	ve, ok := validate.AsValidationError(v.Validate())
	if !ok {
		return ""
	}
	return ve.Fields[field]
}

// FromRecord seeds the edit form from a server record.
func FromRecord(c client.OAuthClient) Values {
	return Values{
		Name:        c.Name,
		Description: c.Description,
		Website:     c.Website,
		RedirectURI: c.RedirectURI,
		IsPublic:    c.IsPublic,
	}
}

// Request builds the create/update payload.
func (v Values) Request() client.ClientRequest {
	return client.ClientRequest{
		Name:        v.Name,
		Description: v.Description,
		Website:     v.Website,
		RedirectURI: v.RedirectURI,
		IsPublic:    v.IsPublic,
	}
}

const (
	createdNoticeDuration     = 15 * time.Second
	regeneratedNoticeDuration = 10 * time.Second
)

// CreatedNotice is shown once after a client is created. ok is false when
// the server returned no secret.
func CreatedNotice(d *client.ClientDetail) (n notify.Notification, ok bool) {
	if d == nil || d.ClientSecret == "" {
		return notify.Notification{}, false
	}
	return notify.Notification{
		Level:    notify.LevelSuccess,
		Title:    "Client created successfully",
		Body:     "Please save your client secret. It will only be shown once:",
		Secret:   d.ClientSecret,
		Duration: createdNoticeDuration,
	}, true
}

// RegeneratedNotice is shown once after a secret is regenerated.
func RegeneratedNotice(d *client.ClientDetail) (n notify.Notification, ok bool) {
	if d == nil || d.ClientSecret == "" {
		return notify.Notification{}, false
	}
	return notify.Notification{
		Level:    notify.LevelSuccess,
		Title:    "Secret regenerated successfully",
		Secret:   d.ClientSecret,
		Duration: regeneratedNoticeDuration,
	}, true
}

// ErrorMessage turns a failed client operation into a notification title.
func ErrorMessage(action string, err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Structured() {
		switch {
		case apiErr.Message != "" && apiErr.Description != "":
			return action + ": " + apiErr.Message + " (" + apiErr.Description + ")"
		case apiErr.Message != "":
			return action + ": " + apiErr.Message
		case apiErr.Description != "":
			return action + ": " + apiErr.Description
		}
	}
	return action + ". Please try again."
}
