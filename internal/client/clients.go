// ABOUTME: OAuth client management endpoints of the CentralAuth API
// ABOUTME: List, get, create, update, regenerate-secret and delete

package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// OAuthClient is an OAuth client registration as listed by the server.
type OAuthClient struct {
	ID          int64     `json:"id"`
	ClientID    string    `json:"client_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	RedirectURI string    `json:"redirect_uri"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClientDetail is an OAuth client with its secret. The server only fills
// ClientSecret on create and regenerate.
type ClientDetail struct {
	OAuthClient
	ClientSecret string `json:"client_secret,omitempty"`
}

// ClientList is the GET /clients payload.
type ClientList struct {
	Clients []OAuthClient `json:"clients"`
	Total   int           `json:"total"`
}

// ClientRequest is the create/update payload.
type ClientRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	RedirectURI string `json:"redirect_uri"`
	IsPublic    bool   `json:"is_public"`
}

// ListClients calls GET /clients
func (c *Client) ListClients(ctx context.Context) (*ClientList, error) {
	list, err := do[ClientList](ctx, c, http.MethodGet, "/clients", nil)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = &ClientList{}
	}
	return list, nil
}

// GetClient calls GET /clients/{id}
func (c *Client) GetClient(ctx context.Context, id int64) (*ClientDetail, error) {
	return do[ClientDetail](ctx, c, http.MethodGet, clientPath(id), nil)
}

// CreateClient calls POST /clients
func (c *Client) CreateClient(ctx context.Context, req ClientRequest) (*ClientDetail, error) {
	return do[ClientDetail](ctx, c, http.MethodPost, "/clients", req)
}

// UpdateClient calls PUT /clients/{id}
func (c *Client) UpdateClient(ctx context.Context, id int64, req ClientRequest) (*ClientDetail, error) {
	return do[ClientDetail](ctx, c, http.MethodPut, clientPath(id), req)
}

// RegenerateClientSecret calls POST /clients/{id}/regenerate-secret
func (c *Client) RegenerateClientSecret(ctx context.Context, id int64) (*ClientDetail, error) {
	return do[ClientDetail](ctx, c, http.MethodPost, clientPath(id)+"/regenerate-secret", nil)
}

// DeleteClient calls DELETE /clients/{id}
func (c *Client) DeleteClient(ctx context.Context, id int64) error {
	_, err := do[struct{}](ctx, c, http.MethodDelete, clientPath(id), nil)
	return err
}

func clientPath(id int64) string {
	return fmt.Sprintf("/clients/%d", id)
}
