// ABOUTME: Query hooks binding API calls to the session store and the query cache
// ABOUTME: Login, register, logout, refresh and the OAuth client operations

package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/markalston/centralauth-console/internal/cache"
	"github.com/markalston/centralauth-console/internal/client"
	"github.com/markalston/centralauth-console/internal/session"
)

// ErrEmptyResponse is returned when the server reports success without a payload.
var ErrEmptyResponse = errors.New("server returned an empty response")

// ErrNoRefreshToken is returned by Refresh when the session holds no refresh token.
var ErrNoRefreshToken = errors.New("no refresh token in session")

// ErrInvalidClientID is returned by Client for a non-positive id.
var ErrInvalidClientID = errors.New("invalid client id")

const (
	keyClientList   = "clients:list"
	keyClientPrefix = "clients:"
)

// API is the subset of the CentralAuth client the hooks depend on.
type API interface {
	Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResponse, error)
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResponse, error)
	Refresh(ctx context.Context, req client.RefreshRequest) (*client.RefreshResponse, error)
	Logout(ctx context.Context, req client.LogoutRequest) (*client.LogoutResponse, error)
	ListClients(ctx context.Context) (*client.ClientList, error)
	GetClient(ctx context.Context, id int64) (*client.ClientDetail, error)
	CreateClient(ctx context.Context, req client.ClientRequest) (*client.ClientDetail, error)
	UpdateClient(ctx context.Context, id int64, req client.ClientRequest) (*client.ClientDetail, error)
	RegenerateClientSecret(ctx context.Context, id int64) (*client.ClientDetail, error)
	DeleteClient(ctx context.Context, id int64) error
}

// Hooks builds mutations and cached queries over the API.
type Hooks struct {
	api    API
	store  *session.Store
	cache  *cache.Cache
	group  singleflight.Group
	logger *slog.Logger

	// mu guards gens and epoch. A load only stores its result if neither
	// changed while it was fetching.
	mu    sync.Mutex
	gens  map[string]uint64
	epoch uint64
}

// New creates hooks. A nil cache disables query caching.
func New(api API, store *session.Store, c *cache.Cache, logger *slog.Logger) *Hooks {
	if c == nil {
		c = cache.New(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{api: api, store: store, cache: c, logger: logger, gens: make(map[string]uint64)}
}

// Login authenticates and stores the decoded identity. The store is only
// written once the payload and the token have both been checked.
func (h *Hooks) Login() *Mutation[client.LoginRequest, *client.LoginResponse] {
	return &Mutation[client.LoginRequest, *client.LoginResponse]{
		Fn: h.api.Login,
		OnSuccess: func(_ context.Context, _ client.LoginRequest, resp *client.LoginResponse) error {
			if resp == nil || resp.AccessToken == "" {
				return ErrEmptyResponse
			}
			user, err := session.Decode(resp.AccessToken)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			h.purge()
			h.store.SetLogin(user, resp.AccessToken, resp.RefreshToken)
			h.logger.Info("Signed in", "user_id", user.UserID, "username", user.Username)
			return nil
		},
		OnError: func(req client.LoginRequest, err error) {
			h.logger.Warn("Login failed", "email", req.Email, "error", err)
		},
	}
}

// Register creates an account. It does not sign the user in.
func (h *Hooks) Register() *Mutation[client.RegisterRequest, *client.RegisterResponse] {
	return &Mutation[client.RegisterRequest, *client.RegisterResponse]{
		Fn: h.api.Register,
		OnSuccess: func(_ context.Context, req client.RegisterRequest, resp *client.RegisterResponse) error {
			var id int64
			if resp != nil {
				id = resp.UserID
			}
			h.logger.Info("Registered", "username", req.Username, "user_id", id)
			return nil
		},
		OnError: func(req client.RegisterRequest, err error) {
			h.logger.Warn("Registration failed", "username", req.Username, "error", err)
		},
	}
}

// Logout revokes the access token and always clears the local session,
// even when the server call fails.
func (h *Hooks) Logout() *Mutation[struct{}, *client.LogoutResponse] {
	return &Mutation[struct{}, *client.LogoutResponse]{
		Fn: func(ctx context.Context, _ struct{}) (*client.LogoutResponse, error) {
			token := h.store.AccessToken()
			defer func() {
				h.store.ClearAuth()
				h.purge()
			}()
			if token == "" {
				return &client.LogoutResponse{Success: true}, nil
			}
			return h.api.Logout(ctx, client.LogoutRequest{AccessToken: token})
		},
		OnError: func(_ struct{}, err error) {
			h.logger.Warn("Logout request failed, local session cleared anyway", "error", err)
		},
	}
}

// Refresh exchanges the stored refresh token for a new access token.
func (h *Hooks) Refresh() *Mutation[struct{}, *client.RefreshResponse] {
	return &Mutation[struct{}, *client.RefreshResponse]{
		Fn: func(ctx context.Context, _ struct{}) (*client.RefreshResponse, error) {
			rt := h.store.Snapshot().RefreshToken
			if rt == "" {
				return nil, ErrNoRefreshToken
			}
			return h.api.Refresh(ctx, client.RefreshRequest{RefreshToken: rt})
		},
		OnSuccess: func(_ context.Context, _ struct{}, resp *client.RefreshResponse) error {
			if resp == nil || resp.AccessToken == "" {
				return ErrEmptyResponse
			}
			h.store.SetAccessToken(resp.AccessToken)
			return nil
		},
		OnError: func(_ struct{}, err error) {
			h.logger.Warn("Token refresh failed", "error", err)
		},
	}
}

// CreateClient registers a new OAuth client. The response carries the
// one-time secret.
func (h *Hooks) CreateClient() *Mutation[client.ClientRequest, *client.ClientDetail] {
	return &Mutation[client.ClientRequest, *client.ClientDetail]{
		Fn: h.api.CreateClient,
		OnSuccess: func(_ context.Context, _ client.ClientRequest, resp *client.ClientDetail) error {
			if resp == nil {
				return ErrEmptyResponse
			}
			h.invalidate(keyClientList)
			return nil
		},
		OnError: func(req client.ClientRequest, err error) {
			h.logger.Warn("Create client failed", "name", req.Name, "error", err)
		},
	}
}

// UpdateClient edits the client with the given id.
func (h *Hooks) UpdateClient(id int64) *Mutation[client.ClientRequest, *client.ClientDetail] {
	return &Mutation[client.ClientRequest, *client.ClientDetail]{
		Fn: func(ctx context.Context, req client.ClientRequest) (*client.ClientDetail, error) {
			return h.api.UpdateClient(ctx, id, req)
		},
		OnSuccess: func(context.Context, client.ClientRequest, *client.ClientDetail) error {
			h.invalidateClient(id)
			return nil
		},
		OnError: func(_ client.ClientRequest, err error) {
			h.logger.Warn("Update client failed", "id", id, "error", err)
		},
	}
}

// RegenerateSecret issues a new secret for the client with the given id.
func (h *Hooks) RegenerateSecret(id int64) *Mutation[struct{}, *client.ClientDetail] {
	return &Mutation[struct{}, *client.ClientDetail]{
		Fn: func(ctx context.Context, _ struct{}) (*client.ClientDetail, error) {
			return h.api.RegenerateClientSecret(ctx, id)
		},
		OnSuccess: func(_ context.Context, _ struct{}, resp *client.ClientDetail) error {
			if resp == nil {
				return ErrEmptyResponse
			}
			h.invalidateClient(id)
			return nil
		},
		OnError: func(_ struct{}, err error) {
			h.logger.Warn("Regenerate secret failed", "id", id, "error", err)
		},
	}
}

// DeleteClient removes the client with the given id.
func (h *Hooks) DeleteClient(id int64) *Mutation[struct{}, struct{}] {
	return &Mutation[struct{}, struct{}]{
		Fn: func(ctx context.Context, _ struct{}) (struct{}, error) {
			return struct{}{}, h.api.DeleteClient(ctx, id)
		},
		OnSuccess: func(context.Context, struct{}, struct{}) error {
			h.invalidateClient(id)
			return nil
		},
		OnError: func(_ struct{}, err error) {
			h.logger.Warn("Delete client failed", "id", id, "error", err)
		},
	}
}

// Clients returns the caller's OAuth clients.
func (h *Hooks) Clients(ctx context.Context) (*client.ClientList, error) {
	return load(h, keyClientList, func() (*client.ClientList, error) {
		return h.api.ListClients(ctx)
	})
}

// Client returns one OAuth client.
func (h *Hooks) Client(ctx context.Context, id int64) (*client.ClientDetail, error) {
	if id <= 0 {
		return nil, ErrInvalidClientID
	}
	return load(h, clientKey(id), func() (*client.ClientDetail, error) {
		return h.api.GetClient(ctx, id)
	})
}

// Invalidate drops every cached query.
func (h *Hooks) Invalidate() {
	h.purge()
}

func (h *Hooks) invalidateClient(id int64) {
	h.invalidate(keyClientList, clientKey(id))
}

// invalidate drops keys and stops loads already in flight from storing them
func (h *Hooks) invalidate(keys ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, key := range keys {
		h.gens[key]++
		h.cache.Clear(key)
		h.group.Forget(key)
	}
}

// purge drops every cached query, e.g. when the signed-in user changes
func (h *Hooks) purge() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.epoch++
	h.cache.Purge()
	for key := range h.gens {
		h.group.Forget(key)
	}
}

type generation struct {
	epoch, key uint64
}

// generationLocked must be called with mu held
func (h *Hooks) generationLocked(key string) generation {
	return generation{epoch: h.epoch, key: h.gens[key]}
}

func clientKey(id int64) string {
	return keyClientPrefix + strconv.FormatInt(id, 10)
}

// load serves key from the cache, collapsing concurrent misses into one call.
func load[T any](h *Hooks, key string, fetch func() (*T, error)) (*T, error) {
	if v, ok := h.cache.Get(key); ok {
		if typed, ok := v.(*T); ok {
			return typed, nil
		}
	}

	v, err, _ := h.group.Do(key, func() (any, error) {
		h.mu.Lock()
		// Record the key so purge can forget it
		if _, ok := h.gens[key]; !ok {
			h.gens[key] = 0
		}
		started := h.generationLocked(key)
		h.mu.Unlock()

		res, err := fetch()
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, ErrEmptyResponse
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.generationLocked(key) == started {
			h.cache.Set(key, res)
		} else {
			h.logger.Debug("Dropping stale query result", "key", key)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}
