// ABOUTME: Auth store holding the current identity and tokens for one console process
// ABOUTME: Every mutation is mirrored to durable storage so a restart rehydrates the session

package session

import (
	"log/slog"
	"sync"
)

// AuthSession is the state owned by the Store.
// IsAuthenticated is true iff both User and AccessToken are present.
type AuthSession struct {
	User            *DecodedUser `json:"user,omitempty"`
	AccessToken     string       `json:"accessToken,omitempty"`
	RefreshToken    string       `json:"refreshToken,omitempty"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// normalize re-derives the authenticated flag from the fields it depends on
func (s AuthSession) normalize() AuthSession {
	s.IsAuthenticated = s.User != nil && s.AccessToken != ""
	return s
}

// clone copies the session so callers never share the store's user pointer
func (s AuthSession) clone() AuthSession {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Persister stores and restores the serialized session
type Persister interface {
	Load() (AuthSession, bool, error)
	Save(AuthSession) error
}

// Store is the session context injected into API clients, hooks and screens.
// Mutations are serialized by mu, which is also the single write point for persistence.
type Store struct {
	mu          sync.Mutex
	state       AuthSession
	persister   Persister
	logger      *slog.Logger
	subscribers []func(AuthSession)
}

// NewStore creates an unauthenticated store. Call Load to rehydrate persisted state.
// A nil persister keeps the session in memory only.
func NewStore(p Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{persister: p, logger: logger}
}

// Load rehydrates the session from durable storage. Missing or unreadable
// state leaves the store unauthenticated.
func (s *Store) Load() error {
	if s.persister == nil {
		return nil
	}
	state, ok, err := s.persister.Load()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.state = state.normalize()
	snap := s.state.clone()
	s.mu.Unlock()

	s.logger.Debug("Session rehydrated", "authenticated", snap.IsAuthenticated)
	s.notify(snap)
	return nil
}

// SetAuth replaces user and token and marks the session authenticated
func (s *Store) SetAuth(user *DecodedUser, accessToken string) {
	s.update(func(st *AuthSession) {
		st.User = user
		st.AccessToken = accessToken
	})
}

// SetAccessToken replaces only the access token, e.g. after a refresh
func (s *Store) SetAccessToken(accessToken string) {
	s.update(func(st *AuthSession) {
		st.AccessToken = accessToken
	})
}

// SetLogin stores the identity and both tokens returned by login in one write
func (s *Store) SetLogin(user *DecodedUser, accessToken, refreshToken string) {
	s.update(func(st *AuthSession) {
		st.User = user
		st.AccessToken = accessToken
		st.RefreshToken = refreshToken
	})
}

// ClearAuth resets to the unauthenticated empty state
func (s *Store) ClearAuth() {
	s.update(func(st *AuthSession) {
		*st = AuthSession{}
	})
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() AuthSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// AccessToken returns the bearer token for outgoing requests, or "" when signed out
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

// Subscribe registers fn to receive a snapshot after every mutation
func (s *Store) Subscribe(fn func(AuthSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Close drops subscribers. State is already durable, nothing is flushed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = nil
	return nil
}

func (s *Store) update(mutate func(*AuthSession)) {
	s.mu.Lock()
	next := s.state
	mutate(&next)
	s.state = next.normalize()
	snap := s.state.clone()
	if s.persister != nil {
		if err := s.persister.Save(snap); err != nil {
			// Persistence is best effort; the in-memory session stays authoritative.
			s.logger.Warn("Failed to persist session", "error", err)
		}
	}
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) notify(snap AuthSession) {
	s.mu.Lock()
	subs := append([]func(AuthSession){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap.clone())
	}
}
