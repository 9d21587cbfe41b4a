package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/models/dto"
)

// Session is the persisted login state: the bearer token and the user it
// belongs to.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SessionStore persists a single session across runs.
type SessionStore interface {
	LoadSession(ctx context.Context) (Session, bool, error)
	SaveSession(ctx context.Context, s Session) error
	ClearSession(ctx context.Context) error
}

// SessionManager owns the session lifecycle: created on login, cleared on
// logout, rehydrated from the store at startup.
type SessionManager struct {
	api   *API
	store SessionStore

	mu      sync.RWMutex
	current *Session
}

func NewSessionManager(api *API, store SessionStore) *SessionManager {
	return &SessionManager{api: api, store: store}
}

// Restore loads a previously saved session, if any.
func (m *SessionManager) Restore(ctx context.Context) (bool, error) {
	s, ok, err := m.store.LoadSession(ctx)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if !ok || strings.TrimSpace(s.Token) == "" {
		return false, nil
	}
	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()
	return true, nil
}

// Login exchanges credentials for a token and persists the new session. On
// failure the existing session is left as it was.
func (m *SessionManager) Login(ctx context.Context, email, password string) (Session, error) {
	resp, err := m.api.Login(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return Session{}, err
	}
	s := Session{Token: resp.Token, User: resp.User}
	if err := m.store.SaveSession(ctx, s); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()
	return s, nil
}

// Logout forgets the session locally. Tokens are stateless, so there is no
// server call.
func (m *SessionManager) Logout(ctx context.Context) error {
	if err := m.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return nil
}

// Current returns the active session.
func (m *SessionManager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// RememberUser replaces the cached user, e.g. after a profile edit.
func (m *SessionManager) RememberUser(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ErrNotLoggedIn
	}
	next := Session{Token: m.current.Token, User: user}
	if err := m.store.SaveSession(ctx, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.current = &next
	return nil
}

// Client returns an API client carrying the session token.
func (m *SessionManager) Client() (*API, error) {
	s, ok := m.Current()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return m.api.WithToken(s.Token), nil
}

// IsSessionExpired reports whether err means the stored token is no longer
// accepted and the user must log in again.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
