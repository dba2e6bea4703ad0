// Package session owns the authenticated user's identity and bearer
// credential, persisted in the local key-value store under the "token"
// and "user" keys. Presence of both is what "logged in" means; no
// freshness or signature check happens here.
package session

import (
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/kvstore"
)

type Manager struct {
	store kvstore.Store
}

func NewManager(store kvstore.Store) *Manager {
	return &Manager{store: store}
}

// Get reads the stored session. ok is false when either half is missing.
// A user record that no longer parses as JSON is reported as a
// kvstore.ErrMalformedValue error rather than a panic.
func (m *Manager) Get() (core.Session, bool, error) {
	token, ok, err := m.store.Get(kvstore.KeyToken)
	if err != nil {
		return core.Session{}, false, fmt.Errorf("read token: %w", err)
	}
	if !ok || token == "" {
		return core.Session{}, false, nil
	}

	raw, ok, err := m.store.Get(kvstore.KeyUser)
	if err != nil {
		return core.Session{}, false, fmt.Errorf("read user: %w", err)
	}
	if !ok {
		return core.Session{}, false, nil
	}

	var user core.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return core.Session{}, false, fmt.Errorf("%w: user record: %v", kvstore.ErrMalformedValue, err)
	}

	return core.Session{Token: token, User: user}, true, nil
}

// Set writes token and user together. If the user write fails the token
// is rolled back so the two never diverge.
func (m *Manager) Set(token string, user core.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.Set(kvstore.KeyToken, token); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := m.store.Set(kvstore.KeyUser, string(raw)); err != nil {
		_ = m.store.Delete(kvstore.KeyToken)
		return fmt.Errorf("write user: %w", err)
	}
	return nil
}

// Clear removes both halves of the session.
func (m *Manager) Clear() error {
	if err := m.store.Delete(kvstore.KeyToken); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if err := m.store.Delete(kvstore.KeyUser); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is present. Storage errors count
// as not authenticated.
func (m *Manager) IsAuthenticated() bool {
	token, ok, err := m.store.Get(kvstore.KeyToken)
	return err == nil && ok && token != ""
}

// Token returns the stored bearer token, if any. Used as the API client's
// token source.
func (m *Manager) Token() (string, bool) {
	token, ok, err := m.store.Get(kvstore.KeyToken)
	if err != nil || token == "" {
		return "", false
	}
	return token, ok
}
