// Package session owns the authenticated-user lifecycle: an explicit value
// loaded from, saved to and cleared in the local store, passed to the
// components that need it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"fujao/internal/localstore"
	"fujao/internal/model"
)

// ErrNotAuthenticated is returned when no session is cached locally.
var ErrNotAuthenticated = errors.New("faça login para continuar")

// Manager loads and persists the current session.
type Manager struct {
	store *localstore.Store
}

// NewManager creates a Manager backed by the given store.
func NewManager(store *localstore.Store) *Manager {
	return &Manager{store: store}
}

// Current returns the cached user or ErrNotAuthenticated.
func (m *Manager) Current() (*model.User, error) {
	data, err := m.store.LoadSession()
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &user, nil
}

// Save caches the user as the active session. The password field is never
// persisted.
func (m *Manager) Save(user *model.User) error {
	u := *user
	u.HashSenha = ""
	data, err := json.Marshal(&u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.store.SaveSession(data)
}

// Clear signs the user out.
func (m *Manager) Clear() error {
	return m.store.ClearSession()
}
