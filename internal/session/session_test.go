package session

import (
	"errors"
	"path/filepath"
	"testing"

	"fujao/internal/localstore"
	"fujao/internal/model"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "estado.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewManager(store)
}

func TestCurrentWithoutSession(t *testing.T) {
	m := newManager(t)
	if _, err := m.Current(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestSaveAndCurrent(t *testing.T) {
	m := newManager(t)

	if err := m.Save(&model.User{ID: 7, Nome: "Ana", Email: "ana@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	user, err := m.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if user.ID != 7 || user.Nome != "Ana" {
		t.Fatalf("user = %+v", user)
	}
}

func TestSaveNeverPersistsPassword(t *testing.T) {
	m := newManager(t)

	if err := m.Save(&model.User{ID: 1, Nome: "Ana", HashSenha: "segredo1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	user, err := m.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if user.HashSenha != "" {
		t.Fatal("password cached in session")
	}
}

func TestClear(t *testing.T) {
	m := newManager(t)
	if err := m.Save(&model.User{ID: 1, Nome: "Ana"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := m.Current(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err after clear = %v", err)
	}
}
