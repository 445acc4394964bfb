// Package localstore is the on-device state file: the cached session, the
// in-progress report draft and remembered permission decisions, kept in a
// single SQLite database under the user's config directory.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("localstore: not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessao (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	dados TEXT NOT NULL,
	atualizado_em TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS rascunho (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	dados TEXT NOT NULL,
	atualizado_em TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS permissoes (
	capacidade TEXT PRIMARY KEY,
	concedida INTEGER NOT NULL,
	decidida_em TIMESTAMP NOT NULL
);`

// Store wraps the SQLite state file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession stores the serialized session, replacing any previous one.
func (s *Store) SaveSession(data []byte) error {
	return s.upsertSingleton("sessao", data)
}

// LoadSession returns the serialized session or ErrNotFound.
func (s *Store) LoadSession() ([]byte, error) {
	return s.loadSingleton("sessao")
}

// ClearSession removes the cached session.
func (s *Store) ClearSession() error {
	return s.deleteSingleton("sessao")
}

// SaveDraft stores the serialized report draft, replacing any previous one.
func (s *Store) SaveDraft(data []byte) error {
	return s.upsertSingleton("rascunho", data)
}

// LoadDraft returns the serialized report draft or ErrNotFound.
func (s *Store) LoadDraft() ([]byte, error) {
	return s.loadSingleton("rascunho")
}

// ClearDraft removes the persisted draft.
func (s *Store) ClearDraft() error {
	return s.deleteSingleton("rascunho")
}

// Permission reports a remembered grant decision for a capability. decided is
// false when the user has never been asked.
func (s *Store) Permission(capability string) (granted, decided bool, err error) {
	var v int
	row := s.db.QueryRow(`SELECT concedida FROM permissoes WHERE capacidade = ?`, capability)
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("select permission: %w", err)
	}
	return v != 0, true, nil
}

// SetPermission remembers a grant decision.
func (s *Store) SetPermission(capability string, granted bool) error {
	v := 0
	if granted {
		v = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO permissoes (capacidade, concedida, decidida_em) VALUES (?, ?, ?)
		ON CONFLICT(capacidade) DO UPDATE SET concedida = excluded.concedida, decidida_em = excluded.decidida_em
	`, capability, v, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert permission: %w", err)
	}
	return nil
}

// SetPermissionUndecided forgets a grant decision so the user is asked again.
func (s *Store) SetPermissionUndecided(capability string) error {
	if _, err := s.db.Exec(`DELETE FROM permissoes WHERE capacidade = ?`, capability); err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	return nil
}

func (s *Store) upsertSingleton(table string, data []byte) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, dados, atualizado_em) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET dados = excluded.dados, atualizado_em = excluded.atualizado_em
	`, table)
	if _, err := s.db.Exec(stmt, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *Store) loadSingleton(table string) ([]byte, error) {
	var data string
	row := s.db.QueryRow(fmt.Sprintf(`SELECT dados FROM %s WHERE id = 1`, table))
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return []byte(data), nil
}

func (s *Store) deleteSingleton(table string) error {
	if _, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = 1`, table)); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}
