// Package memory persists named memory scopes in SQLite.
package memory

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

// Scope is one named memory slot.
type Scope struct {
	Name      string
	Content   string
	UpdatedAt time.Time
}

// Store is a SQLite-backed scope store.
type Store struct {
	db *sql.DB
}

// Open opens the store at path, creating the file and schema if needed.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory store: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory store: set WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS scopes (
	name       TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("memory store: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for testing or direct access.
func (s *Store) DB() *sql.DB { return s.db }

// ValidateScope checks a scope name. Names surface in tool envelopes and
// log lines, so they stay short and separator-free.
func ValidateScope(name string) error {
	if name == "" {
		return toolerr.New(toolerr.KindValidation, "Scope must be a non-empty string")
	}
	if len(name) > 64 {
		return toolerr.New(toolerr.KindValidation, "Scope name too long (max 64 characters)")
	}
	if strings.ContainsAny(name, "/\\") {
		return toolerr.New(toolerr.KindValidation, "Scope name must not contain path separators")
	}
	return nil
}

// Set writes content for a scope, creating or replacing it.
func (s *Store) Set(name, content string) error {
	if err := ValidateScope(name); err != nil {
		return err
	}
	_, err := s.db.Exec(`
INSERT INTO scopes (name, content, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		name, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("memory store: set %s: %w", name, err)
	}
	return nil
}

// Get returns the content for a scope and whether it exists.
func (s *Store) Get(name string) (string, bool, error) {
	if err := ValidateScope(name); err != nil {
		return "", false, err
	}
	var content string
	err := s.db.QueryRow("SELECT content FROM scopes WHERE name = ?", name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("memory store: get %s: %w", name, err)
	}
	return content, true, nil
}

// List returns all scopes ordered by name.
func (s *Store) List() ([]Scope, error) {
	rows, err := s.db.Query("SELECT name, content, updated_at FROM scopes ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("memory store: list: %w", err)
	}
	defer rows.Close()

	var scopes []Scope
	for rows.Next() {
		var sc Scope
		if err := rows.Scan(&sc.Name, &sc.Content, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("memory store: scan scope: %w", err)
		}
		scopes = append(scopes, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory store: list: %w", err)
	}
	return scopes, nil
}

// Delete removes a scope. Deleting an absent scope is not an error; the
// boolean reports whether anything was removed.
func (s *Store) Delete(name string) (bool, error) {
	if err := ValidateScope(name); err != nil {
		return false, err
	}
	res, err := s.db.Exec("DELETE FROM scopes WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("memory store: delete %s: %w", name, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
