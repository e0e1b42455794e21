// Package store persists cached credentials in a local SQLite database.
// Nothing else is persisted; fetched mail and analyses live only in memory.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	_ "modernc.org/sqlite"
)

// CredentialStore holds OAuth tokens and login metadata.
type CredentialStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at the given path and runs migrations.
func Open(dbPath string) (*CredentialStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &CredentialStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	provider TEXT NOT NULL,
	identity TEXT NOT NULL,
	value    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (provider, identity)
);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *CredentialStore) Close() error {
	return s.db.Close()
}

// SaveToken stores an OAuth token for a provider identity, replacing any
// previous one.
func (s *CredentialStore) SaveToken(ctx context.Context, provider, identity string, tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (provider, identity, value) VALUES (?, ?, ?)
		ON CONFLICT(provider, identity) DO UPDATE SET value = excluded.value
	`, provider, identity, string(raw))
	return err
}

// LoadToken returns the cached token, or nil when none is stored.
func (s *CredentialStore) LoadToken(ctx context.Context, provider, identity string) (*oauth2.Token, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM credentials WHERE provider = ? AND identity = ?",
		provider, identity).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &tok, nil
}

// DeleteToken removes a cached token. Deleting a missing token is not an error.
func (s *CredentialStore) DeleteToken(ctx context.Context, provider, identity string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM credentials WHERE provider = ? AND identity = ?", provider, identity)
	return err
}

// GetLastLogin returns the most recent "provider identity" login marker, or
// empty when none was recorded.
func (s *CredentialStore) GetLastLogin(ctx context.Context) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'last_login'").Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

func (s *CredentialStore) SetLastLogin(ctx context.Context, marker string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES ('last_login', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, marker)
	return err
}
