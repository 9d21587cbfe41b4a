// Package sessionstore keeps the CLI's login session in a local SQLite file.
package sessionstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/hongminglow/taskboard-be/internal/client"
)

//go:embed migrations/*.sql
var migrations embed.FS

const sessionKey = "session"

var _ client.SessionStore = (*Store)(nil)

// Store is a key/value table in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(silentLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate session db: %w", err)
	}
	return nil
}

// silentLogger keeps goose from writing to the CLI's output.
type silentLogger struct{}

func (silentLogger) Printf(string, ...any) {}
func (silentLogger) Fatalf(string, ...any) {}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key, or nil when it is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) LoadSession(ctx context.Context) (client.Session, bool, error) {
	raw, err := s.Get(ctx, sessionKey)
	if err != nil || raw == nil {
		return client.Session{}, false, err
	}
	var session client.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return client.Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	return session, true, nil
}

func (s *Store) SaveSession(ctx context.Context, session client.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.Set(ctx, sessionKey, raw)
}

func (s *Store) ClearSession(ctx context.Context) error {
	return s.Delete(ctx, sessionKey)
}
