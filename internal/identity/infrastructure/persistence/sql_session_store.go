package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
)

// SQLSessionStore implements domain.SessionStore in the session_values table
// of either SQL backend.
type SQLSessionStore struct {
	conn database.Connection
}

func NewSQLSessionStore(conn database.Connection) *SQLSessionStore {
	return &SQLSessionStore{conn: conn}
}

func (s *SQLSessionStore) postgres() bool {
	return s.conn.Driver() == database.DriverPostgres
}

// bind rewrites ? placeholders to $n for Postgres.
func (s *SQLSessionStore) bind(query string) string {
	if !s.postgres() {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLSessionStore) now() any {
	if s.postgres() {
		return time.Now().UTC()
	}
	return time.Now().UnixNano()
}

func (s *SQLSessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := database.ExecutorFromContext(ctx, s.conn).
		QueryRow(ctx, s.bind(`SELECT value FROM session_values WHERE key = ?`), key).
		Scan(&value)
	if err != nil {
		if database.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read session value %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLSessionStore) Set(ctx context.Context, key, value string) error {
	_, err := database.ExecutorFromContext(ctx, s.conn).Exec(ctx, s.bind(`
		INSERT INTO session_values (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, value, s.now(),
	)
	if err != nil {
		return fmt.Errorf("write session value %s: %w", key, err)
	}
	return nil
}

func (s *SQLSessionStore) Delete(ctx context.Context, keys ...string) error {
	exec := database.ExecutorFromContext(ctx, s.conn)
	for _, key := range keys {
		if _, err := exec.Exec(ctx, s.bind(`DELETE FROM session_values WHERE key = ?`), key); err != nil {
			return fmt.Errorf("delete session value %s: %w", key, err)
		}
	}
	return nil
}
