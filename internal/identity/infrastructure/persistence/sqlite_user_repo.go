// Package persistence stores the signed-in user and session values.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tasksync/internal/identity/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
)

// SQLiteUserRepository implements domain.UserRepository on SQLite.
type SQLiteUserRepository struct {
	conn database.Connection
}

func NewSQLiteUserRepository(conn database.Connection) *SQLiteUserRepository {
	return &SQLiteUserRepository{conn: conn}
}

func (r *SQLiteUserRepository) Current(ctx context.Context) (*domain.User, error) {
	var (
		id          int
		name, email string
	)
	err := database.ExecutorFromContext(ctx, r.conn).
		QueryRow(ctx, `SELECT id, name, email FROM users ORDER BY updated_at DESC LIMIT 1`).
		Scan(&id, &name, &email)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return domain.NewUser(id, name, email), nil
}

func (r *SQLiteUserRepository) Save(ctx context.Context, u *domain.User) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	if _, err := exec.Exec(ctx, `DELETE FROM users WHERE id <> ?`, u.ID()); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	_, err := exec.Exec(ctx, `
		INSERT INTO users (id, name, email, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email, updated_at = excluded.updated_at`,
		u.ID(), u.Name(), u.Email(), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) Clear(ctx context.Context) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM users`)
	return err
}
