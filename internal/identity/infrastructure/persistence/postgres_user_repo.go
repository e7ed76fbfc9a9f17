package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/tasksync/internal/identity/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
)

// PostgresUserRepository implements domain.UserRepository on Postgres.
type PostgresUserRepository struct {
	conn database.Connection
}

func NewPostgresUserRepository(conn database.Connection) *PostgresUserRepository {
	return &PostgresUserRepository{conn: conn}
}

func (r *PostgresUserRepository) Current(ctx context.Context) (*domain.User, error) {
	var (
		id          int64
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
	return domain.NewUser(int(id), name, email), nil
}

func (r *PostgresUserRepository) Save(ctx context.Context, u *domain.User) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	if _, err := exec.Exec(ctx, `DELETE FROM users WHERE id <> $1`, u.ID()); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	_, err := exec.Exec(ctx, `
		INSERT INTO users (id, name, email, updated_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`,
		u.ID(), u.Name(), u.Email(),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) Clear(ctx context.Context) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM users`)
	return err
}
