package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/tasksync/internal/dashboard/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
)

type PostgresSnapshotRepository struct {
	conn database.Connection
}

func NewPostgresSnapshotRepository(conn database.Connection) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{conn: conn}
}

func (r *PostgresSnapshotRepository) Get(ctx context.Context) (domain.Snapshot, error) {
	var s domain.Snapshot
	err := database.ExecutorFromContext(ctx, r.conn).
		QueryRow(ctx, `SELECT total_tasks, completed_tasks, pending_tasks, cached_at FROM dashboard_snapshot WHERE id = 1`).
		Scan(&s.TotalTasks, &s.CompletedTasks, &s.PendingTasks, &s.CachedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return domain.Snapshot{}, domain.ErrSnapshotNotFound
		}
		return domain.Snapshot{}, err
	}
	s.CachedAt = s.CachedAt.UTC()
	return s, nil
}

func (r *PostgresSnapshotRepository) Save(ctx context.Context, s domain.Snapshot) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO dashboard_snapshot (id, total_tasks, completed_tasks, pending_tasks, cached_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			total_tasks = EXCLUDED.total_tasks,
			completed_tasks = EXCLUDED.completed_tasks,
			pending_tasks = EXCLUDED.pending_tasks,
			cached_at = EXCLUDED.cached_at`,
		s.TotalTasks, s.CompletedTasks, s.PendingTasks, s.CachedAt,
	)
	if err != nil {
		return fmt.Errorf("save dashboard snapshot: %w", err)
	}
	return nil
}
