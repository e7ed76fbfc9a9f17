// Package persistence stores the dashboard snapshot.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tasksync/internal/dashboard/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
)

type SQLiteSnapshotRepository struct {
	conn database.Connection
}

func NewSQLiteSnapshotRepository(conn database.Connection) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{conn: conn}
}

func (r *SQLiteSnapshotRepository) Get(ctx context.Context) (domain.Snapshot, error) {
	var (
		s        domain.Snapshot
		cachedAt int64
	)
	err := database.ExecutorFromContext(ctx, r.conn).
		QueryRow(ctx, `SELECT total_tasks, completed_tasks, pending_tasks, cached_at FROM dashboard_snapshot WHERE id = 1`).
		Scan(&s.TotalTasks, &s.CompletedTasks, &s.PendingTasks, &cachedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return domain.Snapshot{}, domain.ErrSnapshotNotFound
		}
		return domain.Snapshot{}, err
	}
	s.CachedAt = time.Unix(0, cachedAt).UTC()
	return s, nil
}

func (r *SQLiteSnapshotRepository) Save(ctx context.Context, s domain.Snapshot) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO dashboard_snapshot (id, total_tasks, completed_tasks, pending_tasks, cached_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			total_tasks = excluded.total_tasks,
			completed_tasks = excluded.completed_tasks,
			pending_tasks = excluded.pending_tasks,
			cached_at = excluded.cached_at`,
		s.TotalTasks, s.CompletedTasks, s.PendingTasks, s.CachedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save dashboard snapshot: %w", err)
	}
	return nil
}
