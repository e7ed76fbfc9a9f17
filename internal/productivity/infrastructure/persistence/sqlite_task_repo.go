// Package persistence stores the task cache.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
)

const taskColumns = `id, title, description, status, due_date, synced, updated_at`

// SQLiteTaskRepository implements task.Repository on SQLite.
// updated_at is stored as unix nanoseconds so it sorts numerically.
type SQLiteTaskRepository struct {
	conn database.Connection
}

func NewSQLiteTaskRepository(conn database.Connection) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{conn: conn}
}

func (r *SQLiteTaskRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id int) (*task.Task, error) {
	row := r.exec(ctx).QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanSQLiteTask(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *SQLiteTaskRepository) FindAll(ctx context.Context) ([]*task.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY updated_at DESC, id DESC`)
}

func (r *SQLiteTaskRepository) FindByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE status = ? ORDER BY updated_at DESC, id DESC`, status.String())
}

func (r *SQLiteTaskRepository) FindUnsynced(ctx context.Context) ([]*task.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE synced = 0 ORDER BY updated_at DESC, id DESC`)
}

func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	_, err := r.exec(ctx).Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			due_date = excluded.due_date,
			synced = excluded.synced,
			updated_at = excluded.updated_at`,
		t.ID(), t.Title(), t.Description(), t.Status().String(), t.DueDate(), t.IsSynced(), t.UpdatedAt().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save task %d: %w", t.ID(), err)
	}
	return nil
}

func (r *SQLiteTaskRepository) SaveAll(ctx context.Context, tasks []*task.Task) error {
	for _, t := range tasks {
		if err := r.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteTaskRepository) Delete(ctx context.Context, id int) error {
	_, err := r.exec(ctx).Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return err
}

func (r *SQLiteTaskRepository) DeleteAll(ctx context.Context) error {
	_, err := r.exec(ctx).Exec(ctx, `DELETE FROM tasks`)
	return err
}

// NextLocalID decrements the persisted counter in one statement.
func (r *SQLiteTaskRepository) NextLocalID(ctx context.Context) (int, error) {
	var id int
	err := r.exec(ctx).QueryRow(ctx,
		`UPDATE local_sequence SET value = value - 1 WHERE name = 'tasks' RETURNING value`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("allocate local task id: %w", err)
	}
	return id, nil
}

func (r *SQLiteTaskRepository) query(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.exec(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanSQLiteTask(row database.Row) (*task.Task, error) {
	var (
		id          int
		title       string
		description *string
		status      string
		dueDate     *string
		synced      bool
		updatedAt   int64
	)
	if err := row.Scan(&id, &title, &description, &status, &dueDate, &synced, &updatedAt); err != nil {
		return nil, err
	}
	return task.Rehydrate(id, title, description, task.ParseStatus(status), dueDate, synced, time.Unix(0, updatedAt).UTC()), nil
}
