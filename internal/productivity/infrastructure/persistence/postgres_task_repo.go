package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
)

// PostgresTaskRepository implements task.Repository on Postgres.
type PostgresTaskRepository struct {
	conn database.Connection
}

func NewPostgresTaskRepository(conn database.Connection) *PostgresTaskRepository {
	return &PostgresTaskRepository{conn: conn}
}

func (r *PostgresTaskRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *PostgresTaskRepository) FindByID(ctx context.Context, id int) (*task.Task, error) {
	row := r.exec(ctx).QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanPostgresTask(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *PostgresTaskRepository) FindAll(ctx context.Context) ([]*task.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY updated_at DESC, id DESC`)
}

func (r *PostgresTaskRepository) FindByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE status = $1 ORDER BY updated_at DESC, id DESC`, status.String())
}

func (r *PostgresTaskRepository) FindUnsynced(ctx context.Context) ([]*task.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE NOT synced ORDER BY updated_at DESC, id DESC`)
}

func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	_, err := r.exec(ctx).Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			due_date = EXCLUDED.due_date,
			synced = EXCLUDED.synced,
			updated_at = EXCLUDED.updated_at`,
		t.ID(), t.Title(), t.Description(), t.Status().String(), t.DueDate(), t.IsSynced(), t.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save task %d: %w", t.ID(), err)
	}
	return nil
}

func (r *PostgresTaskRepository) SaveAll(ctx context.Context, tasks []*task.Task) error {
	for _, t := range tasks {
		if err := r.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id int) error {
	_, err := r.exec(ctx).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *PostgresTaskRepository) DeleteAll(ctx context.Context) error {
	_, err := r.exec(ctx).Exec(ctx, `DELETE FROM tasks`)
	return err
}

// NextLocalID draws from a descending sequence.
func (r *PostgresTaskRepository) NextLocalID(ctx context.Context) (int, error) {
	var id int64
	if err := r.exec(ctx).QueryRow(ctx, `SELECT nextval('task_local_id_seq')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("allocate local task id: %w", err)
	}
	return int(id), nil
}

func (r *PostgresTaskRepository) query(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.exec(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanPostgresTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanPostgresTask(row database.Row) (*task.Task, error) {
	var (
		id          int64
		title       string
		description *string
		status      string
		dueDate     *string
		synced      bool
		updatedAt   time.Time
	)
	if err := row.Scan(&id, &title, &description, &status, &dueDate, &synced, &updatedAt); err != nil {
		return nil, err
	}
	return task.Rehydrate(int(id), title, description, task.ParseStatus(status), dueDate, synced, updatedAt.UTC()), nil
}
