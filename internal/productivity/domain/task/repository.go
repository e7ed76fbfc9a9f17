package task

import "context"

// Repository is the local task cache.
// Listings are ordered by UpdatedAt, newest first.
type Repository interface {
	FindByID(ctx context.Context, id int) (*Task, error)
	FindAll(ctx context.Context) ([]*Task, error)
	FindByStatus(ctx context.Context, status Status) ([]*Task, error)
	FindUnsynced(ctx context.Context) ([]*Task, error)

	// Save inserts or replaces the task with the same id.
	Save(ctx context.Context, t *Task) error
	SaveAll(ctx context.Context, tasks []*Task) error
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) error

	// NextLocalID hands out a fresh negative id. Ids are never reused.
	NextLocalID(ctx context.Context) (int, error)
}
