package persistence

import (
	"context"

	"github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/eventbus"
)

// ObservableTaskRepository publishes eventbus.TopicTasks after every committed write.
type ObservableTaskRepository struct {
	task.Repository
	bus *eventbus.Bus
}

func NewObservableTaskRepository(inner task.Repository, bus *eventbus.Bus) *ObservableTaskRepository {
	return &ObservableTaskRepository{Repository: inner, bus: bus}
}

func (r *ObservableTaskRepository) notify(ctx context.Context, err error) error {
	if err == nil {
		database.AfterCommit(ctx, func() { r.bus.Publish(eventbus.TopicTasks) })
	}
	return err
}

func (r *ObservableTaskRepository) Save(ctx context.Context, t *task.Task) error {
	return r.notify(ctx, r.Repository.Save(ctx, t))
}

func (r *ObservableTaskRepository) SaveAll(ctx context.Context, tasks []*task.Task) error {
	return r.notify(ctx, r.Repository.SaveAll(ctx, tasks))
}

func (r *ObservableTaskRepository) Delete(ctx context.Context, id int) error {
	return r.notify(ctx, r.Repository.Delete(ctx, id))
}

func (r *ObservableTaskRepository) DeleteAll(ctx context.Context) error {
	return r.notify(ctx, r.Repository.DeleteAll(ctx))
}
