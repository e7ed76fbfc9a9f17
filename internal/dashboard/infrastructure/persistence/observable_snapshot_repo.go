package persistence

import (
	"context"

	"github.com/felixgeelhaar/tasksync/internal/dashboard/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/eventbus"
)

// ObservableSnapshotRepository publishes eventbus.TopicDashboard after every committed save.
type ObservableSnapshotRepository struct {
	domain.Repository
	bus *eventbus.Bus
}

func NewObservableSnapshotRepository(inner domain.Repository, bus *eventbus.Bus) *ObservableSnapshotRepository {
	return &ObservableSnapshotRepository{Repository: inner, bus: bus}
}

func (r *ObservableSnapshotRepository) Save(ctx context.Context, s domain.Snapshot) error {
	if err := r.Repository.Save(ctx, s); err != nil {
		return err
	}
	database.AfterCommit(ctx, func() { r.bus.Publish(eventbus.TopicDashboard) })
	return nil
}
