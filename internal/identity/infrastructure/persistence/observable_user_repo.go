package persistence

import (
	"context"

	"github.com/felixgeelhaar/tasksync/internal/identity/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/eventbus"
)

// ObservableUserRepository publishes eventbus.TopicUser after every committed write.
type ObservableUserRepository struct {
	domain.UserRepository
	bus *eventbus.Bus
}

func NewObservableUserRepository(inner domain.UserRepository, bus *eventbus.Bus) *ObservableUserRepository {
	return &ObservableUserRepository{UserRepository: inner, bus: bus}
}

func (r *ObservableUserRepository) Save(ctx context.Context, u *domain.User) error {
	if err := r.UserRepository.Save(ctx, u); err != nil {
		return err
	}
	database.AfterCommit(ctx, func() { r.bus.Publish(eventbus.TopicUser) })
	return nil
}

func (r *ObservableUserRepository) Clear(ctx context.Context) error {
	if err := r.UserRepository.Clear(ctx); err != nil {
		return err
	}
	database.AfterCommit(ctx, func() { r.bus.Publish(eventbus.TopicUser) })
	return nil
}
