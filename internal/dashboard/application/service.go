// Package application refreshes and serves the dashboard statistics.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tasksync/internal/dashboard/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/backend"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/eventbus"
)

var ErrLoadFailed = errors.New("failed to load dashboard")

type Remote interface {
	Dashboard(ctx context.Context) (*backend.DashboardDTO, error)
}

type Service struct {
	repo   domain.Repository
	remote Remote
	bus    *eventbus.Bus
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo domain.Repository, remote Remote, bus *eventbus.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, remote: remote, bus: bus, logger: logger, now: time.Now}
}

// Fetch loads the statistics from the backend and overwrites the cached snapshot.
// There is no offline fallback: any backend failure is ErrLoadFailed.
func (s *Service) Fetch(ctx context.Context) (domain.Snapshot, error) {
	dto, err := s.remote.Dashboard(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	snap := domain.Snapshot{
		TotalTasks:     dto.TotalTasks,
		CompletedTasks: dto.CompletedTasks,
		PendingTasks:   dto.PendingTasks,
		CachedAt:       s.now().UTC(),
	}
	if err := s.repo.Save(ctx, snap); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// Cached returns the last stored snapshot or domain.ErrSnapshotNotFound.
func (s *Service) Cached(ctx context.Context) (domain.Snapshot, error) {
	return s.repo.Get(ctx)
}

// Watch emits the cached snapshot now and after every save. Nothing is emitted
// until a snapshot exists.
func (s *Service) Watch(ctx context.Context) <-chan domain.Snapshot {
	filtered := make(chan domain.Snapshot)
	src := eventbus.Watch(ctx, s.bus, eventbus.TopicDashboard, s.logger, func(ctx context.Context) (*domain.Snapshot, error) {
		snap, err := s.repo.Get(ctx)
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &snap, nil
	})
	go func() {
		defer close(filtered)
		for snap := range src {
			if snap == nil {
				continue
			}
			select {
			case filtered <- *snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return filtered
}
