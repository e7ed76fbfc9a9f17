// Package services implements offline-first task synchronization.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
	"github.com/felixgeelhaar/tasksync/internal/shared/application"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/backend"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/tasksync/pkg/observability"
)

var (
	ErrNetwork      = errors.New("network error")
	ErrUpdateFailed = errors.New("update failed")
	ErrDeleteFailed = errors.New("delete failed")
	ErrSyncFailed   = errors.New("sync failed")
)

// Remote is the part of the backend the task service talks to.
type Remote interface {
	Tasks(ctx context.Context) ([]backend.TaskDTO, error)
	Task(ctx context.Context, id int) (*backend.TaskDTO, error)
	CreateTask(ctx context.Context, req backend.CreateTaskRequest) (*backend.TaskDTO, error)
	UpdateTask(ctx context.Context, id int, req backend.UpdateTaskRequest) (*backend.MessageResponse, error)
	DeleteTask(ctx context.Context, id int) (*backend.MessageResponse, error)
}

// SyncResult summarizes one SyncTasks run.
type SyncResult struct {
	Pushed   int
	Failed   int
	Pulled   int
	Duration time.Duration
}

// TaskService keeps the local task cache and the backend in step.
// Reads fall back to the cache, creates fall back to offline records,
// other writes require the backend.
type TaskService struct {
	repo    task.Repository
	remote  Remote
	uow     application.UnitOfWork
	bus     *eventbus.Bus
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewTaskService wires a TaskService. uow may be nil; bus is required for the Watch methods.
func NewTaskService(
	repo task.Repository,
	remote Remote,
	uow application.UnitOfWork,
	bus *eventbus.Bus,
	logger *slog.Logger,
	metrics observability.Metrics,
) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &TaskService{
		repo:    repo,
		remote:  remote,
		uow:     uow,
		bus:     bus,
		logger:  logger,
		metrics: metrics,
	}
}

// FetchTask returns the server copy of a task and refreshes the cache with it.
// When the backend cannot answer, the cached copy is returned instead.
func (s *TaskService) FetchTask(ctx context.Context, id int) (*task.Task, error) {
	dto, remoteErr := s.remote.Task(ctx, id)
	if remoteErr == nil {
		t := fromDTO(*dto)
		if err := s.repo.Save(ctx, t); err != nil {
			s.logger.WarnContext(ctx, "failed to cache fetched task", "task_id", id, observability.ErrorKey, err)
		}
		return t, nil
	}

	cached, err := s.repo.FindByID(ctx, id)
	if err == nil {
		s.logger.DebugContext(ctx, "serving cached task", "task_id", id, observability.ErrorKey, remoteErr)
		return cached, nil
	}
	if !errors.Is(err, task.ErrTaskNotFound) {
		return nil, err
	}
	if backend.IsUnavailable(remoteErr) {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, remoteErr)
	}
	return nil, fmt.Errorf("%w: %w", task.ErrTaskNotFound, remoteErr)
}

// CreateTask creates a task on the backend. If that fails for any reason the
// task is stored locally with a temporary negative id for SyncTasks to push.
func (s *TaskService) CreateTask(ctx context.Context, title string, description, dueDate *string) (*task.Task, error) {
	draft, err := task.NewTask(title, description, dueDate)
	if err != nil {
		return nil, err
	}

	dto, remoteErr := s.remote.CreateTask(ctx, createRequest(draft))
	if remoteErr == nil {
		created := fromDTO(*dto)
		if err := s.repo.Save(ctx, created); err != nil {
			return nil, err
		}
		s.metrics.Counter(observability.MetricTasksCreated, 1, observability.T("mode", "remote"))
		return created, nil
	}

	id, err := s.repo.NextLocalID(ctx)
	if err != nil {
		return nil, err
	}
	if err := draft.AssignLocalID(id); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, draft); err != nil {
		return nil, err
	}

	s.metrics.Counter(observability.MetricTasksCreated, 1, observability.T("mode", "offline"))
	s.logger.InfoContext(ctx, "task stored offline",
		"task_id", id,
		observability.ErrorKey, remoteErr,
	)
	return draft, nil
}

// UpdateTask sends a partial update. On success the cached task, if any, is
// patched and marked synced; a task that is not cached yields (nil, nil).
// On failure the cache is left untouched.
func (s *TaskService) UpdateTask(ctx context.Context, id int, patch task.Patch) (*task.Task, error) {
	req, err := updateRequest(patch)
	if err != nil {
		return nil, err
	}

	if _, err := s.remote.UpdateTask(ctx, id, req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	cached, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, task.ErrTaskNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := cached.Apply(patch); err != nil {
		return nil, err
	}
	cached.MarkSynced()
	if err := s.repo.Save(ctx, cached); err != nil {
		return nil, err
	}
	return cached, nil
}

// ToggleStatus flips a cached task between pending and completed.
func (s *TaskService) ToggleStatus(ctx context.Context, id int) (*task.Task, error) {
	cached, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := cached.Status().Toggled()
	return s.UpdateTask(ctx, id, task.Patch{Status: &next})
}

// DeleteTask removes a task on the backend, then from the cache.
func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	if _, err := s.remote.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return s.repo.Delete(ctx, id)
}

// SyncTasks pushes offline creations, then replaces the cache with the server list.
// A task that fails to push stays queued. A failed pull returns ErrSyncFailed
// and keeps whatever the push phase achieved.
func (s *TaskService) SyncTasks(ctx context.Context) (result SyncResult, err error) {
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		s.metrics.Timing(observability.MetricSyncDuration, result.Duration)
		observability.LogDuration(ctx, s.logger, "sync_tasks", start)
	}()

	unsynced, err := s.repo.FindUnsynced(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	for _, local := range unsynced {
		if !local.IsLocal() {
			continue
		}
		if err := s.push(ctx, local); err != nil {
			result.Failed++
			s.metrics.Counter(observability.MetricSyncPushFailed, 1)
			s.logger.WarnContext(ctx, "failed to push offline task",
				"task_id", local.ID(),
				observability.ErrorKey, err,
			)
			continue
		}
		result.Pushed++
		s.metrics.Counter(observability.MetricSyncPushed, 1)
	}

	dtos, err := s.remote.Tasks(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	server := make([]*task.Task, 0, len(dtos))
	for _, dto := range dtos {
		server = append(server, fromDTO(dto))
	}
	err = application.WithUnitOfWork(ctx, s.uow, func(ctx context.Context) error {
		if err := s.repo.DeleteAll(ctx); err != nil {
			return err
		}
		return s.repo.SaveAll(ctx, server)
	})
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	result.Pulled = len(server)
	s.metrics.Counter(observability.MetricSyncPulled, int64(result.Pulled))
	s.logger.InfoContext(ctx, "tasks synced",
		"pushed", result.Pushed,
		"failed", result.Failed,
		"pulled", result.Pulled,
	)
	return result, nil
}

func (s *TaskService) push(ctx context.Context, local *task.Task) error {
	dto, err := s.remote.CreateTask(ctx, createRequest(local))
	if err != nil {
		return err
	}
	created := fromDTO(*dto)
	return application.WithUnitOfWork(ctx, s.uow, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, local.ID()); err != nil {
			return err
		}
		return s.repo.Save(ctx, created)
	})
}

// SyncEvery runs SyncTasks on every tick until ctx is done.
func (s *TaskService) SyncEvery(ctx context.Context, interval time.Duration, onResult func(SyncResult, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := s.SyncTasks(ctx)
		if onResult != nil {
			onResult(res, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CachedTasks returns the cached list without touching the backend.
func (s *TaskService) CachedTasks(ctx context.Context) ([]*task.Task, error) {
	return s.repo.FindAll(ctx)
}

func (s *TaskService) CachedTasksByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	return s.repo.FindByStatus(ctx, status)
}

// WatchTasks emits the cached list now and after every change to it.
func (s *TaskService) WatchTasks(ctx context.Context) <-chan []*task.Task {
	return eventbus.Watch(ctx, s.bus, eventbus.TopicTasks, s.logger, s.repo.FindAll)
}

func (s *TaskService) WatchTasksByStatus(ctx context.Context, status task.Status) <-chan []*task.Task {
	return eventbus.Watch(ctx, s.bus, eventbus.TopicTasks, s.logger, func(ctx context.Context) ([]*task.Task, error) {
		return s.repo.FindByStatus(ctx, status)
	})
}

func fromDTO(dto backend.TaskDTO) *task.Task {
	return task.Rehydrate(dto.ID, dto.Title, dto.Description, task.ParseStatus(dto.Status), dto.DueDate, true, time.Now().UTC())
}

func createRequest(t *task.Task) backend.CreateTaskRequest {
	return backend.CreateTaskRequest{
		Title:       t.Title(),
		Description: t.Description(),
		DueDate:     t.DueDate(),
	}
}

func updateRequest(p task.Patch) (backend.UpdateTaskRequest, error) {
	var req backend.UpdateTaskRequest
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return req, task.ErrEmptyTitle
		}
		req.Title = &title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		req.Description = &desc
	}
	if p.Status != nil {
		status := p.Status.String()
		req.Status = &status
	}
	req.DueDate = p.DueDate
	return req, nil
}
