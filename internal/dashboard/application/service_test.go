package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/tasksync/internal/dashboard/domain"
	"github.com/felixgeelhaar/tasksync/internal/dashboard/infrastructure/persistence"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/backend"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/tasksync/pkg/observability"
)

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) Dashboard(ctx context.Context) (*backend.DashboardDTO, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.DashboardDTO), args.Error(1)
}

func setup(t *testing.T) (*Service, *mockRemote) {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	logger := observability.Discard()
	bus := eventbus.New(logger)
	repo := persistence.NewObservableSnapshotRepository(persistence.NewSQLiteSnapshotRepository(conn), bus)
	remote := new(mockRemote)
	svc := NewService(repo, remote, bus, logger)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, remote
}

func TestFetch_CachesSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, remote := setup(t)
	remote.On("Dashboard", mock.Anything).Return(&backend.DashboardDTO{TotalTasks: 5, CompletedTasks: 2, PendingTasks: 3}, nil)

	snap, err := svc.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.TotalTasks)
	assert.InDelta(t, 40, snap.CompletionPercent(), 0.001)

	cached, err := svc.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, cached)
}

func TestFetch_NoFallback(t *testing.T) {
	ctx := context.Background()
	svc, remote := setup(t)
	remote.On("Dashboard", mock.Anything).Return(&backend.DashboardDTO{TotalTasks: 1, PendingTasks: 1}, nil).Once()
	remote.On("Dashboard", mock.Anything).Return(nil, errors.Join(backend.ErrUnavailable, errors.New("offline")))

	_, err := svc.Fetch(ctx)
	require.NoError(t, err)

	_, err = svc.Fetch(ctx)
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.ErrorIs(t, err, backend.ErrUnavailable)

	cached, err := svc.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalTasks, "failed fetch keeps the old snapshot")
}

func TestCached_Empty(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Cached(context.Background())
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc, remote := setup(t)
	remote.On("Dashboard", mock.Anything).Return(&backend.DashboardDTO{TotalTasks: 2, CompletedTasks: 1, PendingTasks: 1}, nil)

	ch := svc.Watch(ctx)
	_, err := svc.Fetch(ctx)
	require.NoError(t, err)

	select {
	case snap := <-ch:
		assert.Equal(t, 2, snap.TotalTasks)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}

	cancel()
	for range ch {
	}
}
