package persistence_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
	"github.com/felixgeelhaar/tasksync/internal/productivity/infrastructure/persistence"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/migrations"
)

func setupPostgres(t *testing.T) database.Connection {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	conn, err := postgres.NewConnection(ctx, database.Config{URL: url})
	if err != nil {
		t.Skipf("Failed to connect to test database: %v", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		t.Skipf("Failed to ping test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))
	_, _ = conn.Exec(ctx, "DELETE FROM tasks")
	return conn
}

func TestPostgresTaskRepository_SaveFindDelete(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewPostgresTaskRepository(setupPostgres(t))

	require.NoError(t, repo.SaveAll(ctx, []*task.Task{
		task.Rehydrate(1, "oldest", nil, task.StatusCompleted, nil, true, at(1)),
		task.Rehydrate(2, "newest", ptr("d"), task.StatusPending, ptr("2026-10-20"), true, at(3)),
		task.Rehydrate(-7, "offline", nil, task.StatusPending, nil, false, at(2)),
	}))

	found, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "d", *found.Description())

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].ID())

	unsynced, err := repo.FindUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, -7, unsynced[0].ID())

	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPostgresTaskRepository_NextLocalID(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewPostgresTaskRepository(setupPostgres(t))

	a, err := repo.NextLocalID(ctx)
	require.NoError(t, err)
	b, err := repo.NextLocalID(ctx)
	require.NoError(t, err)

	assert.Less(t, a, 0)
	assert.Less(t, b, a)
}
