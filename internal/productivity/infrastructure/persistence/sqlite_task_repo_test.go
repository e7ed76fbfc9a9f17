package persistence_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
	"github.com/felixgeelhaar/tasksync/internal/productivity/infrastructure/persistence"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/migrations"
)

func setupSQLite(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func ptr[T any](v T) *T { return &v }

func at(minutes int) time.Time {
	return time.Date(2026, 10, 14, 9, minutes, 0, 0, time.UTC)
}

func TestSQLiteTaskRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteTaskRepository(setupSQLite(t))

	saved := task.Rehydrate(12, "Buy milk", ptr("2 liters"), task.StatusPending, ptr("2026-10-20"), true, at(1))
	require.NoError(t, repo.Save(ctx, saved))

	found, err := repo.FindByID(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", found.Title())
	assert.Equal(t, "2 liters", *found.Description())
	assert.Equal(t, "2026-10-20", *found.DueDate())
	assert.True(t, found.IsSynced())
	assert.True(t, at(1).Equal(found.UpdatedAt()))

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestSQLiteTaskRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteTaskRepository(setupSQLite(t))

	require.NoError(t, repo.Save(ctx, task.Rehydrate(3, "Old", ptr("desc"), task.StatusPending, nil, false, at(1))))
	require.NoError(t, repo.Save(ctx, task.Rehydrate(3, "New", nil, task.StatusCompleted, nil, true, at(2))))

	found, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "New", found.Title())
	assert.Nil(t, found.Description())
	assert.True(t, found.IsCompleted())

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteTaskRepository_Listings(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteTaskRepository(setupSQLite(t))

	require.NoError(t, repo.SaveAll(ctx, []*task.Task{
		task.Rehydrate(1, "oldest", nil, task.StatusCompleted, nil, true, at(1)),
		task.Rehydrate(2, "newest", nil, task.StatusPending, nil, true, at(3)),
		task.Rehydrate(-1, "offline", nil, task.StatusPending, nil, false, at(2)),
	}))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{2, -1, 1}, []int{all[0].ID(), all[1].ID(), all[2].ID()})

	pending, err := repo.FindByStatus(ctx, task.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	unsynced, err := repo.FindUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, -1, unsynced[0].ID())
}

func TestSQLiteTaskRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteTaskRepository(setupSQLite(t))

	require.NoError(t, repo.SaveAll(ctx, []*task.Task{
		task.Rehydrate(1, "a", nil, task.StatusPending, nil, true, at(1)),
		task.Rehydrate(2, "b", nil, task.StatusPending, nil, true, at(2)),
	}))

	require.NoError(t, repo.Delete(ctx, 1))
	require.NoError(t, repo.Delete(ctx, 1), "deleting a missing task is not an error")
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteTaskRepository_NextLocalID(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteTaskRepository(setupSQLite(t))

	first, err := repo.NextLocalID(ctx)
	require.NoError(t, err)
	second, err := repo.NextLocalID(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, first)
	assert.Equal(t, -2, second)

	require.NoError(t, repo.DeleteAll(ctx))
	third, err := repo.NextLocalID(ctx)
	require.NoError(t, err)
	assert.Equal(t, -3, third, "ids are not reused after the table is cleared")
}

func TestSQLiteTaskRepository_NextLocalIDConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteTaskRepository(setupSQLite(t))

	const n = 20
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.NextLocalID(ctx)
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.Less(t, id, 0)
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestSQLiteTaskRepository_RollbackDiscardsClear(t *testing.T) {
	ctx := context.Background()
	conn := setupSQLite(t)
	repo := persistence.NewSQLiteTaskRepository(conn)
	require.NoError(t, repo.Save(ctx, task.Rehydrate(1, "keep", nil, task.StatusPending, nil, true, at(1))))

	uow := database.NewUnitOfWork(conn)
	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteAll(txCtx))
	require.NoError(t, uow.Rollback(txCtx))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
