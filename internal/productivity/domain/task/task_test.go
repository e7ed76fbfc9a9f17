package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
)

func ptr[T any](v T) *T { return &v }

func TestNewTask(t *testing.T) {
	tsk, err := task.NewTask("  Buy milk  ", ptr("  2 liters "), ptr("2026-10-20"))

	require.NoError(t, err)
	assert.Equal(t, "Buy milk", tsk.Title())
	assert.Equal(t, "2 liters", *tsk.Description())
	assert.Equal(t, "2026-10-20", *tsk.DueDate())
	assert.Equal(t, task.StatusPending, tsk.Status())
	assert.False(t, tsk.IsSynced())
	assert.False(t, tsk.UpdatedAt().IsZero())
}

func TestNewTask_EmptyTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := task.NewTask(title, nil, nil)
		assert.ErrorIs(t, err, task.ErrEmptyTitle)
	}
}

func TestNewTask_BlankDescriptionIsNil(t *testing.T) {
	tsk, err := task.NewTask("Call mom", ptr("   "), nil)
	require.NoError(t, err)
	assert.Nil(t, tsk.Description())
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, task.StatusCompleted, task.ParseStatus("completed"))
	assert.Equal(t, task.StatusCompleted, task.ParseStatus("COMPLETED"))
	assert.Equal(t, task.StatusPending, task.ParseStatus("pending"))
	assert.Equal(t, task.StatusPending, task.ParseStatus("in_progress"))
	assert.Equal(t, task.StatusPending, task.ParseStatus(""))
}

func TestStatus_Toggled(t *testing.T) {
	assert.Equal(t, task.StatusCompleted, task.StatusPending.Toggled())
	assert.Equal(t, task.StatusPending, task.StatusCompleted.Toggled())
}

func TestTask_AssignLocalID(t *testing.T) {
	tsk, _ := task.NewTask("Buy milk", nil, nil)

	assert.ErrorIs(t, tsk.AssignLocalID(3), task.ErrInvalidLocalID)
	require.NoError(t, tsk.AssignLocalID(-1))
	assert.Equal(t, -1, tsk.ID())
	assert.True(t, tsk.IsLocal())
	assert.False(t, tsk.IsSynced())
}

func TestTask_Apply(t *testing.T) {
	old := time.Now().Add(-time.Hour)
	tsk := task.Rehydrate(4, "Buy milk", nil, task.StatusPending, nil, true, old)

	completed := task.StatusCompleted
	require.NoError(t, tsk.Apply(task.Patch{Status: &completed, DueDate: ptr("2026-11-01")}))

	assert.Equal(t, "Buy milk", tsk.Title(), "unset fields are kept")
	assert.True(t, tsk.IsCompleted())
	assert.Equal(t, "2026-11-01", *tsk.DueDate())
	assert.True(t, tsk.UpdatedAt().After(old))

	assert.ErrorIs(t, tsk.Apply(task.Patch{Title: ptr(" ")}), task.ErrEmptyTitle)
	assert.Equal(t, "Buy milk", tsk.Title())
}

func TestTask_ApplyDescription(t *testing.T) {
	tsk := task.Rehydrate(4, "Buy milk", ptr("2 liters"), task.StatusPending, nil, true, time.Now())

	require.NoError(t, tsk.Apply(task.Patch{Description: ptr("  oat  ")}))
	assert.Equal(t, "oat", *tsk.Description())

	require.NoError(t, tsk.Apply(task.Patch{Description: ptr("")}))
	require.NotNil(t, tsk.Description())
	assert.Equal(t, "", *tsk.Description())
}

func TestPatch_IsEmpty(t *testing.T) {
	assert.True(t, task.Patch{}.IsEmpty())
	assert.False(t, task.Patch{Title: ptr("x")}.IsEmpty())
}
