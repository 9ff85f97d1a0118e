package board

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragonbytelabs/taskboard/internal/config"
	"github.com/dragonbytelabs/taskboard/internal/model"
	"github.com/dragonbytelabs/taskboard/internal/storage"
)

func newTestManager(t *testing.T) (*Manager, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV(0)
	adapter := storage.NewAdapter(kv, log.New(io.Discard, "", 0))
	m := NewManager(adapter, config.Default().Limits, log.New(io.Discard, "", 0))
	require.NoError(t, m.Initialize())
	require.Equal(t, StatusReady, m.Status())
	return m, kv
}

func TestAddTask_BlankTitleRejected(t *testing.T) {
	m, _ := newTestManager(t)

	for _, title := range []string{"", "   ", "\t"} {
		_, err := m.AddTask(Draft{Title: title})
		assert.ErrorIs(t, err, ErrTitleRequired)
	}
	assert.Empty(t, m.Tasks())
	assert.Empty(t, m.Activities())
}

func TestAddTask_Defaults(t *testing.T) {
	m, _ := newTestManager(t)

	task, err := m.AddTask(Draft{Title: "  Write notes  "})
	require.NoError(t, err)

	assert.Equal(t, "Write notes", task.Title)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, model.ColumnTodo, task.Column)
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.CreatedAt.IsZero())

	tasks := m.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
}

func TestAddTask_UniqueIDs(t *testing.T) {
	m, _ := newTestManager(t)

	seen := map[model.TaskID]bool{}
	for i := 0; i < 50; i++ {
		task, err := m.AddTask(Draft{Title: "dup check"})
		require.NoError(t, err)
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}
}

func TestAddTask_DraftRules(t *testing.T) {
	m, _ := newTestManager(t)

	long := make([]rune, 101)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name  string
		draft Draft
		want  error
	}{
		{"one char title", Draft{Title: "a"}, ErrTitleLength},
		{"title too long", Draft{Title: string(long)}, ErrTitleLength},
		{"past due date", Draft{Title: "ok", DueDate: "2001-01-01"}, ErrDueDatePast},
		{"garbage due date", Draft{Title: "ok", DueDate: "tomorrow"}, ErrDueDateFormat},
		{"too many tags", Draft{Title: "ok", Tags: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}}, ErrTooManyTags},
		{"tag too long", Draft{Title: "ok", Tags: []string{"123456789012345678901"}}, ErrTagTooLong},
		{"bad priority", Draft{Title: "ok", Priority: "urgent"}, ErrInvalidPriority},
		{"bad column", Draft{Title: "ok", Column: "limbo"}, ErrInvalidColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddTask(tt.draft)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, m.Tasks(), "rejected drafts must not mutate the collection")
}

func TestUpdateTask(t *testing.T) {
	m, _ := newTestManager(t)

	task, err := m.AddTask(Draft{Title: "original", Description: "keep me"})
	require.NoError(t, err)

	newTitle := "renamed"
	updated, err := m.UpdateTask(task.ID, Patch{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "keep me", updated.Description, "unpatched fields are retained")
	assert.Equal(t, task.ID, updated.ID)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
}

func TestUpdateTask_NotFound(t *testing.T) {
	m, _ := newTestManager(t)

	title := "x"
	_, err := m.UpdateTask("task_missing", Patch{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateTask_InvalidMergeRejected(t *testing.T) {
	m, _ := newTestManager(t)

	task, err := m.AddTask(Draft{Title: "valid"})
	require.NoError(t, err)

	bad := "z"
	_, err = m.UpdateTask(task.ID, Patch{Title: &bad})
	assert.ErrorIs(t, err, ErrTitleLength)

	got := m.Tasks()[0]
	assert.Equal(t, "valid", got.Title, "failed patch must not be applied")
}

func TestUpdateTask_ClearDueDate(t *testing.T) {
	m, _ := newTestManager(t)

	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	task, err := m.AddTask(Draft{Title: "dated", DueDate: due})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)

	clear := ""
	updated, err := m.UpdateTask(task.ID, Patch{DueDate: &clear})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestDeleteTask(t *testing.T) {
	m, _ := newTestManager(t)

	task, err := m.AddTask(Draft{Title: "short lived"})
	require.NoError(t, err)

	require.NoError(t, m.DeleteTask(task.ID))
	assert.Empty(t, m.Tasks())

	assert.ErrorIs(t, m.DeleteTask(task.ID), ErrTaskNotFound)
}

func TestMoveTask(t *testing.T) {
	m, _ := newTestManager(t)

	task, err := m.AddTask(Draft{Title: "mover"})
	require.NoError(t, err)

	require.NoError(t, m.MoveTask(task.ID, model.ColumnDoing))
	assert.Equal(t, model.ColumnDoing, m.Tasks()[0].Column)

	assert.ErrorIs(t, m.MoveTask(task.ID, "nowhere"), ErrInvalidColumn)
	assert.ErrorIs(t, m.MoveTask("task_missing", model.ColumnDone), ErrTaskNotFound)
}

func TestMoveTask_IdentityMoveIsNoOp(t *testing.T) {
	m, _ := newTestManager(t)

	task, err := m.AddTask(Draft{Title: "stationary"})
	require.NoError(t, err)
	before := len(m.Activities())

	require.NoError(t, m.MoveTask(task.ID, model.ColumnTodo))
	assert.Len(t, m.Activities(), before, "identity move must not record an activity")
}

func TestActivityDerivation(t *testing.T) {
	m, _ := newTestManager(t)

	task, err := m.AddTask(Draft{Title: "tracked"})
	require.NoError(t, err)

	title := "tracked renamed"
	_, err = m.UpdateTask(task.ID, Patch{Title: &title})
	require.NoError(t, err)
	require.NoError(t, m.MoveTask(task.ID, model.ColumnDoing))
	require.NoError(t, m.DeleteTask(task.ID))

	acts := m.Activities()
	require.Len(t, acts, 4)
	assert.Equal(t, model.ActivityDeleted, acts[0].Type)
	assert.Equal(t, model.ActivityMoved, acts[1].Type)
	assert.Equal(t, model.ActivityEdited, acts[2].Type)
	assert.Equal(t, model.ActivityCreated, acts[3].Type)

	for _, a := range acts {
		assert.Equal(t, task.ID, a.TaskID)
	}
	assert.Equal(t, "from todo to doing", acts[1].Details)
	assert.Equal(t, "tracked renamed", acts[0].TaskTitle, "deleted activity snapshots the pre-deletion title")
}

func TestActivityCap(t *testing.T) {
	m, _ := newTestManager(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 60; i++ {
		_, err := m.AddTask(Draft{Title: "filler task"})
		require.NoError(t, err)
	}

	acts := m.Activities()
	require.Len(t, acts, 50)
	for i := 1; i < len(acts); i++ {
		assert.True(t, acts[i-1].Timestamp.After(acts[i].Timestamp), "activities must stay newest-first")
	}
}

func TestActivityCap_Configurable(t *testing.T) {
	kv := storage.NewMemoryKV(0)
	adapter := storage.NewAdapter(kv, log.New(io.Discard, "", 0))
	limits := config.Default().Limits
	limits.ActivityCap = 3
	m := NewManager(adapter, limits, log.New(io.Discard, "", 0))
	require.NoError(t, m.Initialize())

	for i := 0; i < 5; i++ {
		_, err := m.AddTask(Draft{Title: "capped"})
		require.NoError(t, err)
	}
	assert.Len(t, m.Activities(), 3)
}

func TestResetBoard_Idempotent(t *testing.T) {
	m, kv := newTestManager(t)

	_, err := m.AddTask(Draft{Title: "doomed"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, m.ResetBoard())
		assert.Empty(t, m.Tasks())
		assert.Empty(t, m.Activities())
		assert.Empty(t, kv.Keys(), "reset must remove all persisted records")
	}
}

func TestPersistenceFailure_KeepsMemoryState(t *testing.T) {
	m, kv := newTestManager(t)
	kv.FailSets = true

	task, err := m.AddTask(Draft{Title: "unsaved"})
	require.NoError(t, err, "a failed save must not fail the operation")
	assert.NotEmpty(t, task.ID)
	assert.Len(t, m.Tasks(), 1)
	assert.NotEmpty(t, m.Err(), "failed save surfaces a transient error")
	assert.Equal(t, StatusReady, m.Status(), "operation failures never change status")

	kv.FailSets = false
	_, err = m.AddTask(Draft{Title: "saved again"})
	require.NoError(t, err)
	assert.Empty(t, m.Err(), "next successful operation clears the error")
}

func TestClearError(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.AddTask(Draft{Title: ""})
	require.Error(t, err)
	require.NotEmpty(t, m.Err())

	m.ClearError()
	assert.Empty(t, m.Err())
	assert.Empty(t, m.Tasks(), "dismissing the error has no other side effect")
}

func TestInitialize_StoreUnavailable(t *testing.T) {
	kv := storage.NewMemoryKV(0)
	kv.FailAll = true
	adapter := storage.NewAdapter(kv, log.New(io.Discard, "", 0))
	m := NewManager(adapter, config.Default().Limits, log.New(io.Discard, "", 0))

	assert.ErrorIs(t, m.Initialize(), ErrStoreUnavailable)
	assert.Equal(t, StatusErrored, m.Status())
	assert.NotEmpty(t, m.Err())

	kv.FailAll = false
	require.NoError(t, m.RetryLoad())
	assert.Equal(t, StatusReady, m.Status())
	assert.Empty(t, m.Err())
}

func TestSubscribe_NotifiesOnMutation(t *testing.T) {
	m, _ := newTestManager(t)

	calls := 0
	m.Subscribe(func() { calls++ })

	_, err := m.AddTask(Draft{Title: "observable"})
	require.NoError(t, err)
	assert.Greater(t, calls, 0)
}

func TestLifecycleScenario(t *testing.T) {
	m, _ := newTestManager(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	task, err := m.AddTask(Draft{Title: "Write notes"})
	require.NoError(t, err)
	assert.Equal(t, model.ColumnTodo, task.Column)

	require.NoError(t, m.MoveTask(task.ID, model.ColumnDoing))
	assert.Equal(t, model.ColumnDoing, m.Tasks()[0].Column)

	require.NoError(t, m.DeleteTask(task.ID))
	assert.Empty(t, m.Tasks())

	acts := m.Activities()
	require.Len(t, acts, 3)
	assert.Equal(t, model.ActivityDeleted, acts[0].Type)
	assert.Equal(t, model.ActivityMoved, acts[1].Type)
	assert.Equal(t, "from todo to doing", acts[1].Details)
	assert.Equal(t, model.ActivityCreated, acts[2].Type)
	for _, a := range acts {
		assert.Equal(t, "Write notes", a.TaskTitle)
	}
}

func TestVisibleTasks_AppliesViewSettings(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.AddTask(Draft{Title: "Fix bug", Priority: model.PriorityHigh})
	require.NoError(t, err)
	_, err = m.AddTask(Draft{Title: "Fix typo", Priority: model.PriorityLow})
	require.NoError(t, err)

	m.SetSearch("fix")
	m.SetPriorityFilter(model.PriorityHigh)

	got := m.VisibleTasks(model.ColumnTodo)
	require.Len(t, got, 1)
	assert.Equal(t, "Fix bug", got[0].Title)
}
