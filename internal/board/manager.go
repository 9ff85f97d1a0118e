package board

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dragonbytelabs/taskboard/internal/config"
	"github.com/dragonbytelabs/taskboard/internal/model"
	"github.com/dragonbytelabs/taskboard/internal/storage"
)

var (
	ErrStoreUnavailable = errors.New("storage is unavailable")
	ErrSaveFailed       = errors.New("failed to save to storage")
)

// Status tracks the manager's load state machine:
// uninitialized -> loading -> ready | errored. From errored an explicit
// retry re-enters loading. Operation failures from ready only set the
// transient error, never the status.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusReady         Status = "ready"
	StatusErrored       Status = "errored"
)

// Draft is caller-supplied, not-yet-validated input to AddTask.
type Draft struct {
	Title       string
	Description string
	Priority    model.Priority
	DueDate     string
	Tags        []string
	Column      model.Column
}

// Patch is a partial task update. nil pointer = no change; for DueDate an
// empty string clears the date.
type Patch struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	DueDate     *string
	Tags        *[]string
	Column      *model.Column
}

// Manager is the sole owner and mutator of the in-memory task and activity
// collections. Every successful mutation derives one activity entry and
// attempts a save through the store adapter; a failed save keeps the
// in-memory result and surfaces a dismissible error instead of rolling back.
type Manager struct {
	mu        sync.Mutex
	store     *storage.Adapter
	validator *Validator
	limits    config.Limits
	logger    *log.Logger
	now       func() time.Time

	status     Status
	tasks      []model.Task
	activities []model.Activity
	lastErr    string

	// view settings, consumed by the pure derivations in query.go
	search         string
	priorityFilter model.Priority // empty = all
	sortByDueDate  bool

	subs []func()
}

func NewManager(store *storage.Adapter, limits config.Limits, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		store:      store,
		validator:  NewValidator(limits),
		limits:     limits,
		logger:     logger,
		now:        time.Now,
		status:     StatusUninitialized,
		tasks:      []model.Task{},
		activities: []model.Activity{},
	}
}

// Subscribe registers a callback invoked after every state change. Callbacks
// run outside the manager lock.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

func (m *Manager) notify() {
	m.mu.Lock()
	subs := make([]func(), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Initialize loads both collections from the store. It is idempotent and is
// the only recovery path from the errored status.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	m.status = StatusLoading
	m.mu.Unlock()
	m.notify()

	if !m.store.IsAvailable() {
		m.mu.Lock()
		m.status = StatusErrored
		m.lastErr = ErrStoreUnavailable.Error()
		m.mu.Unlock()
		m.notify()
		return ErrStoreUnavailable
	}

	tasks := m.store.LoadTasks()
	activities := m.store.LoadActivities()

	m.mu.Lock()
	m.tasks = tasks
	m.activities = activities
	m.status = StatusReady
	m.lastErr = ""
	m.mu.Unlock()
	m.notify()
	return nil
}

// RetryLoad re-runs Initialize.
func (m *Manager) RetryLoad() error {
	return m.Initialize()
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err returns the transient error message, empty when none is pending.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// ClearError dismisses the transient error with no other side effect.
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.lastErr = ""
	m.mu.Unlock()
	m.notify()
}

// Tasks returns a copy of the task collection.
func (m *Manager) Tasks() []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// Activities returns a copy of the activity collection, newest-first.
func (m *Manager) Activities() []model.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Activity, len(m.activities))
	copy(out, m.activities)
	return out
}

// AddTask validates the draft, assigns an id and creation time, inserts the
// task and derives a created activity. On a persistence failure the task is
// still returned; only the transient error is set.
func (m *Manager) AddTask(draft Draft) (model.Task, error) {
	now := m.now()

	title, err := m.validator.ValidateTitle(draft.Title)
	if err != nil {
		m.fail(err)
		return model.Task{}, err
	}
	if err := m.validator.ValidateDescription(draft.Description); err != nil {
		m.fail(err)
		return model.Task{}, err
	}
	if err := m.validator.ValidateDueDate(draft.DueDate, now); err != nil {
		m.fail(err)
		return model.Task{}, err
	}
	tags := normalizeTags(draft.Tags)
	if err := m.validator.ValidateTags(tags); err != nil {
		m.fail(err)
		return model.Task{}, err
	}

	t := model.Task{
		ID:          newTaskID(),
		Title:       title,
		Description: strings.TrimSpace(draft.Description),
		Priority:    draft.Priority,
		Tags:        tags,
		Column:      draft.Column,
		CreatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !t.Priority.Valid() {
		m.fail(ErrInvalidPriority)
		return model.Task{}, ErrInvalidPriority
	}
	if t.Column == "" {
		t.Column = model.ColumnTodo
	}
	if !t.Column.Valid() {
		m.fail(ErrInvalidColumn)
		return model.Task{}, ErrInvalidColumn
	}
	if draft.DueDate != "" {
		due := draft.DueDate
		t.DueDate = &due
	}

	m.mu.Lock()
	m.tasks = append(m.tasks, t)
	saved := m.store.SaveTasks(m.tasks)
	saved = m.recordActivityLocked(model.ActivityCreated, t.ID, t.Title, "") && saved
	m.finishLocked(saved)
	m.mu.Unlock()
	m.notify()
	return t, nil
}

// UpdateTask merges the patch into an existing task. The merged record is
// validated as a whole before anything is applied.
func (m *Manager) UpdateTask(id model.TaskID, patch Patch) (model.Task, error) {
	now := m.now()

	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		m.fail(ErrTaskNotFound)
		return model.Task{}, ErrTaskNotFound
	}

	merged := m.tasks[idx]
	applyPatch(&merged, patch)
	// A due date already on the record may legitimately lie in the past by
	// now; only a date the patch introduces is checked against today.
	checkDue := ""
	if patch.DueDate != nil && *patch.DueDate != "" {
		checkDue = *patch.DueDate
	}
	if err := m.validator.validateMerged(merged, checkDue, now); err != nil {
		m.mu.Unlock()
		m.fail(err)
		return model.Task{}, err
	}

	m.tasks[idx] = merged
	saved := m.store.SaveTasks(m.tasks)
	saved = m.recordActivityLocked(model.ActivityEdited, merged.ID, merged.Title, "") && saved
	m.finishLocked(saved)
	m.mu.Unlock()
	m.notify()
	return merged, nil
}

// DeleteTask removes a task and derives a deleted activity carrying the
// pre-deletion title.
func (m *Manager) DeleteTask(id model.TaskID) error {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		m.fail(ErrTaskNotFound)
		return ErrTaskNotFound
	}

	t := m.tasks[idx]
	m.tasks = append(m.tasks[:idx], m.tasks[idx+1:]...)
	saved := m.store.SaveTasks(m.tasks)
	saved = m.recordActivityLocked(model.ActivityDeleted, t.ID, t.Title, "") && saved
	m.finishLocked(saved)
	m.mu.Unlock()
	m.notify()
	return nil
}

// MoveTask puts a task in a different column. Moving a task to the column
// it already occupies succeeds as a no-op and records no activity.
func (m *Manager) MoveTask(id model.TaskID, col model.Column) error {
	if !col.Valid() {
		m.fail(ErrInvalidColumn)
		return ErrInvalidColumn
	}

	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		m.fail(ErrTaskNotFound)
		return ErrTaskNotFound
	}

	from := m.tasks[idx].Column
	if from == col {
		m.mu.Unlock()
		return nil
	}

	m.tasks[idx].Column = col
	saved := m.store.SaveTasks(m.tasks)
	details := "from " + string(from) + " to " + string(col)
	saved = m.recordActivityLocked(model.ActivityMoved, m.tasks[idx].ID, m.tasks[idx].Title, details) && saved
	m.finishLocked(saved)
	m.mu.Unlock()
	m.notify()
	return nil
}

// ResetBoard clears both collections and removes all persisted records.
// Memory is cleared before the store reset is confirmed; if the reset
// fails, memory and store diverge until the next successful save. That
// inconsistency is accepted rather than corrected silently.
func (m *Manager) ResetBoard() error {
	m.mu.Lock()
	m.tasks = []model.Task{}
	m.activities = []model.Activity{}
	ok := m.store.ResetAll()
	if ok {
		m.lastErr = ""
	} else {
		m.lastErr = ErrSaveFailed.Error()
	}
	m.mu.Unlock()
	m.notify()
	if !ok {
		return ErrSaveFailed
	}
	return nil
}

// SetSearch, SetPriorityFilter and SetSortByDueDate hold the view settings
// the presentation layer feeds into the query derivations.
func (m *Manager) SetSearch(q string) {
	m.mu.Lock()
	m.search = q
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) SetPriorityFilter(p model.Priority) {
	m.mu.Lock()
	m.priorityFilter = p
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) SetSortByDueDate(on bool) {
	m.mu.Lock()
	m.sortByDueDate = on
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) Search() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.search
}

func (m *Manager) PriorityFilter() model.Priority {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priorityFilter
}

func (m *Manager) SortByDueDate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortByDueDate
}

// VisibleTasks applies the current view settings to one column.
func (m *Manager) VisibleTasks(col model.Column) []model.Task {
	m.mu.Lock()
	search, prio, sorted := m.search, m.priorityFilter, m.sortByDueDate
	tasks := make([]model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.Column == col {
			tasks = append(tasks, t)
		}
	}
	m.mu.Unlock()

	tasks = FilterTasks(tasks, TaskFilter{Search: search, Priority: prio})
	if sorted {
		tasks = SortTasksByDueDate(tasks)
	}
	return tasks
}

func (m *Manager) indexLocked(id model.TaskID) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// recordActivityLocked prepends a derived activity, evicts past the cap and
// persists the collection, reporting whether the save succeeded.
func (m *Manager) recordActivityLocked(typ model.ActivityType, id model.TaskID, title, details string) bool {
	now := m.now()
	act := model.Activity{
		ID:        strconv.FormatInt(now.UnixNano(), 10),
		Type:      typ,
		TaskID:    id,
		TaskTitle: title,
		Timestamp: now,
		Details:   details,
	}
	m.activities = append([]model.Activity{act}, m.activities...)
	if len(m.activities) > m.limits.ActivityCap {
		m.activities = m.activities[:m.limits.ActivityCap]
	}
	return m.store.SaveActivities(m.activities)
}

// finishLocked resolves the transient error after a mutation: a failed save
// sets it, a fully successful operation clears whatever was pending.
func (m *Manager) finishLocked(saved bool) {
	if saved {
		m.lastErr = ""
	} else {
		m.lastErr = ErrSaveFailed.Error()
	}
}

// fail records a validation failure as the transient error.
func (m *Manager) fail(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
	m.notify()
}

func applyPatch(t *model.Task, p Patch) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			t.DueDate = nil
		} else {
			due := *p.DueDate
			t.DueDate = &due
		}
	}
	if p.Tags != nil {
		t.Tags = normalizeTags(*p.Tags)
	}
	if p.Column != nil {
		t.Column = *p.Column
	}
}

func newTaskID() model.TaskID {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return model.TaskID("task_" + hex.EncodeToString(b[:]))
}
