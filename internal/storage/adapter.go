package storage

import (
	"encoding/json"
	"log"

	"github.com/dragonbytelabs/taskboard/internal/model"
)

// Store keys, one per persisted record collection.
const (
	keyTasks      = "task-board-tasks"
	keyActivities = "task-board-activities"
	keyUser       = "task-board-user"

	probeKey = "__storage_test__"
)

// Adapter wraps the raw key-value store with serialization and record
// validation. It owns no state and never panics past its boundary: reads
// fall back to empty values, writes report success as a bool.
type Adapter struct {
	kv     KV
	logger *log.Logger
}

func NewAdapter(kv KV, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{kv: kv, logger: logger}
}

// LoadTasks reads the tasks record. A missing key, a parse failure, or a
// non-array payload all yield an empty slice; individually invalid records
// are dropped.
func (a *Adapter) LoadTasks() []model.Task {
	b, ok := a.kv.Get(keyTasks)
	if !ok {
		return []model.Task{}
	}

	var tasks []model.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		a.logger.Printf("storage: discarding unreadable tasks record: %v", err)
		return []model.Task{}
	}

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if model.ValidTask(t) {
			out = append(out, t)
		}
	}
	if len(out) != len(tasks) {
		a.logger.Printf("storage: filtered %d invalid task(s) on load", len(tasks)-len(out))
	}
	return out
}

// SaveTasks writes the tasks record, silently dropping invalid entries.
// A partial write of the valid subset still reports success; only a failure
// of the underlying store (e.g. quota) reports false.
func (a *Adapter) SaveTasks(tasks []model.Task) bool {
	valid := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if model.ValidTask(t) {
			valid = append(valid, t)
		}
	}
	if len(valid) != len(tasks) {
		a.logger.Printf("storage: filtered %d invalid task(s) on save", len(tasks)-len(valid))
	}

	b, err := json.Marshal(valid)
	if err != nil {
		a.logger.Printf("storage: encode tasks: %v", err)
		return false
	}
	if err := a.kv.Set(keyTasks, string(b)); err != nil {
		a.logger.Printf("storage: save tasks: %v", err)
		return false
	}
	return true
}

func (a *Adapter) LoadActivities() []model.Activity {
	b, ok := a.kv.Get(keyActivities)
	if !ok {
		return []model.Activity{}
	}

	var activities []model.Activity
	if err := json.Unmarshal(b, &activities); err != nil {
		a.logger.Printf("storage: discarding unreadable activities record: %v", err)
		return []model.Activity{}
	}

	out := make([]model.Activity, 0, len(activities))
	for _, act := range activities {
		if model.ValidActivity(act) {
			out = append(out, act)
		}
	}
	if len(out) != len(activities) {
		a.logger.Printf("storage: filtered %d invalid activity(ies) on load", len(activities)-len(out))
	}
	return out
}

func (a *Adapter) SaveActivities(activities []model.Activity) bool {
	valid := make([]model.Activity, 0, len(activities))
	for _, act := range activities {
		if model.ValidActivity(act) {
			valid = append(valid, act)
		}
	}
	if len(valid) != len(activities) {
		a.logger.Printf("storage: filtered %d invalid activity(ies) on save", len(activities)-len(valid))
	}

	b, err := json.Marshal(valid)
	if err != nil {
		a.logger.Printf("storage: encode activities: %v", err)
		return false
	}
	if err := a.kv.Set(keyActivities, string(b)); err != nil {
		a.logger.Printf("storage: save activities: %v", err)
		return false
	}
	return true
}

// LoadUser returns the persisted session record, or nil when no session is
// active or the record is unreadable.
func (a *Adapter) LoadUser() *model.User {
	b, ok := a.kv.Get(keyUser)
	if !ok {
		return nil
	}
	var u model.User
	if err := json.Unmarshal(b, &u); err != nil {
		a.logger.Printf("storage: discarding unreadable user record: %v", err)
		return nil
	}
	if u.Email == "" {
		return nil
	}
	return &u
}

func (a *Adapter) SaveUser(u model.User) bool {
	if u.Email == "" {
		a.logger.Printf("storage: refusing to save user without email")
		return false
	}
	b, err := json.Marshal(u)
	if err != nil {
		a.logger.Printf("storage: encode user: %v", err)
		return false
	}
	if err := a.kv.Set(keyUser, string(b)); err != nil {
		a.logger.Printf("storage: save user: %v", err)
		return false
	}
	return true
}

func (a *Adapter) ClearUser() bool {
	if err := a.kv.Remove(keyUser); err != nil {
		a.logger.Printf("storage: clear user: %v", err)
		return false
	}
	return true
}

// ResetAll removes all three records.
func (a *Adapter) ResetAll() bool {
	ok := true
	for _, key := range []string{keyTasks, keyActivities, keyUser} {
		if err := a.kv.Remove(key); err != nil {
			a.logger.Printf("storage: reset %s: %v", key, err)
			ok = false
		}
	}
	return ok
}

// IsAvailable probes the store with a throwaway write and delete.
func (a *Adapter) IsAvailable() bool {
	if err := a.kv.Set(probeKey, "test"); err != nil {
		return false
	}
	return a.kv.Remove(probeKey) == nil
}

// Size reports the total byte size of the three persisted records.
func (a *Adapter) Size() int {
	total := 0
	for _, key := range []string{keyTasks, keyActivities, keyUser} {
		if b, ok := a.kv.Get(key); ok {
			total += len(b)
		}
	}
	return total
}
