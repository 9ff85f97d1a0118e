package model

import "time"

type ActivityType string

const (
	ActivityCreated ActivityType = "created"
	ActivityEdited  ActivityType = "edited"
	ActivityMoved   ActivityType = "moved"
	ActivityDeleted ActivityType = "deleted"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCreated, ActivityEdited, ActivityMoved, ActivityDeleted:
		return true
	}
	return false
}

// Activity is an immutable audit entry derived from a task mutation.
// TaskTitle is a snapshot taken at mutation time, so the entry stays
// readable after the task itself is deleted.
type Activity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	TaskID    TaskID       `json:"taskId"`
	TaskTitle string       `json:"taskTitle"`
	Timestamp time.Time    `json:"timestamp"`
	Details   string       `json:"details,omitempty"`
}
