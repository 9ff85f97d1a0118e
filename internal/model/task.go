package model

import "time"

type TaskID string

// Column is one of the three fixed workflow stages on the board.
type Column string

const (
	ColumnTodo  Column = "todo"
	ColumnDoing Column = "doing"
	ColumnDone  Column = "done"
)

// Columns returns the valid columns in board order.
func Columns() []Column {
	return []Column{ColumnTodo, ColumnDoing, ColumnDone}
}

func (c Column) Valid() bool {
	switch c {
	case ColumnTodo, ColumnDoing, ColumnDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one column.
// ID and CreatedAt are assigned at creation and never change afterwards.
type Task struct {
	ID          TaskID    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	DueDate     *string   `json:"dueDate,omitempty"` // YYYY-MM-DD
	Tags        []string  `json:"tags"`
	Column      Column    `json:"column"`
	CreatedAt   time.Time `json:"createdAt"`
}
