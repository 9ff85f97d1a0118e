package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidTask(t *testing.T) {
	valid := Task{ID: "task_1", Title: "ok", Column: ColumnTodo, Priority: PriorityMedium}

	tests := []struct {
		name   string
		mutate func(*Task)
		want   bool
	}{
		{"valid", func(*Task) {}, true},
		{"missing id", func(x *Task) { x.ID = "" }, false},
		{"missing title", func(x *Task) { x.Title = "" }, false},
		{"bad column", func(x *Task) { x.Column = "backlog" }, false},
		{"empty column", func(x *Task) { x.Column = "" }, false},
		{"bad priority", func(x *Task) { x.Priority = "urgent" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := valid
			tt.mutate(&task)
			assert.Equal(t, tt.want, ValidTask(task))
		})
	}
}

func TestValidActivity(t *testing.T) {
	valid := Activity{ID: "1700000000000", Type: ActivityCreated, Timestamp: time.Now()}

	tests := []struct {
		name   string
		mutate func(*Activity)
		want   bool
	}{
		{"valid", func(*Activity) {}, true},
		{"missing id", func(x *Activity) { x.ID = "" }, false},
		{"bad type", func(x *Activity) { x.Type = "archived" }, false},
		{"zero timestamp", func(x *Activity) { x.Timestamp = time.Time{} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := valid
			tt.mutate(&act)
			assert.Equal(t, tt.want, ValidActivity(act))
		})
	}
}
