package board

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dragonbytelabs/taskboard/internal/model"
)

// TaskFilter selects tasks by free-text title search and/or exact priority.
// Zero values mean the filter is not applied; combined filters are
// conjunctive.
type TaskFilter struct {
	Search   string
	Priority model.Priority
}

// FilterTasks returns the tasks matching the filter, in their original
// order. The search term matches case-insensitively against the title; a
// blank term matches everything.
func FilterTasks(tasks []model.Task, f TaskFilter) []model.Task {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortTasksByDueDate returns a copy sorted by ascending due date, undated
// tasks after all dated ones, ties keeping their existing order.
func SortTasksByDueDate(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DueDate, out[j].DueDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			// YYYY-MM-DD compares lexicographically
			return *di < *dj
		}
	})
	return out
}

// ActivityFilter selects activities by exact type and/or a case-insensitive
// substring match against the task title or details. Conjunctive, zero
// values not applied.
type ActivityFilter struct {
	Type   model.ActivityType
	Search string
}

func FilterActivities(activities []model.Activity, f ActivityFilter) []model.Activity {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]model.Activity, 0, len(activities))
	for _, a := range activities {
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.TaskTitle), search) &&
			!strings.Contains(strings.ToLower(a.Details), search) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SortActivities returns a copy ordered by timestamp, newest-first or
// oldest-first.
func SortActivities(activities []model.Activity, newestFirst bool) []model.Activity {
	out := make([]model.Activity, len(activities))
	copy(out, activities)
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// RelativeTime renders a timestamp relative to now: "just now" under a
// minute, then minutes, hours and days, falling back to a plain date after
// a week.
func RelativeTime(ts, now time.Time) string {
	diff := now.Sub(ts)

	mins := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case mins < 1:
		return "just now"
	case mins < 60:
		return plural(mins, "min", "min") + " ago"
	case hours < 24:
		return plural(hours, "hour", "hours") + " ago"
	case days < 7:
		return plural(days, "day", "days") + " ago"
	default:
		return ts.Format("1/2/2006")
	}
}

func plural(n int, one, many string) string {
	word := many
	if n == 1 {
		word = one
	}
	return strconv.Itoa(n) + " " + word
}
