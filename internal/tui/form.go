package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dragonbytelabs/taskboard/internal/board"
	"github.com/dragonbytelabs/taskboard/internal/model"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldTags
	fieldCount
)

// taskForm edits the draft fields for a new or existing task. All business
// validation happens in the board package; the form only requires a title
// before it allows submission.
type taskForm struct {
	inputs   [fieldCount]textinput.Model
	focus    int
	priority model.Priority
	column   model.Column

	editing model.TaskID // empty when creating
}

func newTaskForm() taskForm {
	f := taskForm{priority: model.PriorityMedium, column: model.ColumnTodo}

	labels := [fieldCount]string{"Title", "Description", "Due date (YYYY-MM-DD)", "Tags (comma separated)"}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.CharLimit = 0
		in.Width = 44
		f.inputs[i] = in
	}
	f.inputs[fieldTitle].Focus()
	return f
}

func formForTask(t model.Task) taskForm {
	f := newTaskForm()
	f.editing = t.ID
	f.priority = t.Priority
	f.column = t.Column
	f.inputs[fieldTitle].SetValue(t.Title)
	f.inputs[fieldDescription].SetValue(t.Description)
	if t.DueDate != nil {
		f.inputs[fieldDueDate].SetValue(*t.DueDate)
	}
	f.inputs[fieldTags].SetValue(strings.Join(t.Tags, ", "))
	return f
}

func (f *taskForm) nextField(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f *taskForm) cyclePriority() {
	switch f.priority {
	case model.PriorityLow:
		f.priority = model.PriorityMedium
	case model.PriorityMedium:
		f.priority = model.PriorityHigh
	default:
		f.priority = model.PriorityLow
	}
}

func (f *taskForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *taskForm) draft() board.Draft {
	return board.Draft{
		Title:       f.inputs[fieldTitle].Value(),
		Description: f.inputs[fieldDescription].Value(),
		Priority:    f.priority,
		DueDate:     strings.TrimSpace(f.inputs[fieldDueDate].Value()),
		Tags:        splitTags(f.inputs[fieldTags].Value()),
		Column:      f.column,
	}
}

func (f *taskForm) patch() board.Patch {
	title := f.inputs[fieldTitle].Value()
	desc := f.inputs[fieldDescription].Value()
	due := strings.TrimSpace(f.inputs[fieldDueDate].Value())
	tags := splitTags(f.inputs[fieldTags].Value())
	prio := f.priority
	return board.Patch{
		Title:       &title,
		Description: &desc,
		Priority:    &prio,
		DueDate:     &due,
		Tags:        &tags,
	}
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (f *taskForm) view(width int) string {
	title := "Create Task"
	if f.editing != "" {
		title = "Edit Task"
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")
	for i := range f.inputs {
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\nPriority: " + lipgloss.NewStyle().Bold(true).Render(string(f.priority)) + "  (ctrl+p cycles)")
	b.WriteString("\n\nEnter save • Esc cancel • Tab next field")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("39")).
		Padding(1, 2).
		Width(min(width-4, 56)).
		Render(b.String())
}
