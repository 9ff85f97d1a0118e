package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dragonbytelabs/taskboard/internal/auth"
	"github.com/dragonbytelabs/taskboard/internal/board"
	"github.com/dragonbytelabs/taskboard/internal/model"
)

// StateChanged is sent into the program whenever the board manager reports
// a state change; the entrypoint wires Manager.Subscribe to Program.Send.
type StateChanged struct{}

type screen int

const (
	screenLogin screen = iota
	screenBoard
)

type uiMode int

const (
	modeNormal uiMode = iota
	modeForm
	modeSearch
	modeConfirmDelete
	modeConfirmReset
)

type Model struct {
	mgr  *board.Manager
	auth *auth.Service

	screen screen
	mode   uiMode

	// login
	email    textinput.Model
	password textinput.Model
	loginFoc int
	remember bool
	loginErr string

	// board
	colFocus    int
	cursors     [3]int
	form        taskForm
	search      textinput.Model
	confirmID   model.TaskID
	confirmName string

	showActivity   bool
	activityNewest bool
	activityType   model.ActivityType

	status    string
	statusErr bool

	width  int
	height int
}

func NewModel(mgr *board.Manager, authSvc *auth.Service) *Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.Focus()
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	search := textinput.New()
	search.Placeholder = "search title..."

	m := &Model{
		mgr:            mgr,
		auth:           authSvc,
		email:          email,
		password:       password,
		search:         search,
		activityNewest: true,
		status:         "Ready",
	}
	if authSvc.IsAuthenticated() {
		m.screen = screenBoard
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StateChanged:
		m.clampCursors()
	case tea.KeyMsg:
		if m.screen == screenLogin {
			return m, m.updateLogin(msg)
		}
		switch m.mode {
		case modeForm:
			return m, m.updateForm(msg)
		case modeSearch:
			return m, m.updateSearch(msg)
		case modeConfirmDelete, modeConfirmReset:
			m.updateConfirm(msg)
		default:
			if quit := m.updateNormal(msg); quit {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *Model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "tab", "down":
		m.loginFoc = (m.loginFoc + 1) % 3
	case "shift+tab", "up":
		m.loginFoc = (m.loginFoc + 2) % 3
	case " ":
		if m.loginFoc == 2 {
			m.remember = !m.remember
			return nil
		}
	case "enter":
		if err := m.auth.Login(m.email.Value(), m.password.Value(), m.remember); err != nil {
			m.loginErr = err.Error()
			return nil
		}
		m.loginErr = ""
		m.screen = screenBoard
		m.setStatus("Welcome back", false)
		return nil
	}

	m.email.Blur()
	m.password.Blur()
	var cmd tea.Cmd
	switch m.loginFoc {
	case 0:
		m.email.Focus()
		m.email, cmd = m.email.Update(msg)
	case 1:
		m.password.Focus()
		m.password, cmd = m.password.Update(msg)
	}
	return cmd
}

func (m *Model) updateNormal(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+c", "q":
		return true
	case "tab", "l", "right":
		m.colFocus = (m.colFocus + 1) % 3
	case "shift+tab", "h", "left":
		m.colFocus = (m.colFocus + 2) % 3
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "a":
		m.form = newTaskForm()
		m.form.column = model.Columns()[m.colFocus]
		m.mode = modeForm
	case "e":
		if t, ok := m.selectedTask(); ok {
			m.form = formForTask(t)
			m.mode = modeForm
		}
	case "d":
		if t, ok := m.selectedTask(); ok {
			m.confirmID = t.ID
			m.confirmName = t.Title
			m.mode = modeConfirmDelete
		}
	case "m", "]":
		m.moveSelected(1)
	case "[":
		m.moveSelected(-1)
	case "/":
		m.search.SetValue(m.mgr.Search())
		m.search.Focus()
		m.mode = modeSearch
	case "p":
		m.cyclePriorityFilter()
	case "s":
		m.mgr.SetSortByDueDate(!m.mgr.SortByDueDate())
		if m.mgr.SortByDueDate() {
			m.setStatus("Sorted by due date", false)
		} else {
			m.setStatus("Sort off", false)
		}
	case "A":
		m.showActivity = !m.showActivity
	case "o":
		m.activityNewest = !m.activityNewest
	case "t":
		m.cycleActivityType()
	case "x", "esc":
		if m.mgr.Err() != "" {
			m.mgr.ClearError()
			m.setStatus("Error dismissed", false)
		}
	case "r":
		if m.mgr.Status() == board.StatusErrored {
			if err := m.mgr.RetryLoad(); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.setStatus("Reloaded", false)
			}
		}
	case "R":
		m.mode = modeConfirmReset
	case "L":
		m.auth.Logout()
		m.screen = screenLogin
		m.loginFoc = 0
		m.email.SetValue("")
		m.password.SetValue("")
		m.email.Focus()
	}

	m.clampCursors()
	return false
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		return nil
	case "tab", "down":
		m.form.nextField(1)
		return nil
	case "shift+tab", "up":
		m.form.nextField(-1)
		return nil
	case "ctrl+p":
		m.form.cyclePriority()
		return nil
	case "enter":
		m.submitForm()
		return nil
	}
	return m.form.update(msg)
}

func (m *Model) submitForm() {
	if m.form.editing != "" {
		if _, err := m.mgr.UpdateTask(m.form.editing, m.form.patch()); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		m.setStatus("Task updated", false)
	} else {
		t, err := m.mgr.AddTask(m.form.draft())
		if err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		m.setStatus(fmt.Sprintf("Created %q", t.Title), false)
	}
	m.mode = modeNormal
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.mode = modeNormal
		m.search.Blur()
		return nil
	case "esc":
		m.search.SetValue("")
		m.mgr.SetSearch("")
		m.mode = modeNormal
		m.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.mgr.SetSearch(m.search.Value())
	return cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) {
	confirmed := msg.String() == "y" || msg.String() == "Y"

	switch m.mode {
	case modeConfirmDelete:
		if confirmed {
			if err := m.mgr.DeleteTask(m.confirmID); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.setStatus(fmt.Sprintf("Deleted %q", m.confirmName), false)
			}
		}
	case modeConfirmReset:
		if confirmed {
			if err := m.mgr.ResetBoard(); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.setStatus("Board reset", false)
			}
		}
	}
	m.confirmID = ""
	m.confirmName = ""
	m.mode = modeNormal
	m.clampCursors()
}

func (m *Model) cyclePriorityFilter() {
	switch m.mgr.PriorityFilter() {
	case "":
		m.mgr.SetPriorityFilter(model.PriorityLow)
	case model.PriorityLow:
		m.mgr.SetPriorityFilter(model.PriorityMedium)
	case model.PriorityMedium:
		m.mgr.SetPriorityFilter(model.PriorityHigh)
	default:
		m.mgr.SetPriorityFilter("")
	}
}

func (m *Model) cycleActivityType() {
	switch m.activityType {
	case "":
		m.activityType = model.ActivityCreated
	case model.ActivityCreated:
		m.activityType = model.ActivityEdited
	case model.ActivityEdited:
		m.activityType = model.ActivityMoved
	case model.ActivityMoved:
		m.activityType = model.ActivityDeleted
	default:
		m.activityType = ""
	}
}

func (m *Model) moveCursor(delta int) {
	n := len(m.columnTasks(m.colFocus))
	if n == 0 {
		m.cursors[m.colFocus] = 0
		return
	}
	c := m.cursors[m.colFocus] + delta
	if c < 0 {
		c = 0
	}
	if c >= n {
		c = n - 1
	}
	m.cursors[m.colFocus] = c
}

func (m *Model) moveSelected(dir int) {
	t, ok := m.selectedTask()
	if !ok {
		return
	}
	cols := model.Columns()
	cur := 0
	for i, c := range cols {
		if c == t.Column {
			cur = i
		}
	}
	next := cur + dir
	if next < 0 || next >= len(cols) {
		return
	}
	if err := m.mgr.MoveTask(t.ID, cols[next]); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Moved %q to %s", t.Title, cols[next]), false)
	m.clampCursors()
}

func (m *Model) columnTasks(i int) []model.Task {
	return m.mgr.VisibleTasks(model.Columns()[i])
}

func (m *Model) selectedTask() (model.Task, bool) {
	tasks := m.columnTasks(m.colFocus)
	c := m.cursors[m.colFocus]
	if c < 0 || c >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[c], true
}

func (m *Model) clampCursors() {
	for i := range m.cursors {
		n := len(m.columnTasks(i))
		if m.cursors[i] >= n {
			m.cursors[i] = n - 1
		}
		if m.cursors[i] < 0 {
			m.cursors[i] = 0
		}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	if m.screen == screenLogin {
		return m.viewLogin()
	}
	return m.viewBoard()
}

func (m *Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Task Board"))
	b.WriteString("\n\nSign in with the demo credential\n\n")
	b.WriteString(m.email.View() + "\n")
	b.WriteString(m.password.View() + "\n\n")

	check := "[ ]"
	if m.remember {
		check = "[x]"
	}
	remember := check + " remember me"
	if m.loginFoc == 2 {
		remember = lipgloss.NewStyle().Bold(true).Render(remember + "  (space toggles)")
	}
	b.WriteString(remember + "\n")

	if m.loginErr != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.loginErr) + "\n")
	}
	b.WriteString("\nEnter sign in • ctrl+c quit")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 3).
		Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) viewBoard() string {
	switch m.mgr.Status() {
	case board.StatusUninitialized, board.StatusLoading:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, "loading board...")
	case board.StatusErrored:
		msg := "Failed to load board: " + m.mgr.Err() + "\n\nr retry • q quit"
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
	}

	header := m.renderHeader()
	body := m.renderColumns()
	if m.showActivity {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderActivityPanel())
	}
	footer := m.renderFooter()

	parts := []string{header, body, footer}

	if m.mode == modeForm {
		overlay := m.form.view(m.width)
		parts = []string{header, lipgloss.Place(m.width, lipgloss.Height(body), lipgloss.Center, lipgloss.Center, overlay), footer}
	}

	return strings.Join(parts, "\n")
}

func (m *Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render("Task Board")

	who := ""
	if u := m.auth.CurrentUser(); u != nil {
		who = u.Email
	}
	info := []string{who}
	if q := m.mgr.Search(); q != "" {
		info = append(info, fmt.Sprintf("search: %q", q))
	}
	if p := m.mgr.PriorityFilter(); p != "" {
		info = append(info, "priority: "+string(p))
	}
	if m.mgr.SortByDueDate() {
		info = append(info, "sorted by due date")
	}

	line := title + lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  "+strings.Join(info, " • "))

	if errMsg := m.mgr.Err(); errMsg != "" {
		banner := lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Render("! " + errMsg + "  (x dismiss)")
		line += "\n" + banner
	}
	return line
}

func (m *Model) renderColumns() string {
	colW := m.width/3 - 2
	if m.showActivity {
		colW = (m.width - 34) / 3
	}
	if colW < 18 {
		colW = 18
	}
	colH := m.height - 6
	if colH < 6 {
		colH = 6
	}

	panels := make([]string, 0, 3)
	for i, col := range model.Columns() {
		panels = append(panels, m.renderColumn(i, col, colW, colH))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}

var columnTitles = map[model.Column]string{
	model.ColumnTodo:  "Todo",
	model.ColumnDoing: "Doing",
	model.ColumnDone:  "Done",
}

var priorityColors = map[model.Priority]lipgloss.Color{
	model.PriorityLow:    lipgloss.Color("42"),
	model.PriorityMedium: lipgloss.Color("214"),
	model.PriorityHigh:   lipgloss.Color("196"),
}

func (m *Model) renderColumn(i int, col model.Column, w, h int) string {
	tasks := m.columnTasks(i)

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true)
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[col], len(tasks))))
	b.WriteString("\n")

	for j, t := range tasks {
		line := t.Title
		if t.DueDate != nil {
			line += "  " + *t.DueDate
		}
		dot := lipgloss.NewStyle().Foreground(priorityColors[t.Priority]).Render("●")
		prefix := "  "
		style := lipgloss.NewStyle()
		if i == m.colFocus && j == m.cursors[i] {
			prefix = "> "
			style = style.Bold(true)
		}
		b.WriteString(prefix + dot + " " + style.Render(truncate(line, w-6)) + "\n")
		if len(t.Tags) > 0 {
			tagLine := "    #" + strings.Join(t.Tags, " #")
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(truncate(tagLine, w-4)) + "\n")
		}
	}
	if len(tasks) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  no tasks"))
	}

	borderColor := lipgloss.Color("240")
	if i == m.colFocus {
		borderColor = lipgloss.Color("39")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(w).
		Height(h).
		Render(b.String())
}

func (m *Model) renderActivityPanel() string {
	activities := board.FilterActivities(m.mgr.Activities(), board.ActivityFilter{Type: m.activityType})
	activities = board.SortActivities(activities, m.activityNewest)

	var b strings.Builder
	label := "Activity"
	if m.activityType != "" {
		label += " • " + string(m.activityType)
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(label) + "\n")

	now := time.Now()
	shown := 0
	for _, a := range activities {
		if shown >= m.height-10 {
			break
		}
		b.WriteString(truncate(activityText(a), 28) + "\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  "+board.RelativeTime(a.Timestamp, now)) + "\n")
		shown++
	}
	if len(activities) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("no activities yet"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(30).
		Height(m.height - 6).
		Render(b.String())
}

func activityText(a model.Activity) string {
	switch a.Type {
	case model.ActivityCreated:
		return fmt.Sprintf("Created task %q", a.TaskTitle)
	case model.ActivityEdited:
		return fmt.Sprintf("Edited task %q", a.TaskTitle)
	case model.ActivityMoved:
		return fmt.Sprintf("Moved task %q %s", a.TaskTitle, a.Details)
	case model.ActivityDeleted:
		return fmt.Sprintf("Deleted task %q", a.TaskTitle)
	}
	return fmt.Sprintf("Action on %q", a.TaskTitle)
}

func (m *Model) renderFooter() string {
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	if m.statusErr {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}

	var prompt string
	switch m.mode {
	case modeSearch:
		prompt = "Search: " + m.search.View()
	case modeConfirmDelete:
		prompt = fmt.Sprintf("Delete task %q? [y/N]", m.confirmName)
	case modeConfirmReset:
		prompt = "Reset the whole board? This clears tasks and activity. [y/N]"
	}

	hints := "a add • e edit • d delete • [/] move • / search • p priority • s sort • A activity • R reset • L logout • q quit"
	line := statusStyle.Render(m.status)
	if prompt != "" {
		line = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render(prompt)
	}
	return line + "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(truncate(hints, m.width))
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}
