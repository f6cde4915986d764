package views

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// form fields in tab order
const (
	fieldTitle = iota
	fieldDesc
	fieldDue
	fieldStatus
	fieldAssignee
	fieldLabels
	fieldSave
	fieldCount
)

type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCanceled
)

// TaskForm creates a task or edits an existing one
type TaskForm struct {
	styles *styles.Styles
	keys   keys.KeyMap

	original *models.Task // nil for a new task
	labels   []models.Label
	users    []models.User

	title    textinput.Model
	desc     textarea.Model
	due      textinput.Model
	status   int
	assignee int // 0 = unassigned, else users[assignee-1]
	selected []string
	cursor   int // label cursor
	focus    int
	err      string
}

// NewTaskForm opens the form. status preselects the column for new tasks.
func NewTaskForm(s *styles.Styles, km keys.KeyMap, task *models.Task, status models.Status, labels []models.Label, users []models.User) *TaskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 2000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.CharLimit = 10

	f := &TaskForm{
		styles: s,
		keys:   km,
		labels: labels,
		users:  users,
		title:  title,
		desc:   desc,
		due:    due,
		status: max(status.Index(), 0),
	}
	if task != nil {
		t := task.Clone()
		f.original = &t
		f.title.SetValue(t.Title)
		f.title.CursorEnd()
		f.desc.SetValue(t.Description)
		if !t.DueDate.IsZero() {
			f.due.SetValue(t.DueDate.String())
		}
		f.status = max(t.Status.Index(), 0)
		if i := slices.IndexFunc(users, func(u models.User) bool { return u.ID == t.AssigneeID }); i >= 0 {
			f.assignee = i + 1
		}
		f.selected = t.LabelIDs()
	}
	f.updateFocus()
	return f
}

// Editing reports whether the form edits an existing task
func (f *TaskForm) Editing() bool { return f.original != nil }

// TaskID is the edited task, or "" for a new one
func (f *TaskForm) TaskID() string {
	if f.original == nil {
		return ""
	}
	return f.original.ID
}

// SetWidth resizes the multi-line input
func (f *TaskForm) SetWidth(w int) {
	f.desc.SetWidth(clamp(w-10, 20, 50))
}

func (f *TaskForm) Update(msg tea.KeyMsg) (formResult, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Back):
		return formCanceled, nil

	case key.Matches(msg, f.keys.Submit):
		return f.submit(), nil

	case key.Matches(msg, f.keys.Tab):
		f.focus = (f.focus + 1) % fieldCount
		f.updateFocus()
		return formEditing, nil

	case msg.String() == "shift+tab":
		f.focus = (f.focus + fieldCount - 1) % fieldCount
		f.updateFocus()
		return formEditing, nil

	case key.Matches(msg, f.keys.Enter):
		switch f.focus {
		case fieldTitle, fieldDue, fieldStatus, fieldAssignee:
			f.focus++
			f.updateFocus()
			return formEditing, nil
		case fieldLabels:
			f.toggleLabel()
			return formEditing, nil
		case fieldSave:
			return f.submit(), nil
		}
		// enter is a newline in the description

	case f.focus == fieldLabels && key.Matches(msg, f.keys.Toggle):
		f.toggleLabel()
		return formEditing, nil

	case f.focus == fieldLabels && key.Matches(msg, f.keys.Up):
		f.cursor = max(f.cursor-1, 0)
		return formEditing, nil

	case f.focus == fieldLabels && key.Matches(msg, f.keys.Down):
		f.cursor = clamp(f.cursor+1, 0, max(len(f.labels)-1, 0))
		return formEditing, nil

	case f.focus == fieldStatus && (key.Matches(msg, f.keys.Left) || key.Matches(msg, f.keys.Right)):
		f.status = cycle(f.status, len(models.Statuses()), key.Matches(msg, f.keys.Right))
		return formEditing, nil

	case f.focus == fieldAssignee && (key.Matches(msg, f.keys.Left) || key.Matches(msg, f.keys.Right)):
		f.assignee = cycle(f.assignee, len(f.users)+1, key.Matches(msg, f.keys.Right))
		return formEditing, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDesc:
		f.desc, cmd = f.desc.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	}
	return formEditing, cmd
}

func cycle(i, n int, forward bool) int {
	if n == 0 {
		return 0
	}
	if forward {
		return (i + 1) % n
	}
	return (i + n - 1) % n
}

func (f *TaskForm) toggleLabel() {
	if f.cursor >= len(f.labels) {
		return
	}
	id := f.labels[f.cursor].ID
	if i := slices.Index(f.selected, id); i >= 0 {
		f.selected = slices.Delete(f.selected, i, i+1)
		return
	}
	f.selected = append(f.selected, id)
}

func (f *TaskForm) updateFocus() {
	f.title.Blur()
	f.desc.Blur()
	f.due.Blur()

	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldDesc:
		f.desc.Focus()
	case fieldDue:
		f.due.Focus()
	}
}

// submit validates what can be checked locally; the server has the last word
func (f *TaskForm) submit() formResult {
	if strings.TrimSpace(f.title.Value()) == "" {
		f.err = "Title is required"
		f.focus = fieldTitle
		f.updateFocus()
		return formEditing
	}
	if _, err := models.ParseDate(f.due.Value()); err != nil {
		f.err = "Due date must be YYYY-MM-DD"
		f.focus = fieldDue
		f.updateFocus()
		return formEditing
	}
	f.err = ""
	return formSubmitted
}

func (f *TaskForm) assigneeID() string {
	if f.assignee == 0 || f.assignee > len(f.users) {
		return ""
	}
	return f.users[f.assignee-1].ID
}

// Draft returns the new task
func (f *TaskForm) Draft() models.TaskDraft {
	due, _ := models.ParseDate(f.due.Value())
	return models.TaskDraft{
		Title:       f.title.Value(),
		Description: strings.TrimSpace(f.desc.Value()),
		Status:      models.Statuses()[f.status],
		AssigneeID:  f.assigneeID(),
		DueDate:     due,
		LabelIDs:    slices.Clone(f.selected),
	}
}

// Patch returns only the fields that differ from the edited task
func (f *TaskForm) Patch() models.TaskPatch {
	var p models.TaskPatch
	if f.original == nil {
		return p
	}
	t := f.original

	if title := strings.TrimSpace(f.title.Value()); title != t.Title {
		p.Title = &title
	}
	if desc := strings.TrimSpace(f.desc.Value()); desc != t.Description {
		p.Description = &desc
	}
	if due, _ := models.ParseDate(f.due.Value()); !due.Equal(t.DueDate) {
		p.DueDate = &due
	}
	if status := models.Statuses()[f.status]; status != t.Status {
		p.Status = &status
	}
	if id := f.assigneeID(); id != t.AssigneeID {
		p.AssigneeID = &id
	}
	if !sameIDs(f.selected, t.LabelIDs()) {
		labels := make([]models.Label, 0, len(f.selected))
		for _, id := range f.selected {
			l := models.Label{ID: id}
			if i := slices.IndexFunc(f.labels, func(l models.Label) bool { return l.ID == id }); i >= 0 {
				l = f.labels[i]
			}
			labels = append(labels, l)
		}
		p.Labels = &labels
	}
	return p
}

func sameIDs(a, b []string) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func (f *TaskForm) View(width, height int) string {
	s := f.styles
	contentWidth := styles.ContentWidth(width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	field := func(i int) lipgloss.Style {
		if f.focus == i {
			return s.InputFocused
		}
		return s.Input
	}

	formTitle := "New Task"
	if f.Editing() {
		formTitle = "Edit Task"
	}

	status := models.Statuses()[f.status]
	statusLine := lipgloss.NewStyle().Foreground(styles.StatusColor(status)).Render("‹ " + status.Title() + " ›")

	assignee := "Unassigned"
	if f.assignee > 0 && f.assignee <= len(f.users) {
		assignee = f.users[f.assignee-1].Name
	}

	btnStyle := s.Button
	if f.focus == fieldSave {
		btnStyle = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Title:",
		field(fieldTitle).Width(inputWidth).Render(f.title.View()),
		"Description:",
		field(fieldDesc).Render(f.desc.View()),
		"Due date:",
		field(fieldDue).Width(14).Render(f.due.View()),
		"Status:",
		field(fieldStatus).Width(inputWidth).Render(statusLine),
		"Assignee:",
		field(fieldAssignee).Width(inputWidth).Render("‹ " + assignee + " ›"),
		"Labels:",
		f.renderLabels(field(fieldLabels), inputWidth),
		"",
		btnStyle.Render(" Save "),
	}
	if f.err != "" {
		rows = append(rows, "", s.BannerError.Render(f.err))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • ←→: choose • Space: toggle label • Ctrl+S: save • Esc: cancel"))

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, width, height)
}

func (f *TaskForm) renderLabels(container lipgloss.Style, width int) string {
	s := f.styles
	if len(f.labels) == 0 {
		return container.Width(width).Render(s.TitleMuted.Render("No labels available"))
	}

	var items []string
	for i, l := range f.labels {
		checkbox := "[ ]"
		if slices.Contains(f.selected, l.ID) {
			checkbox = "[x]"
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(l.Color)).Render("●")
		text := checkbox + " " + dot + " " + l.Name
		if f.focus == fieldLabels && i == f.cursor {
			items = append(items, s.ListSelected.Render(text))
		} else {
			items = append(items, s.ListItem.Render(text))
		}
	}
	return container.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}
