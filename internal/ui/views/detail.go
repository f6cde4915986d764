package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// DetailView shows one task with its comments and attachments
type DetailView struct {
	session *Session
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	detail board.Detail
	loaded bool

	comment    textarea.Model
	commenting bool
	path       textinput.Model
	attaching  bool
}

// NewDetailView opens the detail of a cached task. The comments panel is
// shown first.
func NewDetailView(session *Session, taskID string) *DetailView {
	comment := textarea.New()
	comment.Placeholder = "Add a comment..."
	comment.CharLimit = 2000
	comment.SetWidth(50)
	comment.SetHeight(3)
	comment.ShowLineNumbers = false

	path := textinput.New()
	path.Placeholder = "Path of the file to upload"
	path.CharLimit = 500

	d := &DetailView{
		session: session,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		detail:  board.Detail{Task: models.Task{ID: taskID}, Panel: board.PanelComments},
		comment: comment,
		path:    path,
	}
	d.detail, _ = d.detail.Refresh(session.Sync.Cache())
	return d
}

// Init pulls the task's comments and attachments
func (d *DetailView) Init() tea.Cmd {
	id := d.detail.Task.ID
	return d.session.Run(opLoad, id, func(ctx context.Context) error {
		return d.session.Sync.Load(ctx, id)
	})
}

// Detail returns the current panel model
func (d *DetailView) Detail() board.Detail { return d.detail }

func (d *DetailView) back() tea.Cmd {
	return func() tea.Msg { return BackToBoard{} }
}

// Update handles messages
func (d *DetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		inputWidth := clamp(styles.ContentWidth(d.width)-10, 20, 50)
		d.comment.SetWidth(inputWidth)
		d.path.Width = inputWidth
		return d, nil

	case OpDone:
		if msg.TaskID != d.detail.Task.ID {
			return d, nil
		}
		if msg.Op == opLoad && msg.Err == nil {
			d.loaded = true
		}
		detail, ok := d.detail.Refresh(d.session.Sync.Cache())
		if !ok {
			return d, d.back()
		}
		d.detail = detail
		return d, nil

	case tea.KeyMsg:
		if d.commenting {
			return d.updateCommenting(msg)
		}
		if d.attaching {
			return d.updateAttaching(msg)
		}
		return d.updateNormal(msg)
	}
	return d, nil
}

func (d *DetailView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Back):
		return d, d.back()
	case key.Matches(msg, d.keys.Quit):
		return d, tea.Quit
	case key.Matches(msg, d.keys.Tab), key.Matches(msg, d.keys.Left), key.Matches(msg, d.keys.Right):
		d.detail = d.detail.Next()
		return d, nil
	case key.Matches(msg, d.keys.Comment):
		d.detail.Panel = board.PanelComments
		d.commenting = true
		d.comment.Focus()
		return d, textarea.Blink
	case key.Matches(msg, d.keys.Attach):
		d.detail.Panel = board.PanelAttachments
		d.attaching = true
		d.path.Focus()
		return d, textinput.Blink
	case key.Matches(msg, d.keys.Refresh):
		return d, d.Init()
	}
	return d, nil
}

func (d *DetailView) updateCommenting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Back):
		d.commenting = false
		d.comment.Blur()
		return d, nil
	case key.Matches(msg, d.keys.Submit):
		content := strings.TrimSpace(d.comment.Value())
		if content == "" {
			return d, nil
		}
		d.comment.Reset()
		d.commenting = false
		d.comment.Blur()

		id, user := d.detail.Task.ID, d.session.User
		return d, d.session.Run(opComment, id, func(ctx context.Context) error {
			return d.session.Sync.AddComment(ctx, id, content, user.ID, user.Name)
		})
	}
	var cmd tea.Cmd
	d.comment, cmd = d.comment.Update(msg)
	return d, cmd
}

func (d *DetailView) updateAttaching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Back):
		d.attaching = false
		d.path.Blur()
		return d, nil
	case key.Matches(msg, d.keys.Enter):
		path := strings.TrimSpace(d.path.Value())
		if path == "" {
			return d, nil
		}
		d.path.Reset()
		d.attaching = false
		d.path.Blur()
		return d, d.session.Upload(d.detail.Task.ID, path)
	}
	var cmd tea.Cmd
	d.path, cmd = d.path.Update(msg)
	return d, cmd
}

// View renders the view
func (d *DetailView) View() string {
	s := d.styles
	task := d.detail.Task
	textWidth := clamp(styles.ContentWidth(d.width)-10, 20, 70)
	labelStyle := s.TitleMuted

	status := lipgloss.NewStyle().Foreground(styles.StatusColor(task.Status)).Bold(true).Render(task.Status.Title())

	assignee := task.AssigneeName
	if assignee == "" {
		assignee = "Unassigned"
	}

	due := "No due date"
	if !task.DueDate.IsZero() {
		due = task.DueDate.String()
		if task.Overdue(models.Today()) {
			due = s.Overdue.Render(due + " (overdue)")
		}
	}

	var labelStrs []string
	for _, l := range d.session.Sync.Registry().ResolveLabels(task.Labels) {
		labelStrs = append(labelStrs, lipgloss.NewStyle().Foreground(lipgloss.Color(l.Color)).Render(l.Name))
	}
	labels := "None"
	if len(labelStrs) > 0 {
		labels = strings.Join(labelStrs, " ")
	}

	desc := task.Description
	if desc == "" {
		desc = s.TitleMuted.Render("No description")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(task.Title),
		labelStyle.Render("Status")+"  "+status+"    "+labelStyle.Render("Assignee")+"  "+assignee,
		labelStyle.Render("Due")+"     "+due,
		labelStyle.Render("Labels")+"  "+labels,
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(desc),
		"",
		d.renderTabs(),
		d.renderPanel(textWidth),
		"",
		d.renderInput(),
		d.session.Status.View(s),
		d.renderHelp(),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, d.width, d.height)
}

func (d *DetailView) renderTabs() string {
	s := d.styles
	task := d.detail.Task
	comments := fmt.Sprintf("Comments (%d)", task.NumComments())
	attachments := fmt.Sprintf("Attachments (%d)", task.NumAttachments())
	if d.detail.Panel == board.PanelComments {
		return s.TabActive.Render(comments) + s.Tab.Render(attachments)
	}
	return s.Tab.Render(comments) + s.TabActive.Render(attachments)
}

func (d *DetailView) renderPanel(width int) string {
	s := d.styles
	if !d.loaded && d.detail.Task.NumComments()+d.detail.Task.NumAttachments() > 0 &&
		len(d.detail.Task.Comments)+len(d.detail.Task.Attachments) == 0 {
		return s.TitleMuted.Render("Loading...")
	}

	switch p := d.detail.Content().(type) {
	case board.CommentsPanel:
		if len(p.Comments) == 0 {
			return s.TitleMuted.Render("No comments yet")
		}
		var lines []string
		for _, c := range p.Comments {
			author := c.AuthorName
			if author == "" {
				author = "Unknown"
			}
			lines = append(lines, lipgloss.JoinVertical(lipgloss.Left,
				s.TitleMuted.Render(author+" • "+c.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")),
				lipgloss.NewStyle().Width(width).Render(c.Content),
			))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)

	case board.AttachmentsPanel:
		if len(p.Attachments) == 0 {
			return s.TitleMuted.Render("No attachments")
		}
		var lines []string
		for _, a := range p.Attachments {
			lines = append(lines, fmt.Sprintf("%s  %s  %s",
				a.Name,
				s.TitleMuted.Render(humanSize(a.Size)),
				s.TitleMuted.Render(a.UploadedByName+" • "+a.UploadedAt.Local().Format("Jan 2, 2006")),
			))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	return ""
}

func (d *DetailView) renderInput() string {
	s := d.styles
	switch {
	case d.commenting:
		return s.InputFocused.Render(d.comment.View())
	case d.attaching:
		return s.InputFocused.Render(d.path.View())
	}
	return ""
}

func (d *DetailView) renderHelp() string {
	s := d.styles
	switch {
	case d.commenting:
		return s.Help.Render(fmt.Sprintf("%s submit • %s cancel",
			s.HelpKey.Render("ctrl+s"),
			s.HelpKey.Render("esc"),
		))
	case d.attaching:
		return s.Help.Render(fmt.Sprintf("%s upload • %s cancel",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("esc"),
		))
	}
	return s.Help.Render(fmt.Sprintf("%s switch panel • %s comment • %s upload • %s reload • %s back",
		s.HelpKey.Render("tab"),
		s.HelpKey.Render("c"),
		s.HelpKey.Render("u"),
		s.HelpKey.Render("r"),
		s.HelpKey.Render("esc"),
	))
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
