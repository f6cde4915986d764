package views

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// boardMode is what the board's key handling is currently doing
type boardMode int

const (
	modeBoard boardMode = iota
	modeSearch
	modeLabelPicker
	modeUserPicker
	modeForm
	modeConfirmDelete
	modeHelp
)

type searchTickMsg struct {
	seq int
}

type pendingMove struct {
	taskID string
	to     models.Status
}

// BoardView shows the three status columns
type BoardView struct {
	session *Session
	columns *board.Columns
	drag    *board.Drag
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	mode      boardMode
	col       int
	rows      [3]int
	follow    string // task to keep the cursor on once it shows up
	showStats bool

	search    textinput.Model
	searchSeq int

	pickerCursor int

	form         *TaskForm
	deleteTarget models.Task

	moves []pendingMove
}

// NewBoardView creates the board. The drag gesture is fed from the keyboard:
// lift a card, walk it across columns, drop or cancel.
func NewBoardView(session *Session) *BoardView {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100
	search.SetValue(session.Sync.Filters().Snapshot().Search)

	v := &BoardView{
		session: session,
		columns: board.NewColumns(session.Sync.Cache(), session.Sync.Filters()),
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		search:  search,
	}
	v.drag = board.NewDrag(v.queueMove)
	return v
}

// Drag exposes the gesture state
func (v *BoardView) Drag() *board.Drag { return v.drag }

// Init loads the registry and the first page of tasks
func (v *BoardView) Init() tea.Cmd {
	return tea.Batch(v.loadRegistry(), v.fetch())
}

func (v *BoardView) fetch() tea.Cmd {
	return v.session.Run(opRefresh, "", v.session.Sync.Refresh)
}

func (v *BoardView) loadRegistry() tea.Cmd {
	return v.session.Run(opRegistry, "", v.session.Sync.LoadRegistry)
}

func (v *BoardView) queueMove(taskID string, to models.Status) {
	v.moves = append(v.moves, pendingMove{taskID: taskID, to: to})
}

// flushMoves turns the moves produced by a drop into synchronizer calls
func (v *BoardView) flushMoves() tea.Cmd {
	var cmds []tea.Cmd
	for _, m := range v.moves {
		v.follow = m.taskID
		cmds = append(cmds, v.session.Run(opMove, m.taskID, func(ctx context.Context) error {
			return v.session.Sync.Move(ctx, m.taskID, m.to)
		}))
	}
	v.moves = nil
	return tea.Batch(cmds...)
}

func (v *BoardView) status() models.Status {
	return models.Statuses()[v.col]
}

// selected returns the card under the cursor
func (v *BoardView) selected() (models.Task, bool) {
	tasks := v.columns.Column(v.status())
	if len(tasks) == 0 {
		return models.Task{}, false
	}
	return tasks[clamp(v.rows[v.col], 0, len(tasks)-1)], true
}

// syncCursor keeps the cursor inside each column and on the followed task
func (v *BoardView) syncCursor() {
	all := v.columns.All()
	if v.follow != "" {
		for i, s := range models.Statuses() {
			if j := slices.IndexFunc(all[s], func(t models.Task) bool { return t.ID == v.follow }); j >= 0 {
				v.col, v.rows[i] = i, j
				v.follow = ""
				break
			}
		}
	}
	for i, s := range models.Statuses() {
		v.rows[i] = clamp(v.rows[i], 0, max(len(all[s])-1, 0))
	}
}

// Update handles messages
func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		if v.form != nil {
			v.form.SetWidth(styles.ContentWidth(v.width))
		}
		return v, nil

	case OpDone:
		if msg.Op == opCreate && msg.Err == nil {
			v.follow = msg.TaskID
		}
		v.syncCursor()
		return v, nil

	case searchTickMsg:
		if msg.seq != v.searchSeq {
			return v, nil
		}
		return v, v.applySearch()

	case tea.KeyMsg:
		switch v.mode {
		case modeHelp:
			v.mode = modeBoard
			return v, nil
		case modeSearch:
			return v.updateSearch(msg)
		case modeLabelPicker:
			return v.updateLabelPicker(msg)
		case modeUserPicker:
			return v.updateUserPicker(msg)
		case modeForm:
			return v.updateForm(msg)
		case modeConfirmDelete:
			return v.updateConfirmDelete(msg)
		}
		if v.drag.Dragging() {
			return v.updateDragging(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Help):
		v.mode = modeHelp
		return v, nil

	case key.Matches(msg, v.keys.Left):
		v.col = max(v.col-1, 0)
		return v, nil

	case key.Matches(msg, v.keys.Right):
		v.col = min(v.col+1, len(models.Statuses())-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		v.rows[v.col] = max(v.rows[v.col]-1, 0)
		return v, nil

	case key.Matches(msg, v.keys.Down):
		v.rows[v.col] = clamp(v.rows[v.col]+1, 0, max(len(v.columns.Column(v.status()))-1, 0))
		return v, nil

	case key.Matches(msg, v.keys.Lift):
		if t, ok := v.selected(); ok {
			v.drag.StartDrag(t.ID)
			v.drag.DragEnter(v.status())
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			return v, func() tea.Msg { return OpenDetail{TaskID: t.ID} }
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		reg := v.session.Sync.Registry()
		v.form = NewTaskForm(v.styles, v.keys, nil, v.status(), reg.Labels(), reg.Users())
		v.form.SetWidth(styles.ContentWidth(v.width))
		v.mode = modeForm
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.selected(); ok {
			reg := v.session.Sync.Registry()
			v.form = NewTaskForm(v.styles, v.keys, &t, t.Status, reg.Labels(), reg.Users())
			v.form.SetWidth(styles.ContentWidth(v.width))
			v.mode = modeForm
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.deleteTarget = t
			v.mode = modeConfirmDelete
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.mode = modeSearch
		v.search.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.FilterLabel):
		v.mode = modeLabelPicker
		v.pickerCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.FilterUser):
		v.mode = modeUserPicker
		v.pickerCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.ClearFilter):
		v.search.SetValue("")
		v.searchSeq++
		if v.session.Sync.Filters().Clear() {
			return v, v.fetch()
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, tea.Batch(v.loadRegistry(), v.fetch())

	case key.Matches(msg, v.keys.Stats):
		v.showStats = !v.showStats
		return v, nil
	}

	return v, nil
}

// updateDragging walks a lifted card across the columns. Walking past the
// first or last column leaves the board, and a drop there cancels.
func (v *BoardView) updateDragging(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := len(models.Statuses()) - 1
	over := v.drag.State().Phase == board.DragOverColumn

	switch {
	case key.Matches(msg, v.keys.Back):
		v.drag.EndDrag()
		return v, nil

	case key.Matches(msg, v.keys.Left):
		if !over {
			v.drag.DragEnter(v.status())
		} else if v.col == 0 {
			v.drag.DragLeave()
		} else {
			v.col--
			v.drag.DragEnter(v.status())
		}
		return v, nil

	case key.Matches(msg, v.keys.Right):
		if !over {
			v.drag.DragEnter(v.status())
		} else if v.col == last {
			v.drag.DragLeave()
		} else {
			v.col++
			v.drag.DragEnter(v.status())
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Lift):
		if !over {
			v.drag.EndDrag()
			return v, nil
		}
		v.drag.Drop(v.drag.State().Column)
		return v, v.flushMoves()

	case key.Matches(msg, v.keys.Quit):
		v.drag.EndDrag()
		return v, tea.Quit
	}
	return v, nil
}

func (v *BoardView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.search.Blur()
		v.mode = modeBoard
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		v.search.Blur()
		v.mode = modeBoard
		v.searchSeq++
		return v, v.applySearch()
	}

	before := v.search.Value()
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	if v.search.Value() == before {
		return v, cmd
	}
	v.searchSeq++
	return v, tea.Batch(cmd, v.debounceSearch(v.searchSeq))
}

// debounceSearch waits for typing to pause before fetching
func (v *BoardView) debounceSearch(seq int) tea.Cmd {
	if v.session.Debounce <= 0 {
		return func() tea.Msg { return searchTickMsg{seq: seq} }
	}
	return tea.Tick(v.session.Debounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq}
	})
}

func (v *BoardView) applySearch() tea.Cmd {
	if v.session.Sync.Filters().SetSearch(v.search.Value()) {
		return v.fetch()
	}
	return nil
}

func (v *BoardView) updateLabelPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	labels := v.session.Sync.Registry().Labels()
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.FilterLabel):
		v.mode = modeBoard
		return v, nil
	case key.Matches(msg, v.keys.Up):
		v.pickerCursor = max(v.pickerCursor-1, 0)
		return v, nil
	case key.Matches(msg, v.keys.Down):
		v.pickerCursor = clamp(v.pickerCursor+1, 0, max(len(labels)-1, 0))
		return v, nil
	case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Enter):
		if v.pickerCursor < len(labels) && v.session.Sync.Filters().ToggleLabel(labels[v.pickerCursor].ID) {
			return v, v.fetch()
		}
		return v, nil
	}
	return v, nil
}

func (v *BoardView) updateUserPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	users := v.session.Sync.Registry().Users()
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.FilterUser):
		v.mode = modeBoard
		return v, nil
	case key.Matches(msg, v.keys.Up):
		v.pickerCursor = max(v.pickerCursor-1, 0)
		return v, nil
	case key.Matches(msg, v.keys.Down):
		v.pickerCursor = clamp(v.pickerCursor+1, 0, len(users)) // +1 for "Anyone"
		return v, nil
	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Toggle):
		id := ""
		if v.pickerCursor > 0 && v.pickerCursor <= len(users) {
			id = users[v.pickerCursor-1].ID
		}
		v.mode = modeBoard
		if v.session.Sync.Filters().SetAssignee(id) {
			return v, v.fetch()
		}
		return v, nil
	}
	return v, nil
}

func (v *BoardView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result, cmd := v.form.Update(msg)
	switch result {
	case formCanceled:
		v.form = nil
		v.mode = modeBoard
		return v, nil
	case formSubmitted:
		f := v.form
		v.form = nil
		v.mode = modeBoard
		return v, v.save(f)
	}
	return v, cmd
}

func (v *BoardView) save(f *TaskForm) tea.Cmd {
	sync := v.session.Sync
	if !f.Editing() {
		draft := f.Draft()
		return v.session.RunFor(opCreate, func(ctx context.Context) (string, error) {
			t, err := sync.Create(ctx, draft)
			if t == nil {
				return "", err
			}
			return t.ID, err
		})
	}
	id, patch := f.TaskID(), f.Patch()
	if patch.Empty() {
		return nil
	}
	v.follow = id
	return v.session.Run(opUpdate, id, func(ctx context.Context) error {
		return sync.Update(ctx, id, patch)
	})
}

func (v *BoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = modeBoard
		id := v.deleteTarget.ID
		return v, v.session.Run(opDelete, id, func(ctx context.Context) error {
			return v.session.Sync.Delete(ctx, id)
		})
	case "n", "N", "esc":
		v.mode = modeBoard
		return v, nil
	}
	return v, nil
}

// View renders the view
func (v *BoardView) View() string {
	switch v.mode {
	case modeHelp:
		return v.renderHelpPopup()
	case modeForm:
		return v.form.View(v.width, v.height)
	case modeConfirmDelete:
		return v.renderDeleteConfirm()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	switch v.mode {
	case modeLabelPicker:
		b.WriteString(v.renderLabelPicker())
		b.WriteString("\n")
	case modeUserPicker:
		b.WriteString(v.renderUserPicker())
		b.WriteString("\n")
	}
	b.WriteString(v.renderColumns())
	b.WriteString("\n")
	b.WriteString(v.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *BoardView) renderHeader() string {
	s := v.styles
	searchStyle := s.Input
	if v.mode == modeSearch {
		searchStyle = s.InputFocused
	}
	searchBox := searchStyle.Width(clamp(v.width/3, 10, 40)).Render(v.search.View())

	f := v.session.Sync.Filters().Snapshot()
	reg := v.session.Sync.Registry()
	var tags []string
	for _, id := range f.LabelIDs() {
		name := id
		if l, ok := reg.Label(id); ok {
			name = l.Name
		}
		tags = append(tags, s.FilterTag.Render("#"+name))
	}
	if f.Assignee != "" {
		name := reg.UserName(f.Assignee)
		if name == "" {
			name = f.Assignee
		}
		tags = append(tags, s.FilterTag.Render("@"+name))
	}
	filters := s.TitleMuted.Render("no filters")
	if len(tags) > 0 {
		filters = strings.Join(tags, "")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Kanban"),
		lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", filters),
	)
}

func (v *BoardView) renderColumns() string {
	width := styles.ColumnWidth(v.width)
	// header, border and the bars around the board
	cardsHeight := max(v.height-14, 3)
	state := v.drag.State()

	var cols []string
	for i, status := range models.Statuses() {
		tasks := v.columns.Column(status)

		style := v.styles.Column
		switch {
		case state.Phase == board.DragOverColumn && state.Column == status:
			style = v.styles.ColumnTarget
		case i == v.col && !v.drag.Dragging():
			style = v.styles.ColumnFocus
		}

		header := v.styles.ColumnHeader.Foreground(styles.StatusColor(status)).
			Render(fmt.Sprintf("%s (%d)", status.Title(), len(tasks)))

		// each card takes three lines including its margin
		visible := max(cardsHeight/3, 1)
		row := clamp(v.rows[i], 0, max(len(tasks)-1, 0))
		start := max(row-visible+1, 0)
		end := min(start+visible, len(tasks))

		items := []string{header}
		if len(tasks) == 0 {
			items = append(items, v.styles.TitleMuted.Render("No tasks"))
		}
		for j := start; j < end; j++ {
			t := tasks[j]
			items = append(items, v.renderCard(t, width-5, i == v.col && j == row, state.TaskID == t.ID))
		}
		if end < len(tasks) {
			items = append(items, v.styles.TitleMuted.Render(fmt.Sprintf("+%d more", len(tasks)-end)))
		}
		cols = append(cols, style.Width(width-2).Height(cardsHeight+2).Render(lipgloss.JoinVertical(lipgloss.Left, items...)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (v *BoardView) renderCard(t models.Task, width int, selected, lifted bool) string {
	s := v.styles
	style := s.Card
	switch {
	case lifted:
		style = s.CardLifted
	case selected:
		style = s.CardSelected
	}

	var meta []string
	if t.AssigneeName != "" {
		meta = append(meta, "@"+t.AssigneeName)
	}
	if !t.DueDate.IsZero() {
		due := t.DueDate.String()
		if t.Overdue(models.Today()) {
			due = s.Overdue.Render(due)
		}
		meta = append(meta, due)
	}
	for _, l := range v.session.Sync.Registry().ResolveLabels(t.Labels) {
		meta = append(meta, lipgloss.NewStyle().Foreground(lipgloss.Color(l.Color)).Render("●"))
	}
	if n := t.NumComments(); n > 0 {
		meta = append(meta, fmt.Sprintf("✎%d", n))
	}
	if n := t.NumAttachments(); n > 0 {
		meta = append(meta, fmt.Sprintf("⎘%d", n))
	}

	title := truncate(t.Title, width-2)
	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		s.CardMeta.Render(strings.Join(meta, " ")),
	))
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func (v *BoardView) renderStatusBar() string {
	s := v.styles
	parts := []string{}
	if line := v.session.Status.View(s); line != "" {
		parts = append(parts, line)
	}
	switch state := v.drag.State(); state.Phase {
	case board.DragLifted:
		parts = append(parts, s.FilterTag.Render("dragging: drop outside the board cancels"))
	case board.DragOverColumn:
		parts = append(parts, s.FilterTag.Render("drop on "+state.Column.Title()))
	}
	if v.showStats {
		st := board.ComputeStats(v.session.Sync.Cache(), models.Today())
		parts = append(parts, s.StatusBar.Render(fmt.Sprintf("%d tasks • %d to do • %d in progress • %d done • %d overdue",
			st.Total, st.ByStatus[models.StatusTodo], st.ByStatus[models.StatusInProgress], st.ByStatus[models.StatusDone], st.Overdue)))
	}
	return strings.Join(parts, " ")
}

func (v *BoardView) renderLabelPicker() string {
	s := v.styles
	labels := v.session.Sync.Registry().Labels()
	if len(labels) == 0 {
		return s.FilterBar.Render(s.TitleMuted.Render("No labels"))
	}
	f := v.session.Sync.Filters().Snapshot()
	var items []string
	for i, l := range labels {
		checkbox := "[ ]"
		if f.Labels[l.ID] {
			checkbox = "[x]"
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(l.Color)).Render("●")
		style := s.ListItem
		if i == v.pickerCursor {
			style = s.ListSelected
		}
		items = append(items, style.Render(checkbox+" "+dot+" "+l.Name))
	}
	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *BoardView) renderUserPicker() string {
	s := v.styles
	current := v.session.Sync.Filters().Snapshot().Assignee
	users := v.session.Sync.Registry().Users()

	names := []string{"Anyone"}
	ids := []string{""}
	for _, u := range users {
		names = append(names, u.Name)
		ids = append(ids, u.ID)
	}
	var items []string
	for i, name := range names {
		mark := "( )"
		if ids[i] == current {
			mark = "(•)"
		}
		style := s.ListItem
		if i == v.pickerCursor {
			style = s.ListSelected
		}
		items = append(items, style.Render(mark+" "+name))
	}
	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *BoardView) renderHelp() string {
	s := v.styles
	if v.drag.Dragging() {
		return s.Help.Render(fmt.Sprintf("%s move • %s drop • %s cancel",
			s.HelpKey.Render("←→"),
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("esc"),
		))
	}
	if v.width > 0 && v.width < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(fmt.Sprintf("%s lift • %s open • %s new • %s edit • %s del • %s search • %s labels • %s assignee • %s clear • %s help • %s quit",
		s.HelpKey.Render("space"),
		s.HelpKey.Render("↵"),
		s.HelpKey.Render("n"),
		s.HelpKey.Render("e"),
		s.HelpKey.Render("d"),
		s.HelpKey.Render("/"),
		s.HelpKey.Render("f"),
		s.HelpKey.Render("a"),
		s.HelpKey.Render("x"),
		s.HelpKey.Render("?"),
		s.HelpKey.Render("q"),
	))
}

func (v *BoardView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("←→↑↓") + "  move cursor",
		s.HelpKey.Render("space") + "  lift card, then ←→ and ↵ to drop",
		s.HelpKey.Render("esc") + "    cancel drag",
		s.HelpKey.Render("↵") + "      open task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("f") + "      filter by label",
		s.HelpKey.Render("a") + "      filter by assignee",
		s.HelpKey.Render("x") + "      clear filters",
		s.HelpKey.Render("r") + "      refresh",
		s.HelpKey.Render("s") + "      board stats",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *BoardView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q and its comments and attachments will be removed.", v.deleteTarget.Title)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
