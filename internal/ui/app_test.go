package ui

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/db"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/ui/views"
)

type harness struct {
	t       *testing.T
	app     *App
	store   *db.DB
	session *views.Session
	bugID   string
}

func newHarness(t *testing.T, tasks ...models.TaskDraft) *harness {
	ctx := context.Background()
	store, err := db.Open(filepath.Join(t.TempDir(), "kanban.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	userID, err := store.Seed(ctx, "sarah")
	require.NoError(t, err)
	store.SetUser(userID)

	labels, err := store.ListLabels(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, labels)

	for _, d := range tasks {
		_, err := store.CreateTask(ctx, d)
		require.NoError(t, err)
	}

	sync := board.NewSynchronizer(store, board.NewCache(), nil)
	session := views.NewSession(ctx, sync, models.User{ID: userID, Name: "sarah"}, 0, nil)
	h := &harness{t: t, app: NewApp(session), store: store, session: session, bugID: labels[0].ID}
	h.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.drive(h.app.Init())
	return h
}

// drive runs cmd and feeds every message it produces back into the app until
// nothing is left. Spinner ticks are dropped so the loop ends.
func (h *harness) drive(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(h.t, steps, 1000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := h.app.Update(msg)
			queue = append(queue, next)
		}
	}
}

func (h *harness) press(msgs ...tea.KeyMsg) {
	for _, m := range msgs {
		_, cmd := h.app.Update(m)
		h.drive(cmd)
	}
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(runes(string(r)))
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
	right = tea.KeyMsg{Type: tea.KeyRight}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	save  = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func (h *harness) task(title string) models.Task {
	for _, t := range h.session.Sync.Cache().All() {
		if t.Title == title {
			return t
		}
	}
	h.t.Fatalf("task %q not in cache", title)
	return models.Task{}
}

func TestInitLoadsBoard(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"}, models.TaskDraft{Title: "Ship", Status: models.StatusDone})

	assert.Equal(t, 2, h.session.Sync.Cache().Len())
	assert.NotEmpty(t, h.session.Sync.Registry().Labels())
	assert.False(t, h.session.Status.Busy())
	assert.Contains(t, h.app.View(), "Fix login")
	assert.Contains(t, h.app.View(), "Done (1)")
}

func TestLiftWalkAndDropMovesTask(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"})
	drag := h.app.board.Drag()

	h.press(space)
	st := drag.State()
	assert.Equal(t, board.DragOverColumn, st.Phase)
	assert.Equal(t, models.StatusTodo, st.Column)

	h.press(right)
	assert.Equal(t, models.StatusInProgress, drag.State().Column)

	h.press(enter)
	assert.Equal(t, board.DragIdle, drag.State().Phase)
	assert.Equal(t, models.StatusInProgress, h.task("Fix login").Status)

	stored, err := h.store.GetTask(context.Background(), h.task("Fix login").ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, stored.Status)

	// the cursor followed the card, so enter opens it
	h.press(enter)
	assert.Equal(t, ViewDetail, h.app.CurrentView())
}

func TestDropOutsideBoardCancels(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"})
	drag := h.app.board.Drag()

	h.press(space, left)
	assert.Equal(t, board.DragLifted, drag.State().Phase, "walking off the first column leaves the board")

	h.press(enter)
	assert.Equal(t, board.DragIdle, drag.State().Phase)
	assert.Equal(t, models.StatusTodo, h.task("Fix login").Status)
}

func TestEscCancelsDrag(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"})

	h.press(space, right, right, esc)
	assert.False(t, h.app.board.Drag().Dragging())
	assert.Equal(t, models.StatusTodo, h.task("Fix login").Status)
}

func TestSearchAppliesOnlyLatestKeystroke(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"}, models.TaskDraft{Title: "Write docs"})

	h.press(runes("/"))
	var pending []tea.Cmd
	for _, r := range "login" {
		_, cmd := h.app.Update(runes(string(r)))
		pending = append(pending, cmd)
	}
	assert.Equal(t, "", h.session.Sync.Filters().Snapshot().Search, "nothing applied while typing")

	for _, cmd := range pending {
		h.drive(cmd)
	}
	assert.Equal(t, "login", h.session.Sync.Filters().Snapshot().Search)
	assert.Equal(t, 1, h.session.Sync.Cache().Len())

	h.press(esc, runes("x"))
	assert.True(t, h.session.Sync.Filters().Snapshot().Empty())
	assert.Equal(t, 2, h.session.Sync.Cache().Len())
}

func TestLabelFilter(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"})
	_, err := h.store.CreateTask(context.Background(), models.TaskDraft{Title: "Crash", LabelIDs: []string{h.bugID}})
	require.NoError(t, err)
	h.press(runes("r"))
	require.Equal(t, 2, h.session.Sync.Cache().Len())

	h.press(runes("f"), space, esc)
	assert.True(t, h.session.Sync.Filters().Snapshot().Labels[h.bugID])
	assert.Equal(t, 1, h.session.Sync.Cache().Len())
	assert.Equal(t, "Crash", h.session.Sync.Cache().All()[0].Title)
}

func TestCreateThroughForm(t *testing.T) {
	h := newHarness(t)

	h.press(runes("n"))
	h.typeText("Ship it")
	h.press(save)

	created := h.task("Ship it")
	assert.Equal(t, models.StatusTodo, created.Status)
	text, isErr := h.session.Status.Text()
	assert.Equal(t, "Task created", text)
	assert.False(t, isErr)
}

func TestFormRejectsEmptyTitle(t *testing.T) {
	h := newHarness(t)

	h.press(runes("n"), save)
	assert.Contains(t, h.app.View(), "Title is required")
	assert.Zero(t, h.session.Sync.Cache().Len())

	h.press(esc)
	assert.NotContains(t, h.app.View(), "Title is required")
}

func TestEditThroughForm(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"})

	h.press(runes("e"))
	h.typeText(" now")
	h.press(save)

	assert.Equal(t, "Fix login now", h.task("Fix login now").Title)
}

func TestDeleteAfterConfirm(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"})

	h.press(runes("d"), runes("n"))
	assert.Equal(t, 1, h.session.Sync.Cache().Len())

	h.press(runes("d"), runes("y"))
	assert.Zero(t, h.session.Sync.Cache().Len())
	count, err := h.store.TaskCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDetailCommentAndPanels(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"})

	h.press(enter)
	require.Equal(t, ViewDetail, h.app.CurrentView())
	assert.Equal(t, board.PanelComments, h.app.detail.Detail().Panel)

	h.press(runes("c"))
	h.typeText("on it")
	h.press(save)

	got := h.task("Fix login")
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "sarah", got.Comments[0].AuthorName)
	assert.Contains(t, h.app.View(), "on it")

	h.press(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, board.PanelAttachments, h.app.detail.Detail().Panel)
	assert.Contains(t, h.app.View(), "No attachments")

	h.press(esc)
	assert.Equal(t, ViewBoard, h.app.CurrentView())
}

func TestDetailClosesWhenTaskVanishes(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"})
	require.NoError(t, h.store.DeleteTask(context.Background(), h.task("Fix login").ID))

	h.press(enter)
	assert.Equal(t, ViewBoard, h.app.CurrentView())
	assert.Zero(t, h.session.Sync.Cache().Len())
}

func TestFailureShowsBanner(t *testing.T) {
	h := newHarness(t, models.TaskDraft{Title: "Fix login"})
	require.NoError(t, h.store.Close())

	h.press(runes("r"))
	text, isErr := h.session.Status.Text()
	assert.True(t, isErr)
	assert.NotEmpty(t, text)
	assert.Equal(t, 1, h.session.Sync.Cache().Len(), "a failed refresh keeps the board")
}
