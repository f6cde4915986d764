package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/kanban/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewBoard View = iota
	ViewDetail
)

type App struct {
	session     *views.Session
	currentView View
	board       *views.BoardView
	detail      *views.DetailView
	width       int
	height      int
}

// Creates a new application
func NewApp(session *views.Session) *App {
	return &App{
		session:     session,
		currentView: ViewBoard,
		board:       views.NewBoardView(session),
	}
}

// CurrentView reports which view has the keyboard
func (a *App) CurrentView() View { return a.currentView }

func (a *App) Init() tea.Cmd {
	return a.board.Init()
}

func (a *App) openDetail(taskID string) tea.Cmd {
	a.currentView = ViewDetail
	a.detail = views.NewDetailView(a.session, taskID)

	// Initialize detail view with window size
	return tea.Batch(
		a.detail.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update board size since it persists
		a.board.Update(msg)

	case spinner.TickMsg:
		return a, a.session.Status.Tick(msg)

	case views.OpDone:
		a.session.Status.Finish(msg)
		if msg.Err != nil {
			a.session.Logger.Debug("ui operation failed", "op", msg.Op, "task", msg.TaskID, "error", msg.Err)
		}
		// Both views track the cache; the board keeps its cursor on moved tasks
		_, cmd := a.board.Update(msg)
		if a.currentView == ViewDetail {
			_, detailCmd := a.detail.Update(msg)
			cmd = tea.Batch(cmd, detailCmd)
		}
		return a, cmd

	case views.OpenDetail:
		return a, a.openDetail(msg.TaskID)

	case views.BackToBoard:
		a.currentView = ViewBoard
		a.detail = nil
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewBoard:
		_, cmd = a.board.Update(msg)
	case ViewDetail:
		_, cmd = a.detail.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewDetail:
		if a.detail != nil {
			return a.detail.View()
		}
	}
	return a.board.View()
}
