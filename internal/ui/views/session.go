package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// OpDone reports the outcome of a synchronizer call made off the UI loop
type OpDone struct {
	Op     string
	TaskID string
	Err    error
}

// OpenDetail asks the app to show a task's detail view
type OpenDetail struct {
	TaskID string
}

// BackToBoard signals to go back to the board
type BackToBoard struct{}

// Session is the state the board and detail views share
type Session struct {
	Ctx      context.Context
	Sync     *board.Synchronizer
	User     models.User // author of comments and uploads; may be zero
	Debounce time.Duration
	Logger   *slog.Logger

	Status *StatusLine
}

// NewSession wires the views to a synchronizer. ctx bounds every call made
// from the UI and is canceled when the program exits.
func NewSession(ctx context.Context, sync *board.Synchronizer, user models.User, debounce time.Duration, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		Ctx:      ctx,
		Sync:     sync,
		User:     user,
		Debounce: debounce,
		Logger:   logger,
		Status:   NewStatusLine(),
	}
}

// Run executes fn off the UI loop and reports it as OpDone
func (s *Session) Run(op, taskID string, fn func(ctx context.Context) error) tea.Cmd {
	return s.RunFor(op, func(ctx context.Context) (string, error) {
		return taskID, fn(ctx)
	})
}

// RunFor is Run for calls that learn the task id only when they finish
func (s *Session) RunFor(op string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := s.Ctx
	run := func() tea.Msg {
		id, err := fn(ctx)
		return OpDone{Op: op, TaskID: id, Err: err}
	}
	return tea.Batch(run, s.Status.start())
}

// Upload attaches the file at path to a task
func (s *Session) Upload(taskID, path string) tea.Cmd {
	return s.Run(opUpload, taskID, func(ctx context.Context) error {
		path = expandHome(strings.TrimSpace(path))
		f, err := os.Open(path)
		if err != nil {
			return board.Errorf(board.KindValidation, "add attachment", "%v", err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return board.Errorf(board.KindValidation, "add attachment", "%v", err)
		}
		if info.IsDir() {
			return board.Errorf(board.KindValidation, "add attachment", "%s is a directory", path)
		}
		return s.Sync.AddAttachment(ctx, taskID, models.Upload{
			Name:        filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Size:        info.Size(),
			Body:        f,
		}, s.User.ID)
	})
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

const (
	opRefresh  = "refresh"
	opRegistry = "registry"
	opCreate   = "create"
	opUpdate   = "update"
	opMove     = "move"
	opDelete   = "delete"
	opLoad     = "load"
	opComment  = "comment"
	opUpload   = "upload"
)

// StatusLine is the spinner and message banner under every view
type StatusLine struct {
	spinner spinner.Model
	pending int
	text    string
	isErr   bool
}

func NewStatusLine() *StatusLine {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(styles.Current.Accent)
	return &StatusLine{spinner: sp}
}

// Busy reports whether any call is in flight
func (l *StatusLine) Busy() bool { return l.pending > 0 }

// Text returns the banner and whether it is an error
func (l *StatusLine) Text() (string, bool) { return l.text, l.isErr }

// Set shows an informational message
func (l *StatusLine) Set(text string) {
	l.text = text
	l.isErr = false
}

func (l *StatusLine) start() tea.Cmd {
	l.pending++
	if l.pending == 1 {
		return l.spinner.Tick
	}
	return nil
}

// Finish records the outcome of a call
func (l *StatusLine) Finish(msg OpDone) {
	if l.pending > 0 {
		l.pending--
	}
	switch {
	case errors.Is(msg.Err, board.ErrSuperseded):
	case msg.Err != nil:
		l.text = errorText(msg.Err)
		l.isErr = true
	default:
		if text := successText(msg.Op); text != "" {
			l.Set(text)
		} else if l.isErr && msg.Op == opRefresh {
			l.Set("")
		}
	}
}

// Tick advances the spinner while calls are in flight
func (l *StatusLine) Tick(msg spinner.TickMsg) tea.Cmd {
	if l.pending == 0 {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// View renders the line
func (l *StatusLine) View(s *styles.Styles) string {
	var b strings.Builder
	if l.pending > 0 {
		b.WriteString(l.spinner.View())
		b.WriteString(" ")
	}
	if l.text != "" {
		if l.isErr {
			b.WriteString(s.BannerError.Render(l.text))
		} else {
			b.WriteString(s.Banner.Render(l.text))
		}
	}
	return b.String()
}

func successText(op string) string {
	switch op {
	case opCreate:
		return "Task created"
	case opDelete:
		return "Task deleted"
	case opComment:
		return "Comment added"
	case opUpload:
		return "File uploaded"
	}
	return ""
}

func errorText(err error) string {
	switch board.KindOf(err) {
	case board.KindUnauthorized:
		return "Not signed in: set api.token in the config file and press r"
	case board.KindNotFound:
		return "That task no longer exists"
	}
	var e *board.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fmt.Sprint(err)
}
