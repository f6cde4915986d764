package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/config"
	"github.com/tgienger/kanban/internal/db"
	"github.com/tgienger/kanban/internal/gateway"
	"github.com/tgienger/kanban/internal/logging"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/ui"
	"github.com/tgienger/kanban/internal/ui/views"
)

const lastFilterKey = "last_filter"

// runBoard opens the board. reload reads the configuration again; it is used to
// pick up a new api token after the server rejected the current one.
func runBoard(ctx context.Context, cfg *config.Config, reload func() (*config.Config, error)) error {
	logger, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		gw             board.Gateway
		user           models.User
		filters        = board.NewFilterState(board.Filter{})
		onUnauthorized = func(err error) { logger.Warn("request unauthorized", "error", err) }
	)
	if cfg.Local.Enabled {
		store, err := db.Open(cfg.Local.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		name := cfg.Local.User
		if name == "" {
			name = os.Getenv("USER")
		}
		userID, err := store.Seed(ctx, name)
		if err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		store.SetUser(userID)
		if userID != "" {
			if u, err := store.GetUser(ctx, userID); err == nil {
				user = *u
			}
		}
		filters = restoreFilter(ctx, store, logger)
		gw = store
		logger.Info("using local store", "path", cfg.Local.Path, "user", user.Name)
	} else {
		creds := gateway.NewCredentials(cfg.API.Token)
		creds.OnInvalidate(func() { logger.Warn("api token rejected") })
		client := gateway.New(cfg.API.URL, creds,
			gateway.WithTimeout(cfg.API.Timeout),
			gateway.WithLogger(logger.Logger),
		)
		tokens := &tokenSource{
			creds:   client.Credentials(),
			reload:  reload,
			logger:  logger.Logger,
			current: cfg.API.Token,
		}
		onUnauthorized = func(err error) {
			logger.Warn("request unauthorized", "error", err)
			tokens.refresh()
		}
		gw = client
		logger.Info("using remote api", "url", cfg.API.URL)
	}

	syncer := board.NewSynchronizer(gw, board.NewCache(), filters,
		board.WithLogger(logger.Logger),
		board.WithRollback(cfg.Sync.Rollback),
		board.WithUnauthorizedHandler(onUnauthorized),
	)
	session := views.NewSession(ctx, syncer, user, cfg.UI.SearchDebounce, logger.Logger)

	p := tea.NewProgram(ui.NewApp(session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}

// tokenSource re-reads api.token once the server has refused the current one,
// so an edited config file takes effect on the next request.
type tokenSource struct {
	creds  *gateway.Credentials
	reload func() (*config.Config, error)
	logger *slog.Logger

	mu      sync.Mutex
	current string // last token handed to creds
}

// refresh reports whether a different token was acquired
func (s *tokenSource) refresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds.Valid() {
		return false
	}
	cfg, err := s.reload()
	if err != nil {
		s.logger.Warn("reload config for api token", "error", err)
		return false
	}
	if cfg.API.Token == "" || cfg.API.Token == s.current {
		return false
	}
	s.current = cfg.API.Token
	s.creds.Acquire(cfg.API.Token)
	s.logger.Info("picked up new api token")
	return true
}

// restoreFilter starts from the filter saved by the last session and keeps
// saving it as it changes.
func restoreFilter(ctx context.Context, store *db.DB, logger *logging.Logger) *board.FilterState {
	var initial board.Filter
	raw, err := store.GetSetting(ctx, lastFilterKey)
	if err != nil {
		logger.Warn("read saved filter", "error", err)
	}
	if raw != "" {
		if q, err := url.ParseQuery(raw); err == nil {
			initial = board.ParseFilterQuery(q)
		}
	}

	filters := board.NewFilterState(initial)
	filters.OnChange(func(f board.Filter) {
		if err := store.SetSetting(context.Background(), lastFilterKey, f.Query().Encode()); err != nil {
			logger.Warn("save filter", "error", err)
		}
	})
	return filters
}
