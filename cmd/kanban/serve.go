package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tgienger/kanban/internal/config"
	"github.com/tgienger/kanban/internal/db"
	"github.com/tgienger/kanban/internal/logging"
	"github.com/tgienger/kanban/internal/server"
)

func serveCmd(v *viper.Viper, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API from the local sqlite store",
		Long: `Serve the task API from the local sqlite store.

Examples:
  kanban serve --addr 127.0.0.1:8000
  KANBAN_SERVER_TOKEN=secret kanban serve --db ./board.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("addr", "", "listen address")
	if err := v.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.NewWriter(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}

	store, err := db.Open(cfg.Local.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if _, err := store.Seed(ctx, cfg.Local.User); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	if cfg.Server.Token == "" {
		logger.Warn("no server.token set; the API accepts unauthenticated requests")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(store,
		server.WithToken(cfg.Server.Token),
		server.WithLogger(logger.Logger),
	)
	return srv.Run(ctx, cfg.Server.Addr)
}
