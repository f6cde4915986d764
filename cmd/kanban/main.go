package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tgienger/kanban/internal/config"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	v := config.New()
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "kanban",
		Short:         "Terminal kanban board",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return runBoard(cmd.Context(), cfg, func() (*config.Config, error) {
				return config.Load(v, configPath)
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kanban/config.yaml)")
	flags.String("api-url", "", "task API base URL")
	flags.Bool("local", false, "use the local sqlite store instead of the API")
	flags.String("db", "", "local database path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	// Flags override the file and environment only when set
	for key, name := range map[string]string{
		"api.url":       "api-url",
		"local.enabled": "local",
		"local.path":    "db",
		"log.level":     "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(serveCmd(v, &configPath))
	rootCmd.AddCommand(configCmd(v, &configPath))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func configCmd(v *viper.Viper, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *configPath)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "kanban", versionString())
			return err
		},
	}
}
