// Package config loads kanban settings from defaults, a YAML file,
// KANBAN_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the effective configuration
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Local  LocalConfig  `mapstructure:"local"`
	Server ServerConfig `mapstructure:"server"`
	Sync   SyncConfig   `mapstructure:"sync"`
	UI     UIConfig     `mapstructure:"ui"`
	Log    LogConfig    `mapstructure:"log"`
}

// APIConfig points the client at a remote board
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LocalConfig runs the client against a sqlite file instead of the API
type LocalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // empty uses the XDG data directory
	User    string `mapstructure:"user"`
}

// ServerConfig is used by `kanban serve`
type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	Token string `mapstructure:"token"`
}

type SyncConfig struct {
	Rollback bool `mapstructure:"rollback"`
}

type UIConfig struct {
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
}

type LogConfig struct {
	Path  string `mapstructure:"path"` // empty uses the XDG state directory
	Level string `mapstructure:"level"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://127.0.0.1:8000/api")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("local.enabled", false)
	v.SetDefault("local.path", "")
	v.SetDefault("local.user", "")
	v.SetDefault("server.addr", "127.0.0.1:8000")
	v.SetDefault("server.token", "")
	v.SetDefault("sync.rollback", false)
	v.SetDefault("ui.search_debounce", 300*time.Millisecond)
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and environment binding
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("KANBAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path into v and decodes the result. An empty
// path reads DefaultPath if it exists; an explicit path must exist.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways
func (c *Config) Validate() error {
	var errs []error
	if !c.Local.Enabled {
		u, err := url.Parse(c.API.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("api.url %q is not an absolute URL", c.API.URL))
		}
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative"))
	}
	if c.UI.SearchDebounce < 0 {
		errs = append(errs, fmt.Errorf("ui.search_debounce must not be negative"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	return errors.Join(errs...)
}

// YAML renders the config for display with secrets masked
func (c *Config) YAML() ([]byte, error) {
	out := map[string]any{
		"api": map[string]any{
			"url":     c.API.URL,
			"token":   mask(c.API.Token),
			"timeout": c.API.Timeout.String(),
		},
		"local": map[string]any{
			"enabled": c.Local.Enabled,
			"path":    c.Local.Path,
			"user":    c.Local.User,
		},
		"server": map[string]any{
			"addr":  c.Server.Addr,
			"token": mask(c.Server.Token),
		},
		"sync": map[string]any{
			"rollback": c.Sync.Rollback,
		},
		"ui": map[string]any{
			"search_debounce": c.UI.SearchDebounce.String(),
		},
		"log": map[string]any{
			"path":  c.Log.Path,
			"level": c.Log.Level,
		},
	}
	return yaml.Marshal(out)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// DefaultPath returns the config file path under the XDG config directory
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "kanban", "config.yaml"), nil
}
