// Package db is the sqlite task store. It implements board.Gateway so the
// client can run against a local file, and backs the reference server.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tgienger/kanban/internal/board"
)

//go:embed schema.sql
var schema string

// DB wraps the database connection
type DB struct {
	*sql.DB
	filesDir string
	userID   string // acting user for comments and uploads, "" for none
}

var _ board.Gateway = (*DB)(nil)

// Open opens the database at path and initializes the schema. An empty path
// uses DefaultPath. Uploaded files go to a "files" directory next to it.
func Open(path string) (*DB, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	// Initialize schema
	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return New(sqlDB, filepath.Join(filepath.Dir(path), "files")), nil
}

// New wraps an already initialized connection
func New(sqlDB *sql.DB, filesDir string) *DB {
	return &DB{DB: sqlDB, filesDir: filesDir}
}

// DefaultPath returns the database path under the XDG data directory
func DefaultPath() (string, error) {
	// Use XDG data directory or fallback to home directory
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "kanban", "kanban.db"), nil
}

// SetUser sets the user that authors comments and uploads
func (db *DB) SetUser(id string) {
	db.userID = id
}

// FilesDir is where uploaded attachment bodies are stored
func (db *DB) FilesDir() string {
	return db.filesDir
}

// GetSetting retrieves a setting value by key
func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// parseID converts an opaque id to a row id. Anything that is not a positive
// integer cannot name a row, so it is reported as not found.
func parseID(what, id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, notFound(what, id)
	}
	return n, nil
}

func notFound(what, id string) error {
	return board.Errorf(board.KindNotFound, "", "%s %s not found", what, id)
}

func invalid(format string, args ...any) error {
	return board.Errorf(board.KindValidation, "", format, args...)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func nullID(id sql.NullInt64) string {
	if !id.Valid {
		return ""
	}
	return formatID(id.Int64)
}
