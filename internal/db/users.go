package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/models"
)

// CreateUser creates a new board member
func (db *DB) CreateUser(ctx context.Context, username, email, color string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username is required")
	}
	if color == "" {
		color = "#3B82F6"
	}
	result, err := db.ExecContext(ctx, `
		INSERT INTO users (username, email, color) VALUES (?, ?, ?)
	`, username, email, color)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUser(ctx, formatID(id))
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	rowID, err := parseID("user", id)
	if err != nil {
		return nil, err
	}
	var u models.User
	var uid int64
	err = db.QueryRowContext(ctx, `
		SELECT id, username, email, color
		FROM users WHERE id = ?
	`, rowID).Scan(&uid, &u.Name, &u.Email, &u.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	u.ID = formatID(uid)
	return &u, nil
}

// ListUsers returns all users ordered by name
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, username, email, color
		FROM users ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var id int64
		if err := rows.Scan(&id, &u.Name, &u.Email, &u.Color); err != nil {
			return nil, err
		}
		u.ID = formatID(id)
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserCount returns the number of users
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// actor returns the acting user's id and name, or zero values when the store
// has no acting user or it no longer exists.
func (db *DB) actor(ctx context.Context) (sql.NullInt64, string, error) {
	if db.userID == "" {
		return sql.NullInt64{}, "", nil
	}
	u, err := db.GetUser(ctx, db.userID)
	if errors.Is(err, board.ErrNotFound) {
		return sql.NullInt64{}, "", nil
	}
	if err != nil {
		return sql.NullInt64{}, "", err
	}
	id, _ := parseID("user", u.ID)
	return sql.NullInt64{Int64: id, Valid: true}, u.Name, nil
}
