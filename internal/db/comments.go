package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tgienger/kanban/internal/models"
)

const selectComments = `
	SELECT c.id, c.task_id, c.content, c.author_id,
		COALESCE(u.username, c.author_name), c.created_at
	FROM comments c
	LEFT JOIN users u ON u.id = c.author_id
`

// AddComment creates a new comment on a task, authored by the acting user
func (db *DB) AddComment(ctx context.Context, taskID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("comment cannot be empty")
	}
	rowID, err := db.taskRowID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	authorID, authorName, err := db.actor(ctx)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO comments (task_id, content, author_id, author_name) VALUES (?, ?, ?, ?)
	`, rowID, content, authorID, authorName)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.getComment(ctx, id)
}

func (db *DB) getComment(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(db.QueryRowContext(ctx, selectComments+" WHERE c.id = ?", id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// getTaskComments retrieves all comments for a task, oldest first
func (db *DB) getTaskComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	rows, err := db.QueryContext(ctx, selectComments+`
		WHERE c.task_id = ?
		ORDER BY c.created_at ASC, c.id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func scanComment(s scanner) (models.Comment, error) {
	var (
		c      models.Comment
		id     int64
		taskID int64
		author sql.NullInt64
	)
	if err := s.Scan(&id, &taskID, &c.Content, &author, &c.AuthorName, &c.CreatedAt); err != nil {
		return models.Comment{}, err
	}
	c.ID = formatID(id)
	c.TaskID = formatID(taskID)
	c.AuthorID = nullID(author)
	return c, nil
}

// taskRowID checks that the task exists and returns its row id
func (db *DB) taskRowID(ctx context.Context, id string) (int64, error) {
	rowID, err := parseID("task", id)
	if err != nil {
		return 0, err
	}
	var exists int
	err = db.QueryRowContext(ctx, "SELECT 1 FROM tasks WHERE id = ?", rowID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound("task", id)
	}
	return rowID, err
}
