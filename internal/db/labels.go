package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tgienger/kanban/internal/models"
)

// CreateLabel creates a new label
func (db *DB) CreateLabel(ctx context.Context, name, color string) (*models.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("label name is required")
	}
	result, err := db.ExecContext(ctx, "INSERT INTO labels (name, color) VALUES (?, ?)", name, color)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetLabel(ctx, formatID(id))
}

// GetLabel retrieves a label by ID
func (db *DB) GetLabel(ctx context.Context, id string) (*models.Label, error) {
	rowID, err := parseID("label", id)
	if err != nil {
		return nil, err
	}
	var l models.Label
	var lid int64
	err = db.QueryRowContext(ctx, "SELECT id, name, color FROM labels WHERE id = ?", rowID).
		Scan(&lid, &l.Name, &l.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("label", id)
	}
	if err != nil {
		return nil, err
	}
	l.ID = formatID(lid)
	return &l, nil
}

// ListLabels returns all labels
func (db *DB) ListLabels(ctx context.Context) ([]models.Label, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name, color FROM labels ORDER BY name")
	if err != nil {
		return nil, err
	}
	return scanLabels(rows)
}

// UpdateLabel renames or recolors a label
func (db *DB) UpdateLabel(ctx context.Context, id, name, color string) (*models.Label, error) {
	rowID, err := parseID("label", id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("label name is required")
	}
	result, err := db.ExecContext(ctx, "UPDATE labels SET name = ?, color = ? WHERE id = ?", name, color, rowID)
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, notFound("label", id)
	}
	return db.GetLabel(ctx, id)
}

// DeleteLabel deletes a label and detaches it from every task
func (db *DB) DeleteLabel(ctx context.Context, id string) error {
	rowID, err := parseID("label", id)
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx, "DELETE FROM labels WHERE id = ?", rowID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("label", id)
	}
	return nil
}

// getTaskLabels returns all labels for a task
func getTaskLabels(ctx context.Context, q querier, taskID string) ([]models.Label, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT l.id, l.name, l.color
		FROM labels l
		JOIN task_labels tl ON l.id = tl.label_id
		WHERE tl.task_id = ?
		ORDER BY l.name
	`, taskID)
	if err != nil {
		return nil, err
	}
	return scanLabels(rows)
}

func scanLabels(rows *sql.Rows) ([]models.Label, error) {
	defer rows.Close()

	var labels []models.Label
	for rows.Next() {
		var l models.Label
		var id int64
		if err := rows.Scan(&id, &l.Name, &l.Color); err != nil {
			return nil, err
		}
		l.ID = formatID(id)
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
