package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectTasks = `
	SELECT t.id, t.title, t.description, t.status, t.assignee_id, COALESCE(u.username, ''),
		t.due_date, t.created_at, t.updated_at,
		(SELECT COUNT(*) FROM comments c WHERE c.task_id = t.id),
		(SELECT COUNT(*) FROM attachments a WHERE a.task_id = t.id)
	FROM tasks t
	LEFT JOIN users u ON u.id = t.assignee_id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (models.Task, error) {
	var (
		t        models.Task
		id       int64
		status   string
		assignee sql.NullInt64
		due      sql.NullString
	)
	err := s.Scan(&id, &t.Title, &t.Description, &status, &assignee, &t.AssigneeName,
		&due, &t.CreatedAt, &t.UpdatedAt, &t.CommentCount, &t.AttachmentCount)
	if err != nil {
		return models.Task{}, err
	}
	t.ID = formatID(id)
	t.AssigneeID = nullID(assignee)
	if t.Status, err = models.ParseStatus(status); err != nil {
		return models.Task{}, err
	}
	if due.Valid {
		if t.DueDate, err = models.ParseDate(due.String); err != nil {
			return models.Task{}, err
		}
	}
	return t, nil
}

// ListTasks returns the tasks matching filter in creation order, with labels
func (db *DB) ListTasks(ctx context.Context, filter board.Filter) ([]models.Task, error) {
	query := selectTasks + " WHERE 1 = 1"
	var args []any

	if filter.Search != "" {
		query += " AND (t.title LIKE ? OR t.description LIKE ? OR COALESCE(u.username, '') LIKE ?)"
		searchPattern := "%" + filter.Search + "%"
		args = append(args, searchPattern, searchPattern, searchPattern)
	}

	if filter.Assignee != "" {
		query += " AND t.assignee_id = ?"
		args = append(args, sqlID(filter.Assignee))
	}

	if ids := filter.LabelIDs(); len(ids) > 0 {
		query += " AND EXISTS (SELECT 1 FROM task_labels tl WHERE tl.task_id = t.id AND tl.label_id IN (" +
			placeholders(len(ids)) + "))"
		for _, id := range ids {
			args = append(args, sqlID(id))
		}
	}

	query += " ORDER BY t.id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Load labels for each task
	for i := range tasks {
		labels, err := getTaskLabels(ctx, db, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Labels = labels
	}

	return tasks, nil
}

// GetTask retrieves a task with labels, comments and attachments
func (db *DB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	rowID, err := parseID("task", id)
	if err != nil {
		return nil, err
	}
	t, err := scanTask(db.QueryRowContext(ctx, selectTasks+" WHERE t.id = ?", rowID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, err
	}

	if t.Labels, err = getTaskLabels(ctx, db, t.ID); err != nil {
		return nil, err
	}
	if t.Comments, err = db.getTaskComments(ctx, rowID); err != nil {
		return nil, err
	}
	if t.Attachments, err = db.getTaskAttachments(ctx, rowID); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask inserts a task built from draft
func (db *DB) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	assignee, err := resolveAssignee(ctx, tx, draft.AssigneeID)
	if err != nil {
		return nil, err
	}
	labelIDs, err := resolveLabels(ctx, tx, draft.LabelIDs)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (title, description, status, assignee_id, due_date) VALUES (?, ?, ?, ?, ?)
	`, draft.Title, draft.Description, string(draft.Status), assignee, nullDate(draft.DueDate))
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := setTaskLabels(ctx, tx, id, labelIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return db.GetTask(ctx, formatID(id))
}

// UpdateTask applies the non-nil fields of patch
func (db *DB) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	rowID, err := parseID("task", id)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM tasks WHERE id = ?", rowID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, err
	}

	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*patch.Title))
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.AssigneeID != nil {
		assignee, err := resolveAssignee(ctx, tx, *patch.AssigneeID)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "assignee_id = ?")
		args = append(args, assignee)
	}
	if patch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, nullDate(*patch.DueDate))
	}
	args = append(args, rowID)

	if _, err := tx.ExecContext(ctx, "UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return nil, err
	}

	if patch.Labels != nil {
		labelIDs, err := resolveLabels(ctx, tx, patch.LabelIDs())
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM task_labels WHERE task_id = ?", rowID); err != nil {
			return nil, err
		}
		if err := setTaskLabels(ctx, tx, rowID, labelIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return db.GetTask(ctx, id)
}

// PatchTaskStatus moves a task to another column
func (db *DB) PatchTaskStatus(ctx context.Context, id string, status models.Status) (*models.Task, error) {
	return db.UpdateTask(ctx, id, models.StatusPatch(status))
}

// DeleteTask deletes a task with its comments and attachments
func (db *DB) DeleteTask(ctx context.Context, id string) error {
	rowID, err := parseID("task", id)
	if err != nil {
		return err
	}
	stored, err := db.storedNames(ctx, rowID)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", rowID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("task", id)
	}

	for _, name := range stored {
		os.Remove(filepath.Join(db.filesDir, name))
	}
	return nil
}

// TaskCount returns the number of tasks
func (db *DB) TaskCount(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count)
	return count, err
}

func resolveAssignee(ctx context.Context, q querier, id string) (sql.NullInt64, error) {
	if id == "" {
		return sql.NullInt64{}, nil
	}
	rowID, err := parseID("user", id)
	if err != nil {
		return sql.NullInt64{}, invalid("unknown assignee %s", id)
	}
	var exists int
	err = q.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", rowID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.NullInt64{}, invalid("unknown assignee %s", id)
	}
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: rowID, Valid: true}, nil
}

func resolveLabels(ctx context.Context, q querier, ids []string) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range models.DedupeIDs(ids) {
		rowID, err := parseID("label", id)
		if err != nil {
			return nil, invalid("unknown label %s", id)
		}
		var exists int
		err = q.QueryRowContext(ctx, "SELECT 1 FROM labels WHERE id = ?", rowID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid("unknown label %s", id)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rowID)
	}
	return out, nil
}

func setTaskLabels(ctx context.Context, q querier, taskID int64, labelIDs []int64) error {
	for _, labelID := range labelIDs {
		_, err := q.ExecContext(ctx, `
			INSERT OR IGNORE INTO task_labels (task_id, label_id) VALUES (?, ?)
		`, taskID, labelID)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullDate(d models.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

// sqlID binds a filter id as an integer when it looks like one, so it
// compares equal to integer columns.
func sqlID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
