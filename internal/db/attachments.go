package db

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tgienger/kanban/internal/models"
)

const selectAttachments = `
	SELECT a.id, a.task_id, a.name, a.type, a.size, a.uploaded_by,
		COALESCE(u.username, a.uploaded_by_name), a.uploaded_at
	FROM attachments a
	LEFT JOIN users u ON u.id = a.uploaded_by
`

// AttachmentURL is the API path an attachment body is served from
func AttachmentURL(id string) string {
	return "/attachments/" + id + "/download"
}

// UploadAttachment stores the file body under a random name in the files
// directory and records it against the task.
func (db *DB) UploadAttachment(ctx context.Context, taskID string, file models.Upload) (*models.Attachment, error) {
	name := filepath.Base(strings.TrimSpace(file.Name))
	if name == "" || name == "." || name == string(filepath.Separator) || file.Body == nil {
		return nil, invalid("no file selected")
	}
	rowID, err := db.taskRowID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	uploadedBy, uploaderName, err := db.actor(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(db.filesDir, 0755); err != nil {
		return nil, err
	}
	stored := uuid.NewString() + filepath.Ext(name)
	path := filepath.Join(db.filesDir, stored)
	size, err := writeFile(path, file.Body)
	if err != nil {
		return nil, err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	result, err := db.ExecContext(ctx, `
		INSERT INTO attachments (task_id, name, stored_name, type, size, uploaded_by, uploaded_by_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rowID, name, stored, contentType, size, uploadedBy, uploaderName)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	a, err := scanAttachment(db.QueryRowContext(ctx, selectAttachments+" WHERE a.id = ?", id))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// OpenAttachment returns an attachment and the path of its stored body
func (db *DB) OpenAttachment(ctx context.Context, id string) (*models.Attachment, string, error) {
	rowID, err := parseID("attachment", id)
	if err != nil {
		return nil, "", err
	}
	var stored string
	err = db.QueryRowContext(ctx, "SELECT stored_name FROM attachments WHERE id = ?", rowID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", notFound("attachment", id)
	}
	if err != nil {
		return nil, "", err
	}
	a, err := scanAttachment(db.QueryRowContext(ctx, selectAttachments+" WHERE a.id = ?", rowID))
	if err != nil {
		return nil, "", err
	}
	return &a, filepath.Join(db.filesDir, stored), nil
}

// getTaskAttachments retrieves all attachments for a task, oldest first
func (db *DB) getTaskAttachments(ctx context.Context, taskID int64) ([]models.Attachment, error) {
	rows, err := db.QueryContext(ctx, selectAttachments+`
		WHERE a.task_id = ?
		ORDER BY a.uploaded_at ASC, a.id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (db *DB) storedNames(ctx context.Context, taskID int64) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT stored_name FROM attachments WHERE task_id = ?", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanAttachment(s scanner) (models.Attachment, error) {
	var (
		a      models.Attachment
		id     int64
		taskID int64
		by     sql.NullInt64
	)
	if err := s.Scan(&id, &taskID, &a.Name, &a.Type, &a.Size, &by, &a.UploadedByName, &a.UploadedAt); err != nil {
		return models.Attachment{}, err
	}
	a.ID = formatID(id)
	a.TaskID = formatID(taskID)
	a.UploadedBy = nullID(by)
	a.URL = AttachmentURL(a.ID)
	return a, nil
}

func writeFile(path string, body io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}
