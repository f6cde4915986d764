package board

import (
	"context"

	"github.com/tgienger/kanban/internal/models"
)

// Gateway is the remote source of truth for tasks, labels and users.
// Implementations return *Error values so callers can tell failure kinds apart.
type Gateway interface {
	ListTasks(ctx context.Context, filter Filter) ([]models.Task, error)
	CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	PatchTaskStatus(ctx context.Context, id string, status models.Status) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	AddComment(ctx context.Context, taskID, content string) (*models.Comment, error)
	UploadAttachment(ctx context.Context, taskID string, file models.Upload) (*models.Attachment, error)
	ListLabels(ctx context.Context) ([]models.Label, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}
