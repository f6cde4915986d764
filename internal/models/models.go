package models

import (
	"io"
	"slices"
	"strings"
	"time"
)

// Label is a colored tag from the global label registry
type Label struct {
	ID    string
	Name  string
	Color string
}

// User is a member of the board that tasks can be assigned to
type User struct {
	ID    string
	Name  string
	Email string
	Color string
}

// Comment represents a comment on a task
type Comment struct {
	ID         string
	TaskID     string
	Content    string
	AuthorID   string
	AuthorName string // captured when the comment was written
	CreatedAt  time.Time
}

// Attachment is a file uploaded to a task
type Attachment struct {
	ID             string
	TaskID         string
	Name           string
	URL            string
	Type           string
	Size           int64
	UploadedBy     string
	UploadedByName string
	UploadedAt     time.Time
}

// Task represents a single card on the board
type Task struct {
	ID           string
	Title        string
	Description  string
	Status       Status
	AssigneeID   string // empty when unassigned
	AssigneeName string
	DueDate      Date
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Labels       []Label
	Comments     []Comment    // populated when loading task details
	Attachments  []Attachment // populated when loading task details

	// Reported by list endpoints that do not embed the nested collections
	CommentCount    int
	AttachmentCount int
}

// Clone returns a copy of the task that shares no slices with t
func (t Task) Clone() Task {
	t.Labels = slices.Clone(t.Labels)
	t.Comments = slices.Clone(t.Comments)
	t.Attachments = slices.Clone(t.Attachments)
	return t
}

// HasLabel reports whether the task references the label id
func (t Task) HasLabel(id string) bool {
	return slices.ContainsFunc(t.Labels, func(l Label) bool { return l.ID == id })
}

// LabelIDs returns the ids of the task's labels in order
func (t Task) LabelIDs() []string {
	ids := make([]string, 0, len(t.Labels))
	for _, l := range t.Labels {
		ids = append(ids, l.ID)
	}
	return ids
}

// NumComments prefers the loaded comment list over the reported count
func (t Task) NumComments() int {
	if len(t.Comments) > 0 {
		return len(t.Comments)
	}
	return t.CommentCount
}

// NumAttachments prefers the loaded attachment list over the reported count
func (t Task) NumAttachments() int {
	if len(t.Attachments) > 0 {
		return len(t.Attachments)
	}
	return t.AttachmentCount
}

// Overdue reports whether the task is past its due date on the given day
func (t Task) Overdue(today Date) bool {
	return t.Status != StatusDone && !t.DueDate.IsZero() && t.DueDate.Before(today)
}

// DedupeLabels removes repeated label ids, keeping the first occurrence
func DedupeLabels(labels []Label) []Label {
	if len(labels) == 0 {
		return labels
	}
	seen := make(map[string]bool, len(labels))
	out := make([]Label, 0, len(labels))
	for _, l := range labels {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	return out
}

// DedupeIDs removes empty and repeated ids, keeping order
func DedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Upload is a file to attach to a task
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}
