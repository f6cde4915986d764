package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/tgienger/kanban/internal/models"
)

// ID accepts a JSON string or number and always encodes as a string
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w id: %s", models.ErrInvalid, data)
	}
	*id = ID(n.String())
	return nil
}

// LabelDTO represents a label in API responses
type LabelDTO struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Color    string `json:"color"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID         ID        `json:"id"`
	TaskID     ID        `json:"taskId"`
	Content    string    `json:"content"`
	AuthorID   ID        `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttachmentDTO represents an attachment in API responses
type AttachmentDTO struct {
	ID             ID        `json:"id"`
	TaskID         ID        `json:"taskId"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	Type           string    `json:"type"`
	Size           int64     `json:"size"`
	UploadedBy     ID        `json:"uploadedBy"`
	UploadedByName string    `json:"uploadedByName"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID              ID              `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Status          models.Status   `json:"status"`
	AssigneeID      ID              `json:"assigneeId"`
	AssigneeName    string          `json:"assigneeName"`
	DueDate         models.Date     `json:"due_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Labels          []LabelDTO      `json:"labels"`
	Comments        []CommentDTO    `json:"comments,omitempty"`
	Attachments     []AttachmentDTO `json:"attachments,omitempty"`
	CommentCount    int             `json:"commentCount"`
	AttachmentCount int             `json:"attachmentCount"`
}

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      models.Status `json:"status"`
	AssigneeID  *ID           `json:"assigneeId"`
	DueDate     models.Date   `json:"due_date"`
	LabelIDs    []ID          `json:"labelIds"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}; absent fields are unchanged
type UpdateTaskRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *models.Status `json:"status,omitempty"`
	AssigneeID  *ID            `json:"assigneeId,omitempty"`
	DueDate     *PatchDate     `json:"due_date,omitempty"`
	LabelIDs    *[]ID          `json:"labelIds,omitempty"`
}

// PatchDate sends the zero date as "" so an update can clear it; null would
// read as "unchanged".
type PatchDate struct {
	models.Date
}

func (d PatchDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return d.Date.MarshalJSON()
}

// StatusRequest is the body of PATCH /tasks/{id}/status
type StatusRequest struct {
	Status models.Status `json:"status"`
}

// CommentRequest is the body of POST /tasks/{id}/comments
type CommentRequest struct {
	Content string `json:"content"`
}

// Conversion functions

func ToLabelDTO(l models.Label) LabelDTO {
	return LabelDTO{ID: ID(l.ID), Name: l.Name, Color: l.Color}
}

func (l LabelDTO) Model() models.Label {
	return models.Label{ID: string(l.ID), Name: l.Name, Color: l.Color}
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{ID: ID(u.ID), Username: u.Name, Email: u.Email, Color: u.Color}
}

func (u UserDTO) Model() models.User {
	return models.User{ID: string(u.ID), Name: u.Username, Email: u.Email, Color: u.Color}
}

func ToCommentDTO(c models.Comment) CommentDTO {
	return CommentDTO{
		ID:         ID(c.ID),
		TaskID:     ID(c.TaskID),
		Content:    c.Content,
		AuthorID:   ID(c.AuthorID),
		AuthorName: c.AuthorName,
		CreatedAt:  c.CreatedAt,
	}
}

func (c CommentDTO) Model() models.Comment {
	return models.Comment{
		ID:         string(c.ID),
		TaskID:     string(c.TaskID),
		Content:    c.Content,
		AuthorID:   string(c.AuthorID),
		AuthorName: c.AuthorName,
		CreatedAt:  c.CreatedAt,
	}
}

func ToAttachmentDTO(a models.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:             ID(a.ID),
		TaskID:         ID(a.TaskID),
		Name:           a.Name,
		URL:            a.URL,
		Type:           a.Type,
		Size:           a.Size,
		UploadedBy:     ID(a.UploadedBy),
		UploadedByName: a.UploadedByName,
		UploadedAt:     a.UploadedAt,
	}
}

func (a AttachmentDTO) Model() models.Attachment {
	return models.Attachment{
		ID:             string(a.ID),
		TaskID:         string(a.TaskID),
		Name:           a.Name,
		URL:            a.URL,
		Type:           a.Type,
		Size:           a.Size,
		UploadedBy:     string(a.UploadedBy),
		UploadedByName: a.UploadedByName,
		UploadedAt:     a.UploadedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(t models.Task) TaskDTO {
	out := TaskDTO{
		ID:              ID(t.ID),
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		AssigneeID:      ID(t.AssigneeID),
		AssigneeName:    t.AssigneeName,
		DueDate:         t.DueDate,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Labels:          make([]LabelDTO, 0, len(t.Labels)),
		CommentCount:    t.NumComments(),
		AttachmentCount: t.NumAttachments(),
	}
	for _, l := range t.Labels {
		out.Labels = append(out.Labels, ToLabelDTO(l))
	}
	for _, c := range t.Comments {
		out.Comments = append(out.Comments, ToCommentDTO(c))
	}
	for _, a := range t.Attachments {
		out.Attachments = append(out.Attachments, ToAttachmentDTO(a))
	}
	return out
}

// Model converts the DTO to a Task, rejecting payloads that would break the
// task invariants.
func (t TaskDTO) Model() (models.Task, error) {
	if t.ID == "" {
		return models.Task{}, fmt.Errorf("%w task: missing id", models.ErrInvalid)
	}
	if !t.Status.Valid() {
		return models.Task{}, fmt.Errorf("%w task %s: status %q", models.ErrInvalid, t.ID, t.Status)
	}
	out := models.Task{
		ID:              string(t.ID),
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		AssigneeID:      string(t.AssigneeID),
		AssigneeName:    t.AssigneeName,
		DueDate:         t.DueDate,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		CommentCount:    t.CommentCount,
		AttachmentCount: t.AttachmentCount,
	}
	for _, l := range t.Labels {
		out.Labels = append(out.Labels, l.Model())
	}
	out.Labels = models.DedupeLabels(out.Labels)
	for _, c := range t.Comments {
		out.Comments = append(out.Comments, c.Model())
	}
	for _, a := range t.Attachments {
		out.Attachments = append(out.Attachments, a.Model())
	}
	return out, nil
}

// ToCreateTaskRequest converts a draft to the create payload
func ToCreateTaskRequest(d models.TaskDraft) CreateTaskRequest {
	req := CreateTaskRequest{
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		DueDate:     d.DueDate,
		LabelIDs:    toIDs(d.LabelIDs),
	}
	if d.AssigneeID != "" {
		id := ID(d.AssigneeID)
		req.AssigneeID = &id
	}
	return req
}

// Draft converts the create payload back to a draft
func (r CreateTaskRequest) Draft() models.TaskDraft {
	d := models.TaskDraft{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		DueDate:     r.DueDate,
		LabelIDs:    fromIDs(r.LabelIDs),
	}
	if r.AssigneeID != nil {
		d.AssigneeID = string(*r.AssigneeID)
	}
	return d
}

// ToUpdateTaskRequest converts a patch to the update payload
func ToUpdateTaskRequest(p models.TaskPatch) UpdateTaskRequest {
	req := UpdateTaskRequest{
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
	}
	if p.DueDate != nil {
		req.DueDate = &PatchDate{Date: *p.DueDate}
	}
	if p.AssigneeID != nil {
		id := ID(*p.AssigneeID)
		req.AssigneeID = &id
	}
	if p.Labels != nil {
		ids := toIDs(p.LabelIDs())
		req.LabelIDs = &ids
	}
	return req
}

// Patch converts the update payload to a patch. Labels are returned as bare
// references; the store resolves names and colors.
func (r UpdateTaskRequest) Patch() models.TaskPatch {
	p := models.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
	}
	if r.DueDate != nil {
		due := r.DueDate.Date
		p.DueDate = &due
	}
	if r.AssigneeID != nil {
		id := string(*r.AssigneeID)
		p.AssigneeID = &id
	}
	if r.LabelIDs != nil {
		labels := make([]models.Label, 0, len(*r.LabelIDs))
		for _, id := range fromIDs(*r.LabelIDs) {
			labels = append(labels, models.Label{ID: id})
		}
		p.Labels = &labels
	}
	return p
}

func toIDs(ids []string) []ID {
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		out = append(out, ID(id))
	}
	return out
}

func fromIDs(ids []ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return models.DedupeIDs(out)
}

// ParseID is a helper for path parameters that must be numeric in the store
func ParseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w id %q", models.ErrInvalid, s)
	}
	return n, nil
}
