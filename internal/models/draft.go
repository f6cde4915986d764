package models

import (
	"fmt"
	"strings"
)

// TaskDraft is the input for creating a task. The server assigns ID and CreatedAt.
type TaskDraft struct {
	Title       string
	Description string
	Status      Status
	AssigneeID  string
	DueDate     Date
	LabelIDs    []string
}

// Validate trims the draft in place and checks required fields.
// An empty status defaults to todo.
func (d *TaskDraft) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return fmt.Errorf("%w task: title is required", ErrInvalid)
	}
	if d.Status == "" {
		d.Status = StatusTodo
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w status %q", ErrInvalid, d.Status)
	}
	d.LabelIDs = DedupeIDs(d.LabelIDs)
	return nil
}

// TaskPatch carries the fields of an update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
	AssigneeID  *string // pointer to "" unassigns
	DueDate     *Date
	Labels      *[]Label
}

// Empty reports whether the patch changes nothing
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.AssigneeID == nil && p.DueDate == nil && p.Labels == nil
}

// Validate rejects patches that would break a task invariant
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w task: title cannot be empty", ErrInvalid)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w status %q", ErrInvalid, *p.Status)
	}
	return nil
}

// Apply returns a copy of t with the patch applied. The assignee display name is
// cleared when the assignee changes; callers that know the user fill it in.
func (p TaskPatch) Apply(t Task) Task {
	t = t.Clone()
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.AssigneeID != nil && *p.AssigneeID != t.AssigneeID {
		t.AssigneeID = *p.AssigneeID
		t.AssigneeName = ""
	}
	if p.DueDate != nil {
		t.DueDate = NewDate(p.DueDate.Time())
	}
	if p.Labels != nil {
		t.Labels = DedupeLabels(append([]Label(nil), (*p.Labels)...))
	}
	return t
}

// LabelIDs returns the patched label ids, or nil when labels are unchanged
func (p TaskPatch) LabelIDs() []string {
	if p.Labels == nil {
		return nil
	}
	return Task{Labels: DedupeLabels(*p.Labels)}.LabelIDs()
}

// StatusPatch is a patch that only moves the task
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}

// AssigneePatch is a patch that only reassigns the task
func AssigneePatch(userID string) TaskPatch {
	return TaskPatch{AssigneeID: &userID}
}
