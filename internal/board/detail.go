package board

import "github.com/tgienger/kanban/internal/models"

// Panel selects which sub-list of a task the detail view shows
type Panel int

const (
	PanelComments Panel = iota
	PanelAttachments
)

func (p Panel) String() string {
	switch p {
	case PanelAttachments:
		return "Attachments"
	}
	return "Comments"
}

// PanelContent is one of CommentsPanel or AttachmentsPanel
type PanelContent interface {
	Panel() Panel
}

type CommentsPanel struct {
	Comments []models.Comment
}

type AttachmentsPanel struct {
	Attachments []models.Attachment
}

func (CommentsPanel) Panel() Panel    { return PanelComments }
func (AttachmentsPanel) Panel() Panel { return PanelAttachments }

// Detail is the expanded view of one task
type Detail struct {
	Task  models.Task
	Panel Panel
}

// Content returns the data of the selected panel
func (d Detail) Content() PanelContent {
	switch d.Panel {
	case PanelAttachments:
		return AttachmentsPanel{Attachments: d.Task.Attachments}
	default:
		return CommentsPanel{Comments: d.Task.Comments}
	}
}

// Next switches to the other panel
func (d Detail) Next() Detail {
	if d.Panel == PanelComments {
		d.Panel = PanelAttachments
	} else {
		d.Panel = PanelComments
	}
	return d
}

// Refresh reloads the task from the cache, keeping the panel. ok is false when
// the task is gone.
func (d Detail) Refresh(c *Cache) (Detail, bool) {
	t, ok := c.Get(d.Task.ID)
	if !ok {
		return d, false
	}
	d.Task = t
	return d, true
}
