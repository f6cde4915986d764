package board

import (
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// DragPhase tags the drag state
type DragPhase int

const (
	DragIdle DragPhase = iota
	DragLifted
	DragOverColumn
)

func (p DragPhase) String() string {
	switch p {
	case DragLifted:
		return "dragging"
	case DragOverColumn:
		return "dragging over column"
	}
	return "idle"
}

// DragState is Idle, Dragging(TaskID) or DraggingOverColumn(TaskID, Column)
type DragState struct {
	Phase  DragPhase
	TaskID string        // set unless idle
	Column models.Status // set only over a column
}

// MoveFunc receives the move produced by a completed drop
type MoveFunc func(taskID string, to models.Status)

// Drag tracks a drag gesture. It knows nothing about the input device: the
// rendering layer feeds it the five gesture events.
type Drag struct {
	mu     sync.Mutex
	state  DragState
	onDrop MoveFunc
}

// NewDrag starts idle; onDrop is called once per completed drop
func NewDrag(onDrop MoveFunc) *Drag {
	return &Drag{onDrop: onDrop}
}

// State returns the current state
func (d *Drag) State() DragState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Dragging reports whether a task is lifted
func (d *Drag) Dragging() bool {
	return d.State().Phase != DragIdle
}

// StartDrag lifts a task. Starting while already dragging lifts the new task
// instead and clears the column.
func (d *Drag) StartDrag(taskID string) {
	if taskID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = DragState{Phase: DragLifted, TaskID: taskID}
}

// DragEnter marks column as the drop target
func (d *Drag) DragEnter(column models.Status) {
	if !column.Valid() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Phase == DragIdle {
		return
	}
	d.state.Phase = DragOverColumn
	d.state.Column = column
}

// DragLeave clears the drop target; the task stays lifted
func (d *Drag) DragLeave() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Phase != DragOverColumn {
		return
	}
	d.state = DragState{Phase: DragLifted, TaskID: d.state.TaskID}
}

// Drop completes the gesture on column and returns to idle. The move callback
// fires even when column is the task's current status. It reports whether a
// move was produced.
func (d *Drag) Drop(column models.Status) bool {
	d.mu.Lock()
	prev := d.state
	d.state = DragState{}
	d.mu.Unlock()

	if prev.Phase == DragIdle || !column.Valid() {
		return false
	}
	if d.onDrop != nil {
		d.onDrop(prev.TaskID, column)
	}
	return true
}

// EndDrag cancels the gesture without moving anything
func (d *Drag) EndDrag() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = DragState{}
}
