package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every validation error in this package
var ErrInvalid = errors.New("invalid")

// Status is the board column a task lives in
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
)

// Statuses lists the columns in board order
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// ParseStatus validates a status value. The spelled form "in-progress" is
// accepted for StatusInProgress; anything else is rejected.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo":
		return StatusTodo, nil
	case "inprogress", "in-progress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("%w status %q", ErrInvalid, s)
}

// Valid reports whether s is one of the three board columns
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Title is the column heading
func (s Status) Title() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Index is the column position, or -1 for an invalid status
func (s Status) Index() int {
	for i, st := range Statuses() {
		if st == s {
			return i
		}
	}
	return -1
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w status: %v", ErrInvalid, err)
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
