package board

import (
	"errors"
	"fmt"

	"github.com/tgienger/kanban/internal/models"
)

// Kind classifies a failed operation
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindValidation
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network failure"
	case KindValidation:
		return "validation failure"
	case KindNotFound:
		return "not found"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Error is the failure type of every Synchronizer and Gateway operation
type Error struct {
	Kind    Kind
	Op      string // e.g. "move", "list tasks"
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels, so errors.Is(err, ErrNotFound) works on any
// *Error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

// ErrSuperseded is returned by Fetch when a newer fetch was issued before this
// one's response arrived. The cache was not touched; callers usually ignore it.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Errorf builds an *Error of the given kind
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or 0 when err is nil or unclassified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// classify wraps err in an *Error, keeping an existing classification.
// Model validation errors become validation failures; anything else that the
// gateway did not classify is treated as a transport failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Op != "" {
			return e
		}
		return &Error{Kind: e.Kind, Op: op, Message: e.Message, Err: e.Err}
	}
	kind := KindNetwork
	if errors.Is(err, models.ErrInvalid) {
		kind = KindValidation
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
