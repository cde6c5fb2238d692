package transform

import "fmt"

// Reason classifies a transform failure.
type Reason string

const (
	ReasonUnknownColumn Reason = "unknown_column"
	ReasonTypeMismatch  Reason = "type_mismatch"
)

// Sentinels for errors.Is classification.
var (
	ErrUnknownColumn = &Error{Reason: ReasonUnknownColumn}
	ErrTypeMismatch  = &Error{Reason: ReasonTypeMismatch}
)

// Error reports why an operation could not apply.
type Error struct {
	Reason Reason
	Column string
	Detail string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: column %q", e.Reason, e.Column)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches any *Error with the same Reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Reason == e.Reason
}
