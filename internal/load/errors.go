package load

import "fmt"

// Reason classifies a load failure.
type Reason string

const (
	// ReasonUnreadable covers sources that cannot be opened or parsed, and
	// headers that do not name every declared column.
	ReasonUnreadable Reason = "unreadable"
	// ReasonMalformedRow covers data rows with the wrong field count or a
	// cell that does not parse as its declared kind.
	ReasonMalformedRow Reason = "malformed_row"
)

// Sentinels for errors.Is classification.
var (
	ErrUnreadable   = &Error{Reason: ReasonUnreadable}
	ErrMalformedRow = &Error{Reason: ReasonMalformedRow}
)

// Error reports why a dataset could not be loaded.
type Error struct {
	Reason Reason
	Source string
	Row    int   // 1-based data row index; 0 when the failure is not row-scoped
	Err    error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("load %s: %s", e.Source, e.Reason)
	if e.Row > 0 {
		msg = fmt.Sprintf("%s (row %d)", msg, e.Row)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Reason, so
// errors.Is(err, ErrMalformedRow) classifies a failure without regard to
// which source or row produced it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Reason == e.Reason
}
