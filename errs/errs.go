package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a business error so the HTTP layer can pick a status
// without inspecting message text.
type Kind int

const (
	// Validation: bad amount/quantity, percentage outside [0,100], malformed input.
	Validation Kind = iota
	// NotFound: unknown product/party/document/receipt.
	NotFound
	// Conflict: receipt linked to both document types, double undo,
	// edit on an undone receipt.
	Conflict
	// Consistency: a computed amount broke an invariant (e.g. due below zero).
	// Never clamped away silently.
	Consistency
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
