package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrLockHeld     = errors.New("lock already held")
	ErrFormat       = errors.New("unparsable price")
	ErrUnknownGrade = errors.New("unknown condition grade")
	ErrIncomparable = errors.New("incomparable prices")
	ErrTransport    = errors.New("transport failure")
)

// FormatError reports a price string without a numeric run.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("price: cannot parse %q", e.Input)
}

// Is makes errors.Is(err, ErrFormat) match.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UnknownGradeError reports a condition string outside the grading vocabulary.
type UnknownGradeError struct {
	Input string
}

func (e *UnknownGradeError) Error() string {
	return fmt.Sprintf("condition: cannot determine grade for %q", e.Input)
}

// Is makes errors.Is(err, ErrUnknownGrade) match.
func (e *UnknownGradeError) Is(target error) bool { return target == ErrUnknownGrade }

// IncomparableError reports an operation between prices of different
// currencies.
type IncomparableError struct {
	Op    string
	Left  string
	Right string
}

func (e *IncomparableError) Error() string {
	return fmt.Sprintf("price: cannot %s %q and %q amounts", e.Op, e.Left, e.Right)
}

// Is makes errors.Is(err, ErrIncomparable) match.
func (e *IncomparableError) Is(target error) bool { return target == ErrIncomparable }

// TransportError wraps a marketplace fetch failure for one release page.
type TransportError struct {
	ReleaseID int64
	Page      int
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: release %d page %d: %v", e.ReleaseID, e.Page, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) match.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }
