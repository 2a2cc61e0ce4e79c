package pipeline

import (
	"errors"
	"fmt"
)

// ErrFatalConfig marks failures that stop a run before any card is rendered:
// invalid configuration, unreadable input, unloadable fonts and unknown
// override columns.
var ErrFatalConfig = errors.New("fatal configuration error")

// Skip reasons.
const (
	ReasonEmptyFeedback = "empty feedback"
	ReasonNonText       = "feedback is not text"
	ReasonCompose       = "card composition failed"
	ReasonWrite         = "card could not be written"
)

// SkipError records why one row produced no card.
type SkipError struct {
	Row    int
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("row %d skipped: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d skipped: %s: %v", e.Row, e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

func fatal(err error) error {
	if err == nil || errors.Is(err, ErrFatalConfig) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFatalConfig, err)
}
