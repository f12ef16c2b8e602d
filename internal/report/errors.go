package report

import (
	"errors"
	"fmt"
)

// Sentinel errors for the extraction failure taxonomy. Callers branch on
// these with errors.Is.
var (
	// ErrInvalidInput means the supplied bytes are not a PDF document.
	ErrInvalidInput = errors.New("input is not a valid PDF document")

	// ErrNotReady means extraction was invoked before the document
	// engine finished initializing; the caller may retry after a delay.
	ErrNotReady = errors.New("document engine is not ready")

	// ErrEmptyResult means the document was processed successfully but
	// contained no payload record lines. An aggregate-only document
	// still yields this error.
	ErrEmptyResult = errors.New("no payload records found in document")
)

// ProcessingError wraps an unexpected failure during page iteration or
// parsing, preserving the underlying cause for diagnostics.
type ProcessingError struct {
	Op   string
	Page int
	Err  error
}

func (e *ProcessingError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("report processing failed in %s (page %d): %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("report processing failed in %s: %v", e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
