package models

import (
	"errors"
	"fmt"
)

var (
	// ErrAllStrategiesFailed is reported when no strategy could both handle the input and succeed.
	ErrAllStrategiesFailed = errors.New("all fetch strategies failed")
	// ErrNoStrategy is reported when no configured strategy can handle the input.
	ErrNoStrategy = errors.New("no fetch strategy can handle the input")
	// ErrNoCareersURL marks input that a page-based strategy cannot handle.
	ErrNoCareersURL = errors.New("careers url not configured")
)

// NavigationError wraps a failure to reach or load the target page.
// The message of the underlying error is kept as-is.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return e.Err.Error()
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ExtractionError is raised by a single extractor. The chain logs it and moves on.
type ExtractionError struct {
	Extractor string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction: %v", e.Extractor, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
