package session

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when an operation of the same kind is already running
// against the working copy.
var ErrBusy = errors.New("operation already in progress")

// ErrStale is returned when a remote result arrives after the working copy it
// was computed for has been replaced wholesale. The result is discarded.
var ErrStale = errors.New("working copy superseded, result discarded")

// ErrNoPosts marks a normalization request with nothing to fetch. Callers
// treat it as a warning, not a failure.
var ErrNoPosts = errors.New("no posts with URLs to normalize")

// ParseError means bytes that should have been a document could not be
// decoded. The working copy is left untouched.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
