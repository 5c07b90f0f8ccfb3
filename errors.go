package media_archiver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL means the input is not a URL for a supported platform; no network I/O is attempted.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrNotApplicable is returned by a strategy that could not handle its input, and is never surfaced by the chain.
	ErrNotApplicable = errors.New("strategy not applicable")
	// ErrResolutionFailed means no strategy produced a MediaDescriptor.
	ErrResolutionFailed = errors.New("resolution failed")
	// ErrRetrievalFailed covers transport and write errors while persisting media.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrMalformedResponse means a payload was missing required fields.
	ErrMalformedResponse = errors.New("malformed response")
)

// RetrievalError is returned when persisting a descriptor fails. Saved counts the files written (and left on disk)
// before the failure, out of Total.
type RetrievalError struct {
	Saved int
	Total int
	Err   error
}

func (e *RetrievalError) Error() string {
	if e.Saved > 0 {
		return fmt.Sprintf("%v: saved %d of %d files before failure: %v", ErrRetrievalFailed, e.Saved, e.Total, e.Err)
	}
	return fmt.Sprintf("%v: %v", ErrRetrievalFailed, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

func (e *RetrievalError) Is(target error) bool {
	return target == ErrRetrievalFailed
}

// IsPartial returns true if some, but not all, files were saved.
func (e *RetrievalError) IsPartial() bool {
	return e.Saved > 0 && e.Saved < e.Total
}

// Malformed wraps a description of a missing or invalid field as ErrMalformedResponse.
func Malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
