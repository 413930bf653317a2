package http

import (
	"errors"
	"fmt"
)

// ErrUnexpectedStatus is the cause of a FetchError for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// FetchError is returned when a request fails at the transport level or
// the server answers with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *FetchError) Is(target error) bool {
	_, ok := target.(*FetchError)
	return ok
}
