package summarize

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned by New when the selected provider has
// no API key configured.
var ErrMissingCredential = errors.New("summarize: missing model API key")

// Error wraps a failed model call (transport, non-2xx, malformed payload).
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summarize: %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
