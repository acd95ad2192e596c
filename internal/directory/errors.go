package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches lookups the directory could not answer.
	ErrNotFound = errors.New("not found in directory")

	// ErrAPI matches failed or malformed API responses.
	ErrAPI = errors.New("directory api error")
)

// ErrorKind classifies a directory failure.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindAPI
)

func (k ErrorKind) String() string {
	if k == KindNotFound {
		return "not_found"
	}
	return "api_error"
}

// Error is returned by every Client method.
type Error struct {
	Kind     ErrorKind
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("directory %s: %s: %v", e.Endpoint, e.Kind, e.Err)
	}
	return fmt.Sprintf("directory %s: %s", e.Endpoint, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrNotFound and ErrAPI by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrAPI:
		return e.Kind == KindAPI
	}
	return false
}
