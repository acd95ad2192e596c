package http

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a fetch failure.
type ErrorKind int

const (
	// KindNetwork is a transport failure (DNS, connection reset, ...).
	KindNetwork ErrorKind = iota

	// KindTimeout means the per-attempt budget elapsed.
	KindTimeout

	// KindRateLimited is a 429 response.
	KindRateLimited

	// KindServerError is a 5xx response.
	KindServerError

	// KindClientError is any other non-2xx response.
	KindClientError

	// KindInvalidFormat is an empty or non-XML feed body.
	KindInvalidFormat
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	case KindInvalidFormat:
		return "invalid_format"
	default:
		return "unknown"
	}
}

// FetchError describes a failed fetch.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	URL        string

	// RetryAfter is the server-provided Retry-After hint, if any.
	RetryAfter time.Duration

	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (HTTP %d)", e.URL, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying could succeed. Format errors and 4xx
// responses other than 429 are permanent.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}

// KindOf returns the kind of a FetchError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}
