package resolve

import (
	"errors"
	"fmt"

	"github.com/handiism/feedmusic/internal/model"
)

var (
	ErrNotFoundInDirectory = errors.New("feed not found in directory")
	ErrNoFeedURL           = errors.New("directory entry has no feed url")
	ErrItemNotFound        = errors.New("item not found in feed")
	ErrAPI                 = errors.New("directory api error")
	ErrFetchFailed         = errors.New("feed fetch failed")
	ErrInvalidReference    = errors.New("reference has neither feed guid nor feed url")
	ErrCancelled           = errors.New("resolution cancelled")
)

// ErrorKind classifies a resolution failure.
type ErrorKind int

const (
	KindNotFoundInDirectory ErrorKind = iota
	KindNoFeedURL
	KindItemNotFound
	KindAPIError
	KindFetchFailed
	KindInvalidReference
	KindCancelled
)

var kindSentinels = map[ErrorKind]error{
	KindNotFoundInDirectory: ErrNotFoundInDirectory,
	KindNoFeedURL:           ErrNoFeedURL,
	KindItemNotFound:        ErrItemNotFound,
	KindAPIError:            ErrAPI,
	KindFetchFailed:         ErrFetchFailed,
	KindInvalidReference:    ErrInvalidReference,
	KindCancelled:           ErrCancelled,
}

func (k ErrorKind) String() string {
	switch k {
	case KindNotFoundInDirectory:
		return "not_found_in_directory"
	case KindNoFeedURL:
		return "no_feed_url"
	case KindItemNotFound:
		return "item_not_found"
	case KindAPIError:
		return "api_error"
	case KindFetchFailed:
		return "fetch_failed"
	case KindInvalidReference:
		return "invalid_reference"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ResolutionError is the failure record for one reference.
type ResolutionError struct {
	Kind ErrorKind
	Ref  model.RemoteItemReference
	Err  error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolve %s: %s", e.Ref, kindSentinels[e.Kind])
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *ResolutionError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the kind of a resolution failure.
func KindOf(err error) (ErrorKind, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

func failure(kind ErrorKind, ref model.RemoteItemReference, err error) *ResolutionError {
	return &ResolutionError{Kind: kind, Ref: ref, Err: err}
}
