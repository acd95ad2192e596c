package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat matches every parse failure.
	ErrInvalidFormat = errors.New("invalid feed format")

	// ErrNoChannel matches documents without a <channel> element.
	ErrNoChannel = errors.New("feed has no channel")
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	KindInvalidFormat ErrorKind = iota
	KindNoChannel
)

func (k ErrorKind) String() string {
	if k == KindNoChannel {
		return "no_channel"
	}
	return "invalid_format"
}

// ParseError describes why a document produced no album.
type ParseError struct {
	Kind ErrorKind
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse feed: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("parse feed: %s", e.Kind)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinels. A missing channel is also an
// invalid format.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrInvalidFormat:
		return true
	case ErrNoChannel:
		return e.Kind == KindNoChannel
	}
	return false
}
