package domain

import (
	"errors"
	"fmt"
)

// DefaultSearchErrorMessage is shown when the search backend fails without a message.
const DefaultSearchErrorMessage = "unknown search error"

var (
	// ErrAborted signals a remote search superseded by newer input or a closed surface.
	// It is the steady state of fast typing and never a failure.
	ErrAborted = errors.New("search aborted")
	// ErrNetwork signals a transport failure or non-success response from the search backend.
	ErrNetwork = errors.New("search network error")
	// ErrUnknownDomain signals a remote item whose domain is not recognised.
	ErrUnknownDomain = errors.New("unknown search domain")
	// ErrSessionNotFound signals a missing palette session.
	ErrSessionNotFound = errors.New("palette session not found")
	// ErrSessionClosed signals an operation on a closed palette.
	ErrSessionClosed = errors.New("palette session closed")
	// ErrNoSelection signals activation with an empty result list or an out-of-range index.
	ErrNoSelection = errors.New("no selectable item")
	// ErrUnknownAction signals a quick action that does not apply to the item.
	ErrUnknownAction = errors.New("unknown quick action")
	// ErrInvalidQuery signals a malformed request parameter.
	ErrInvalidQuery = errors.New("invalid query")
)

// SearchError wraps ErrNetwork with the HTTP status and a user-facing message.
type SearchError struct {
	Status  int
	Message string
}

func (e *SearchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", ErrNetwork.Error(), e.Status, e.UserMessage())
	}
	return fmt.Sprintf("%s: %s", ErrNetwork.Error(), e.UserMessage())
}

func (e *SearchError) Unwrap() error { return ErrNetwork }

// UserMessage returns the message to surface inline, never empty.
func (e *SearchError) UserMessage() string {
	if e.Message == "" {
		return DefaultSearchErrorMessage
	}
	return e.Message
}

// NewSearchError creates a network error with the backend's message (may be empty).
func NewSearchError(status int, message string) error {
	return &SearchError{Status: status, Message: message}
}

// UserMessage extracts a user-facing message from a search failure.
func UserMessage(err error) string {
	var se *SearchError
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return DefaultSearchErrorMessage
}
