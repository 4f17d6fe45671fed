package storesearch

import "github.com/kailas-cloud/storesearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSessionNotFound = domain.ErrSessionNotFound
	ErrSessionClosed   = domain.ErrSessionClosed
	ErrNoSelection     = domain.ErrNoSelection
	ErrUnknownAction   = domain.ErrUnknownAction
	ErrInvalidQuery    = domain.ErrInvalidQuery
	ErrNetwork         = domain.ErrNetwork
)

// UserMessage returns the text to show for a failed remote search.
func UserMessage(err error) string { return domain.UserMessage(err) }
