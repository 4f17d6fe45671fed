package gateway

import (
	"context"

	"github.com/kailas-cloud/storesearch/internal/domain"
)

// Searcher performs one remote search call. It must return domain.ErrAborted
// once ctx is cancelled.
type Searcher interface {
	Search(ctx context.Context, term string) ([]domain.RemoteItem, error)
}
