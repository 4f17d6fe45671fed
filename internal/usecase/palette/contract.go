package palette

import (
	"context"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/usecase/gateway"
	"github.com/kailas-cloud/storesearch/internal/usecase/navindex"
)

// QueryProcessor turns raw input into a processed query.
type QueryProcessor interface {
	Process(raw string) domain.ProcessedQuery
}

// LocalSearcher searches the role-filtered navigation index.
type LocalSearcher interface {
	Search(q domain.ProcessedQuery) []domain.NavEntry
}

// RemoteGateway debounces and single-flights remote searches for one session.
type RemoteGateway interface {
	Start(term string) gateway.State
	CancelAll()
	State() gateway.State
}

// GatewayFactory creates a session's gateway bound to its outcome callback.
type GatewayFactory func(onOutcome gateway.Callback) RemoteGateway

// FavoritesStore is the per-user favorites/recents collaborator.
type FavoritesStore interface {
	Favorites(ctx context.Context, user string) ([]domain.NavEntry, error)
	Recents(ctx context.Context, user string) ([]domain.NavEntry, error)
	ToggleFavorite(ctx context.Context, user string, entry domain.NavEntry) (bool, error)
	PushRecent(ctx context.Context, user string, entry domain.NavEntry) error
}

// AccessChecker gates every path shown to or opened by a role.
type AccessChecker interface {
	CanAccessPath(role, path string) bool
}

// NavCatalog hands out the memoized navigation index of a role.
type NavCatalog interface {
	ForRole(role string) *navindex.Index
	CanAccess(role, path string) bool
}
