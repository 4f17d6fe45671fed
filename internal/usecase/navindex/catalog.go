package navindex

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storesearch/internal/domain"
)

// Catalog memoizes one Index per effective role. The menu is filtered by the access
// predicate before flattening, so hidden paths never enter an index.
type Catalog struct {
	tree   *domain.NavTree
	access AccessChecker
	logger *zap.Logger

	mu     sync.Mutex
	byRole map[string]*Index
}

// NewCatalog creates a catalog over a static menu.
func NewCatalog(tree *domain.NavTree, access AccessChecker, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		tree:   tree,
		access: access,
		logger: logger,
		byRole: make(map[string]*Index),
	}
}

// ForRole returns the shared, read-only index for role, building it on first
// use. Unknown roles share the index of the role they resolve to.
func (c *Catalog) ForRole(role string) *Index {
	role = c.access.Resolve(role)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ix, ok := c.byRole[role]; ok {
		return ix
	}

	filtered := c.tree.Filter(func(path string) bool {
		return c.access.CanAccessPath(role, path)
	})
	ix := Build(filtered)
	c.byRole[role] = ix

	c.logger.Debug("navigation index built",
		zap.String("role", role),
		zap.Int("entries", ix.Len()),
	)
	return ix
}

// CanAccess exposes the access predicate for collaborators that must filter by role.
func (c *Catalog) CanAccess(role, path string) bool {
	return c.access.CanAccessPath(role, path)
}
