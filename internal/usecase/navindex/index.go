// Package navindex flattens the navigation menu into a searchable in-memory index.
package navindex

import (
	"strings"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/textnorm"
)

// Result caps.
const (
	EmptyQueryLimit = 30
	QueryLimit      = 50
)

// Index is an immutable, order-preserving list of navigable entries.
// Safe for concurrent reads.
type Index struct {
	entries   []domain.NavEntry
	haystacks []string
}

// Build flattens tree depth-first. Only nodes with their own path are emitted;
// group nodes are traversed for their children.
func Build(tree *domain.NavTree) *Index {
	ix := &Index{}
	if tree == nil {
		return ix
	}
	for _, n := range tree.Roots {
		ix.flatten(n, "")
	}
	return ix
}

func (ix *Index) flatten(n domain.NavNode, parentTitle string) {
	if n.Path != "" {
		e := domain.NavEntry{
			ID:          n.Path,
			Title:       n.Title,
			Path:        n.Path,
			Icon:        n.Icon,
			ParentTitle: parentTitle,
		}
		ix.entries = append(ix.entries, e)
		ix.haystacks = append(ix.haystacks, haystack(e))
	}
	for _, c := range n.Children {
		ix.flatten(c, n.Title)
	}
}

func haystack(e domain.NavEntry) string {
	return textnorm.Normalize(e.Title + " " + e.ParentTitle + " " + e.Path)
}

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Entries returns a copy of all entries in index order.
func (ix *Index) Entries() []domain.NavEntry {
	out := make([]domain.NavEntry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Lookup finds an entry by path.
func (ix *Index) Lookup(path string) (domain.NavEntry, bool) {
	for _, e := range ix.entries {
		if e.Path == path {
			return e, true
		}
	}
	return domain.NavEntry{}, false
}

// Search returns the first EmptyQueryLimit entries for an empty query, otherwise
// up to QueryLimit entries whose title, parent title or path contains the final
// query, in index order. No relevance scoring.
func (ix *Index) Search(q domain.ProcessedQuery) []domain.NavEntry {
	if q.IsEmpty() {
		n := min(len(ix.entries), EmptyQueryLimit)
		out := make([]domain.NavEntry, n)
		copy(out, ix.entries[:n])
		return out
	}

	needle := strings.ToLower(q.Final)
	var out []domain.NavEntry
	for i, h := range ix.haystacks {
		if !strings.Contains(h, needle) {
			continue
		}
		out = append(out, ix.entries[i])
		if len(out) == QueryLimit {
			break
		}
	}
	return out
}
