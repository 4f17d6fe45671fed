package storesearch

import (
	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/domain/route"
	"github.com/kailas-cloud/storesearch/internal/usecase/palette"
)

// Query is the processed form of one search input.
type Query struct {
	Raw        string
	Normalized string
	Final      string // corrected query, or Normalized when nothing was corrected
	Suggestion string // non-empty when spelling correction changed the query
	Expanded   string // corrected tokens plus synonyms
}

// NavEntry is a navigable menu item.
type NavEntry struct {
	ID     string
	Title  string
	Path   string
	Icon   string
	Parent string
}

// Palette types. A Palette is safe for concurrent use; every call returns
// an immutable Snapshot and Updates() delivers the latest one after remote
// results land.
type (
	Palette    = palette.Session
	Snapshot   = palette.Snapshot
	Item       = palette.Item
	Activation = palette.Activation
	Action     = route.Action
)

// Keys understood by Palette.HandleKey.
const (
	KeyArrowDown = palette.KeyArrowDown
	KeyArrowUp   = palette.KeyArrowUp
	KeyEnter     = palette.KeyEnter
	KeyEscape    = palette.KeyEscape
)

// Quick actions understood by Palette.QuickAction.
const (
	ActionOpen     = route.Open
	ActionPayNext  = route.PayNext
	ActionReceipt  = route.Receipt
	ActionPrint    = route.Print
	ActionFavorite = route.Favorite
)

func queryFromDomain(q domain.ProcessedQuery) Query {
	return Query{
		Raw:        q.Raw,
		Normalized: q.Normalized,
		Final:      q.Final,
		Suggestion: q.Suggestion,
		Expanded:   q.Expanded,
	}
}

func navEntriesFromDomain(entries []domain.NavEntry) []NavEntry {
	out := make([]NavEntry, len(entries))
	for i, e := range entries {
		out[i] = NavEntry{
			ID:     e.ID,
			Title:  e.Title,
			Path:   e.Path,
			Icon:   e.Icon,
			Parent: e.ParentTitle,
		}
	}
	return out
}
