package palette

import (
	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/usecase/gateway"
)

// Status of the palette surface.
type Status string

// Palette statuses.
const (
	StatusClosed    Status = "closed"
	StatusOpenEmpty Status = "open_empty"
	StatusLocalOnly Status = "open_query_local_only"
	StatusMerged    Status = "open_query_merged"
)

// Keys understood by HandleKey.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// Snapshot is the immutable view state produced by every mutation.
// Slices are never modified after publication.
type Snapshot struct {
	Status      Status
	Query       domain.ProcessedQuery
	Local       []domain.NavEntry
	Remote      []domain.DomainGroup
	RemoteState gateway.State
	Favorites   []domain.NavEntry
	Recents     []domain.NavEntry
	// Items is the flat list keyboard navigation indexes.
	Items  []Item
	Cursor int
	// Error is the inline, dismissible remote failure message.
	Error string
	// FocusInput asks the presentation layer to focus the input on its next paint.
	FocusInput bool
}

// Open reports whether the palette is visible.
func (s Snapshot) Open() bool { return s.Status != StatusClosed }

// Selected returns the item under the cursor.
func (s Snapshot) Selected() (Item, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Items) {
		return Item{}, false
	}
	return s.Items[s.Cursor], true
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor > n-1 {
		return n - 1
	}
	return cursor
}

// combine builds the navigable list: remote before local for a query,
// favorites then recents then the full listing otherwise.
func combine(s *Snapshot) []Item {
	favorite := make(map[string]bool, len(s.Favorites))
	for _, e := range s.Favorites {
		favorite[e.Path] = true
	}
	nav := func(kind ItemKind, e domain.NavEntry) Item {
		it := navItem(kind, e)
		it.Favorite = favorite[e.Path]
		return it
	}

	var items []Item
	if s.Query.IsEmpty() {
		for _, e := range s.Favorites {
			items = append(items, nav(KindFavorite, e))
		}
		for _, e := range s.Recents {
			items = append(items, nav(KindRecent, e))
		}
	} else {
		for _, it := range domain.FlattenGroups(s.Remote) {
			items = append(items, remoteItem(it))
		}
	}
	for _, e := range s.Local {
		items = append(items, nav(KindNav, e))
	}
	return items
}
