package palette

import (
	"slices"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/domain/route"
)

// ItemKind tells which section of the palette an item comes from.
type ItemKind string

// Item kinds.
const (
	KindRemote   ItemKind = "remote"
	KindNav      ItemKind = "nav"
	KindFavorite ItemKind = "favorite"
	KindRecent   ItemKind = "recent"
)

// Item is one selectable row. Exactly one of Nav and Remote is set.
type Item struct {
	Kind    ItemKind
	Nav     *domain.NavEntry
	Remote  *domain.RemoteItem
	Actions []route.Action
	// Favorite marks nav rows whose path is among the user's favorites.
	Favorite bool
}

func navItem(kind ItemKind, e domain.NavEntry) Item {
	return Item{Kind: kind, Nav: &e, Actions: route.NavActions()}
}

func remoteItem(it domain.RemoteItem) Item {
	return Item{Kind: KindRemote, Remote: &it, Actions: route.RemoteActions(it.Domain)}
}

// Title returns the display title.
func (i Item) Title() string {
	if i.Remote != nil {
		return i.Remote.Label()
	}
	if i.Nav != nil {
		return i.Nav.Title
	}
	return ""
}

// Key identifies the row inside one snapshot's section.
func (i Item) Key() string {
	if i.Remote != nil {
		return string(i.Kind) + ":" + i.Remote.Key()
	}
	if i.Nav != nil {
		return string(i.Kind) + ":" + i.Nav.Path
	}
	return string(i.Kind)
}

// Supports reports whether action is offered on this row.
func (i Item) Supports(action route.Action) bool {
	return slices.Contains(i.Actions, action)
}

// Target returns the navigation target of action on this row.
func (i Item) Target(term string, action route.Action) (string, error) {
	if !i.Supports(action) {
		return "", domain.ErrUnknownAction
	}
	if i.Remote != nil {
		return route.ForAction(*i.Remote, term, action)
	}
	if i.Nav != nil && action == route.Open {
		return i.Nav.Path, nil
	}
	return "", domain.ErrUnknownAction
}

// Activation is the result of running a row's primary or quick action.
type Activation struct {
	Item   Item
	Action route.Action
	// Path is empty for actions that do not navigate (favorite).
	Path string
	// Favorite is the new favorite state after a favorite toggle.
	Favorite bool
}
