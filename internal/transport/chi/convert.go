package chi

import (
	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/domain/route"
	"github.com/kailas-cloud/storesearch/internal/usecase/palette"
)

func queryToAPI(q domain.ProcessedQuery) ProcessedQuery {
	return ProcessedQuery{
		Raw:        q.Raw,
		Normalized: q.Normalized,
		Final:      q.Final,
		Suggestion: q.Suggestion,
		Expanded:   q.Expanded,
	}
}

func navEntryToAPI(e domain.NavEntry) NavEntry {
	return NavEntry{
		ID:          e.ID,
		Title:       e.Title,
		Path:        e.Path,
		Icon:        e.Icon,
		ParentTitle: e.ParentTitle,
	}
}

// navEntriesToAPI never returns nil so that empty sections encode as [].
func navEntriesToAPI(entries []domain.NavEntry) []NavEntry {
	out := make([]NavEntry, len(entries))
	for i, e := range entries {
		out[i] = navEntryToAPI(e)
	}
	return out
}

func remoteItemToAPI(it domain.RemoteItem) RemoteItem {
	return RemoteItem{
		ID:       it.ID,
		Domain:   string(it.Domain),
		Title:    it.Title,
		Subtitle: it.Subtitle,
		TitleHL:  it.TitleHL,
		Snippet:  it.Snippet,
	}
}

func groupsToAPI(groups []domain.DomainGroup) []DomainGroup {
	out := make([]DomainGroup, len(groups))
	for i, g := range groups {
		items := make([]RemoteItem, len(g.Items))
		for j, it := range g.Items {
			items[j] = remoteItemToAPI(it)
		}
		out[i] = DomainGroup{Domain: string(g.Domain), Items: items}
	}
	return out
}

func actionsToAPI(actions []route.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

func itemToAPI(it palette.Item) PaletteItem {
	out := PaletteItem{
		Kind:     string(it.Kind),
		Key:      it.Key(),
		Title:    it.Title(),
		Actions:  actionsToAPI(it.Actions),
		Favorite: it.Favorite,
	}
	if it.Nav != nil {
		e := navEntryToAPI(*it.Nav)
		out.Nav = &e
	}
	if it.Remote != nil {
		r := remoteItemToAPI(*it.Remote)
		out.Remote = &r
	}
	return out
}

func snapshotToAPI(id string, s palette.Snapshot) Snapshot {
	items := make([]PaletteItem, len(s.Items))
	for i, it := range s.Items {
		items[i] = itemToAPI(it)
	}
	return Snapshot{
		ID:          id,
		Status:      string(s.Status),
		Query:       queryToAPI(s.Query),
		RemoteState: string(s.RemoteState),
		Local:       navEntriesToAPI(s.Local),
		Remote:      groupsToAPI(s.Remote),
		Favorites:   navEntriesToAPI(s.Favorites),
		Recents:     navEntriesToAPI(s.Recents),
		Items:       items,
		Cursor:      s.Cursor,
		Error:       s.Error,
		FocusInput:  s.FocusInput,
	}
}

func activationToAPI(a palette.Activation) Activation {
	out := Activation{
		Action: string(a.Action),
		Path:   a.Path,
		Item:   itemToAPI(a.Item),
	}
	if a.Action == route.Favorite {
		fav := a.Favorite
		out.Favorite = &fav
	}
	return out
}
