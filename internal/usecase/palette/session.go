// Package palette is the command-palette core: it merges local navigation
// matches with debounced remote results into one keyboard-navigable list.
package palette

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/domain/route"
	"github.com/kailas-cloud/storesearch/internal/metrics"
	"github.com/kailas-cloud/storesearch/internal/usecase/gateway"
)

// Deps are the collaborators of one session.
type Deps struct {
	Processor  QueryProcessor
	Local      LocalSearcher
	Favorites  FavoritesStore
	Access     AccessChecker
	NewGateway GatewayFactory
	Logger     *zap.Logger
}

// Session is one user's palette. Every mutation replaces the snapshot
// under mu; the gateway is only driven while mu is held.
type Session struct {
	id   string
	user string
	role string

	processor QueryProcessor
	local     LocalSearcher
	favorites FavoritesStore
	access    AccessChecker
	gw        RemoteGateway
	logger    *zap.Logger

	mu      sync.Mutex
	snap    Snapshot
	updates chan Snapshot

	// active is the unix-nano time of the last mutation or lookup.
	active atomic.Int64
}

// NewSession creates a closed session.
func NewSession(id, user, role string, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:        id,
		user:      user,
		role:      role,
		processor: deps.Processor,
		local:     deps.Local,
		favorites: deps.Favorites,
		access:    deps.Access,
		logger:    logger.With(zap.String("session", id)),
		snap:      Snapshot{Status: StatusClosed, RemoteState: gateway.StateIdle},
		updates:   make(chan Snapshot, 1),
	}
	s.gw = deps.NewGateway(s.onOutcome)
	s.touch()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// User returns the owner of the session.
func (s *Session) User() string { return s.user }

// Role returns the role the session is filtered by.
func (s *Session) Role() string { return s.role }

// Snapshot returns the current view state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Updates delivers the latest snapshot after each mutation. Slow readers only
// ever see the most recent one.
func (s *Session) Updates() <-chan Snapshot { return s.updates }

// Open shows the palette with an empty query: favorites, recents and the
// start of the navigation listing. Reopening resets the query and cursor.
func (s *Session) Open(ctx context.Context) Snapshot {
	favorites, recents := s.loadPersonal(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gw.CancelAll()
	q := s.processor.Process("")
	next := Snapshot{
		Status:      StatusOpenEmpty,
		Query:       q,
		Local:       s.local.Search(q),
		RemoteState: gateway.StateIdle,
		Favorites:   favorites,
		Recents:     recents,
		FocusInput:  true,
	}
	return s.commit(next)
}

// Keystroke recomputes the processed query and local results synchronously
// and hands the final query to the gateway.
func (s *Session) Keystroke(raw string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.snap.Open() {
		return s.snap, domain.ErrSessionClosed
	}
	metrics.PaletteKeystrokesTotal.Inc()

	q := s.processor.Process(raw)
	next := Snapshot{
		Query:     q,
		Local:     s.local.Search(q),
		Favorites: s.snap.Favorites,
		Recents:   s.snap.Recents,
	}

	if q.IsEmpty() {
		s.gw.CancelAll()
		next.Status = StatusOpenEmpty
		next.RemoteState = gateway.StateIdle
		return s.commit(next), nil
	}

	next.RemoteState = s.gw.Start(q.Final)
	if next.RemoteState.Pending() {
		next.Status = StatusLocalOnly
	} else {
		// Too short for the backend: the remote set is known to be empty.
		next.Status = StatusMerged
	}
	return s.commit(next), nil
}

// HandleKey applies the keyboard contract. Enter returns the activation of
// the selected row; Escape closes the palette.
func (s *Session) HandleKey(ctx context.Context, key string) (Snapshot, *Activation, error) {
	switch key {
	case KeyArrowDown, KeyArrowUp:
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.snap.Open() {
			return s.snap, nil, domain.ErrSessionClosed
		}
		next := s.snap
		if key == KeyArrowDown {
			next.Cursor++
		} else {
			next.Cursor--
		}
		next.FocusInput = false
		return s.commit(next), nil, nil
	case KeyEnter:
		s.mu.Lock()
		item, term, err := s.itemAt(s.snap.Cursor)
		s.mu.Unlock()
		if err != nil {
			return s.Snapshot(), nil, err
		}
		act, err := s.activate(ctx, item, term)
		if err != nil {
			return s.Snapshot(), nil, err
		}
		return s.Snapshot(), &act, nil
	case KeyEscape:
		return s.Close(), nil, nil
	}
	return s.Snapshot(), nil, fmt.Errorf("%w: key %q", domain.ErrInvalidQuery, key)
}

// Activate runs the primary action of row i: navigation entries open their
// path and enter recents, remote rows open their default target. The palette
// closes afterwards.
func (s *Session) Activate(ctx context.Context, i int) (Activation, error) {
	s.mu.Lock()
	item, term, err := s.itemAt(i)
	s.mu.Unlock()
	if err != nil {
		return Activation{}, err
	}
	return s.activate(ctx, item, term)
}

// activate opens item, resolved by the caller from a single snapshot.
func (s *Session) activate(ctx context.Context, item Item, term string) (Activation, error) {
	path, err := item.Target(term, route.Open)
	if err != nil {
		return Activation{}, err
	}
	if item.Nav != nil {
		if !s.access.CanAccessPath(s.role, item.Nav.Path) {
			return Activation{}, fmt.Errorf("%w: %s", domain.ErrNoSelection, item.Nav.Path)
		}
		if err := s.favorites.PushRecent(ctx, s.user, *item.Nav); err != nil {
			s.logger.Warn("push recent failed", zap.String("path", item.Nav.Path), zap.Error(err))
		}
	}
	metrics.PaletteActivationsTotal.WithLabelValues(string(item.Kind), string(route.Open)).Inc()

	s.Close()
	return Activation{Item: item, Action: route.Open, Path: path}, nil
}

// QuickAction runs a secondary action of row i. It never performs the
// primary activation: the palette stays open and recents are untouched.
func (s *Session) QuickAction(ctx context.Context, i int, action route.Action) (Activation, error) {
	s.mu.Lock()
	item, term, err := s.itemAt(i)
	s.mu.Unlock()
	if err != nil {
		return Activation{}, err
	}
	if !item.Supports(action) {
		return Activation{}, fmt.Errorf("%w: %q on %s row", domain.ErrUnknownAction, action, item.Kind)
	}

	act := Activation{Item: item, Action: action}
	if action == route.Favorite {
		fav, err := s.favorites.ToggleFavorite(ctx, s.user, *item.Nav)
		if err != nil {
			return Activation{}, fmt.Errorf("toggle favorite: %w", err)
		}
		act.Favorite = fav
		s.refreshFavorites(ctx)
	} else {
		if act.Path, err = item.Target(term, action); err != nil {
			return Activation{}, err
		}
	}
	metrics.PaletteActivationsTotal.WithLabelValues(string(item.Kind), string(action)).Inc()
	return act, nil
}

// DismissError clears the inline remote failure message.
func (s *Session) DismissError() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Error == "" {
		return s.snap
	}
	next := s.snap
	next.Error = ""
	return s.commit(next)
}

// Close hides the palette, cancelling the pending timer and any in-flight
// request. Safe to call in any state.
func (s *Session) Close() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gw.CancelAll()
	if !s.snap.Open() {
		return s.snap
	}
	return s.commit(Snapshot{Status: StatusClosed, RemoteState: gateway.StateIdle})
}

// onOutcome applies a finished remote search unless a newer keystroke or a
// close has retired it. Aborted flights never reach this point.
func (s *Session) onOutcome(out gateway.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if out.Superseded() || !s.snap.Open() || s.snap.Query.IsEmpty() {
		return
	}

	next := s.snap
	next.Status = StatusMerged
	next.RemoteState = out.State
	next.FocusInput = false
	if out.Err != nil {
		next.Remote = nil
		next.Error = domain.UserMessage(out.Err)
	} else {
		next.Remote = out.Groups
		next.Error = ""
	}
	s.commit(next)
}

// commit finalizes next as the current snapshot. Caller holds s.mu.
func (s *Session) commit(next Snapshot) Snapshot {
	if next.Open() {
		next.Items = combine(&next)
		next.Cursor = clampCursor(next.Cursor, len(next.Items))
	}
	s.snap = next
	s.touch()

	select {
	case <-s.updates:
	default:
	}
	s.updates <- next
	return next
}

func (s *Session) touch() { s.active.Store(time.Now().UnixNano()) }

// LastActive returns when the session was last changed or looked up.
func (s *Session) LastActive() time.Time { return time.Unix(0, s.active.Load()) }

// itemAt returns row i of the current list. Caller holds s.mu.
func (s *Session) itemAt(i int) (Item, string, error) {
	if !s.snap.Open() {
		return Item{}, "", domain.ErrSessionClosed
	}
	if i < 0 || i >= len(s.snap.Items) {
		return Item{}, "", fmt.Errorf("%w: index %d of %d", domain.ErrNoSelection, i, len(s.snap.Items))
	}
	return s.snap.Items[i], s.snap.Query.Final, nil
}

// loadPersonal fetches favorites and recents the role may see. Store failures
// degrade to empty sections.
func (s *Session) loadPersonal(ctx context.Context) (favorites, recents []domain.NavEntry) {
	favs, err := s.favorites.Favorites(ctx, s.user)
	if err != nil {
		s.logger.Warn("load favorites failed", zap.Error(err))
	}
	recs, err := s.favorites.Recents(ctx, s.user)
	if err != nil {
		s.logger.Warn("load recents failed", zap.Error(err))
	}
	return s.visible(favs), s.visible(recs)
}

func (s *Session) visible(entries []domain.NavEntry) []domain.NavEntry {
	out := make([]domain.NavEntry, 0, len(entries))
	for _, e := range entries {
		if s.access.CanAccessPath(s.role, e.Path) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Session) refreshFavorites(ctx context.Context) {
	favorites, recents := s.loadPersonal(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.snap.Open() {
		return
	}
	next := s.snap
	next.Favorites = favorites
	next.Recents = recents
	s.commit(next)
}
