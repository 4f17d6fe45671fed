package palette

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/domain/route"
	"github.com/kailas-cloud/storesearch/internal/textnorm"
	"github.com/kailas-cloud/storesearch/internal/usecase/gateway"
	"github.com/kailas-cloud/storesearch/internal/usecase/navindex"
)

// --- Mocks ---

type normalizeOnly struct{}

func (normalizeOnly) Process(raw string) domain.ProcessedQuery {
	n := textnorm.Normalize(raw)
	return domain.ProcessedQuery{Raw: raw, Normalized: n, Final: n, Expanded: n}
}

type denyPaths map[string]bool

func (d denyPaths) CanAccessPath(_, path string) bool { return !d[path] }

func (denyPaths) Resolve(role string) string { return role }

type fakeStore struct {
	mu        sync.Mutex
	favorites []domain.NavEntry
	recents   []domain.NavEntry
	err       error
}

func (f *fakeStore) Favorites(_ context.Context, _ string) ([]domain.NavEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.NavEntry(nil), f.favorites...), f.err
}

func (f *fakeStore) Recents(_ context.Context, _ string) ([]domain.NavEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.NavEntry(nil), f.recents...), f.err
}

func (f *fakeStore) ToggleFavorite(_ context.Context, _ string, entry domain.NavEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.favorites {
		if e.Path == entry.Path {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return false, nil
		}
	}
	f.favorites = append([]domain.NavEntry{entry}, f.favorites...)
	return true, nil
}

func (f *fakeStore) PushRecent(_ context.Context, _ string, entry domain.NavEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recents = append([]domain.NavEntry{entry}, f.recents...)
	return nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]domain.RemoteItem
	errs    map[string]error
	block   map[string]bool
	aborted chan string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		results: map[string][]domain.RemoteItem{},
		errs:    map[string]error{},
		block:   map[string]bool{},
		aborted: make(chan string, 8),
	}
}

func (f *fakeSearcher) Search(ctx context.Context, term string) ([]domain.RemoteItem, error) {
	f.mu.Lock()
	f.calls = append(f.calls, term)
	block := f.block[term]
	items, err := f.results[term], f.errs[term]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		f.aborted <- term
		return nil, domain.ErrAborted
	}
	return items, err
}

func (f *fakeSearcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func testTree() *domain.NavTree {
	return &domain.NavTree{Roots: []domain.NavNode{
		{Title: "داشبورد", Path: "/"},
		{Title: "فروش", Children: []domain.NavNode{
			{Title: "فاکتورها", Path: "/invoices"},
			{Title: "فروش اقساطی", Path: "/installment-sales"},
		}},
		{Title: "تعمیرات", Path: "/repairs"},
		{Title: "کاربران", Path: "/admin/users"},
	}}
}

type fixture struct {
	session  *Session
	store    *fakeStore
	searcher *fakeSearcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	access := denyPaths{"/admin/users": true}
	store := &fakeStore{
		favorites: []domain.NavEntry{
			{ID: "/repairs", Title: "تعمیرات", Path: "/repairs"},
			{ID: "/admin/users", Title: "کاربران", Path: "/admin/users"},
		},
		recents: []domain.NavEntry{
			{ID: "/invoices", Title: "فاکتورها", Path: "/invoices"},
		},
	}
	searcher := newFakeSearcher()
	catalog := navindex.NewCatalog(testTree(), access, nil)

	s := NewSession("s1", "u1", "cashier", Deps{
		Processor: normalizeOnly{},
		Local:     catalog.ForRole("cashier"),
		Favorites: store,
		Access:    access,
		NewGateway: func(cb gateway.Callback) RemoteGateway {
			return gateway.New(searcher, cb, gateway.Options{Debounce: 10 * time.Millisecond})
		},
	})
	t.Cleanup(func() { s.Close() })
	return &fixture{session: s, store: store, searcher: searcher}
}

func waitFor(t *testing.T, s *Session, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := s.Snapshot()
		if cond(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out; last snapshot: %+v", snap)
			return Snapshot{}
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func kinds(items []Item) []ItemKind {
	out := make([]ItemKind, len(items))
	for i, it := range items {
		out[i] = it.Kind
	}
	return out
}

// --- Tests ---

func TestOpen_EmptyListing(t *testing.T) {
	f := newFixture(t)
	snap := f.session.Open(context.Background())

	if snap.Status != StatusOpenEmpty || !snap.FocusInput || snap.Cursor != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(snap.Favorites) != 1 || snap.Favorites[0].Path != "/repairs" {
		t.Errorf("favorites must be access-filtered, got %+v", snap.Favorites)
	}

	want := []ItemKind{KindFavorite, KindRecent, KindNav, KindNav, KindNav, KindNav}
	got := kinds(snap.Items)
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("items = %v, want %v", got, want)
		}
	}
	for _, it := range snap.Items {
		if it.Nav.Path == "/admin/users" {
			t.Error("hidden path listed")
		}
	}
}

func TestKeystroke_RemoteBeforeLocal(t *testing.T) {
	f := newFixture(t)
	f.searcher.results["فاکتور"] = []domain.RemoteItem{{ID: "17", Domain: domain.DomainInvoice, Title: "فاکتور ۱۷"}}
	f.session.Open(context.Background())

	snap, err := f.session.Keystroke("فاكتور")
	if err != nil {
		t.Fatalf("Keystroke: %v", err)
	}
	if snap.Status != StatusLocalOnly || snap.RemoteState != gateway.StateDebouncing {
		t.Errorf("expected local-only while remote pending, got %s/%s", snap.Status, snap.RemoteState)
	}
	if snap.Query.Final != "فاکتور" {
		t.Errorf("query not normalized: %q", snap.Query.Final)
	}
	if len(snap.Items) != 1 || snap.Items[0].Kind != KindNav {
		t.Fatalf("local results must be immediate, got %v", kinds(snap.Items))
	}

	merged := waitFor(t, f.session, func(s Snapshot) bool { return s.Status == StatusMerged })
	got := kinds(merged.Items)
	if len(got) != 2 || got[0] != KindRemote || got[1] != KindNav {
		t.Fatalf("expected remote then nav, got %v", got)
	}
	if merged.RemoteState != gateway.StateResolved {
		t.Errorf("expected resolved, got %s", merged.RemoteState)
	}
}

func TestKeystroke_ShortTermSkipsRemote(t *testing.T) {
	f := newFixture(t)
	f.session.Open(context.Background())

	snap, _ := f.session.Keystroke("ف")
	if snap.Status != StatusMerged || snap.RemoteState != gateway.StateIdle {
		t.Errorf("unexpected state %s/%s", snap.Status, snap.RemoteState)
	}
	time.Sleep(50 * time.Millisecond)
	if calls := f.searcher.Calls(); len(calls) != 0 {
		t.Errorf("short term reached the network: %v", calls)
	}
}

func TestKeystroke_EmptyQueryRestoresListing(t *testing.T) {
	f := newFixture(t)
	f.session.Open(context.Background())
	f.session.Keystroke("تعمیر")

	snap, _ := f.session.Keystroke("  ")
	if snap.Status != StatusOpenEmpty {
		t.Fatalf("expected open_empty, got %s", snap.Status)
	}
	if snap.Items[0].Kind != KindFavorite {
		t.Errorf("expected favorites first, got %v", kinds(snap.Items))
	}
}

func TestKeystroke_NewQueryRetiresInFlight(t *testing.T) {
	f := newFixture(t)
	f.searcher.block["abc"] = true
	f.searcher.results["abcd"] = []domain.RemoteItem{{ID: "c1", Domain: domain.DomainCustomer, Title: "abcd"}}
	f.session.Open(context.Background())

	f.session.Keystroke("abc")
	waitFor(t, f.session, func(Snapshot) bool { return len(f.searcher.Calls()) == 1 })
	f.session.Keystroke("abcd")

	select {
	case term := <-f.searcher.aborted:
		if term != "abc" {
			t.Errorf("unexpected aborted term %q", term)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not aborted")
	}

	merged := waitFor(t, f.session, func(s Snapshot) bool { return s.Status == StatusMerged })
	if merged.Query.Final != "abcd" || len(merged.Remote) != 1 {
		t.Fatalf("unexpected merged snapshot: %+v", merged)
	}
	if merged.Error != "" {
		t.Errorf("abort must not surface an error, got %q", merged.Error)
	}
}

func TestCursor_ClampsWithoutWrap(t *testing.T) {
	f := newFixture(t)
	snap := f.session.Open(context.Background())
	n := len(snap.Items)

	snap, _, _ = f.session.HandleKey(context.Background(), KeyArrowUp)
	if snap.Cursor != 0 {
		t.Errorf("ArrowUp at top must stay 0, got %d", snap.Cursor)
	}
	for i := 0; i < n+3; i++ {
		snap, _, _ = f.session.HandleKey(context.Background(), KeyArrowDown)
	}
	if snap.Cursor != n-1 {
		t.Errorf("ArrowDown must clamp at %d, got %d", n-1, snap.Cursor)
	}
	if snap.FocusInput {
		t.Error("focus request must be consumed after the first interaction")
	}
}

func TestCursor_ReclampedWhenListShrinks(t *testing.T) {
	f := newFixture(t)
	f.store.favorites = nil
	f.store.recents = nil
	snap := f.session.Open(context.Background())
	last := len(snap.Items) - 1
	for i := 0; i < last; i++ {
		f.session.HandleKey(context.Background(), KeyArrowDown)
	}

	// Favoriting the last row prepends a favorite; unfavoriting shrinks back.
	if _, err := f.session.QuickAction(context.Background(), last, route.Favorite); err != nil {
		t.Fatalf("QuickAction: %v", err)
	}
	grown := f.session.Snapshot()
	if len(grown.Items) != last+2 {
		t.Fatalf("expected a favorite row, got %d items", len(grown.Items))
	}
	for i := 0; i < 5; i++ {
		f.session.HandleKey(context.Background(), KeyArrowDown)
	}
	if _, err := f.session.QuickAction(context.Background(), 0, route.Favorite); err != nil {
		t.Fatalf("QuickAction: %v", err)
	}
	shrunk := f.session.Snapshot()
	if shrunk.Cursor != len(shrunk.Items)-1 {
		t.Errorf("cursor %d past end of %d items", shrunk.Cursor, len(shrunk.Items))
	}
}

func TestEnter_NavEntryNavigatesAndRecords(t *testing.T) {
	f := newFixture(t)
	f.session.Open(context.Background())
	f.session.Keystroke("اقساط")

	snap, act, err := f.session.HandleKey(context.Background(), KeyEnter)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if act == nil || act.Path != "/installment-sales" {
		t.Fatalf("unexpected activation %+v", act)
	}
	if snap.Status != StatusClosed {
		t.Errorf("palette must close after activation, got %s", snap.Status)
	}
	if f.store.recents[0].Path != "/installment-sales" {
		t.Errorf("activation must enter recents, got %+v", f.store.recents)
	}
}

func TestEnter_ResolvesRowFromOneSnapshot(t *testing.T) {
	access := denyPaths{"/admin/users": true}
	catalog := navindex.NewCatalog(testTree(), access, nil)
	s := NewSession("s2", "u1", "cashier", Deps{
		Processor:  normalizeOnly{},
		Local:      catalog.ForRole("cashier"),
		Favorites:  &fakeStore{},
		Access:     access,
		NewGateway: func(gateway.Callback) RemoteGateway { return &idleGateway{} },
	})

	var customers []domain.RemoteItem
	for i := 0; i < 5; i++ {
		customers = append(customers, domain.RemoteItem{ID: fmt.Sprint(i), Domain: domain.DomainCustomer, Title: "c"})
	}
	grown := gateway.Outcome{
		State:  gateway.StateResolved,
		Groups: []domain.DomainGroup{{Domain: domain.DomainCustomer, Items: customers}},
	}
	shrunk := gateway.Outcome{State: gateway.StateResolved}

	for round := 0; round < 50; round++ {
		s.Open(context.Background())
		local, _ := s.Keystroke("تعمیرات")
		if len(local.Items) == 0 {
			t.Fatal("expected a local row")
		}
		want := local.Items[len(local.Items)-1].Key()

		s.onOutcome(grown)
		for i := 0; i < len(s.Snapshot().Items)-1; i++ {
			s.HandleKey(context.Background(), KeyArrowDown)
		}

		// Remote rows vanish while Enter is pressed on the last row.
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.onOutcome(shrunk)
		}()
		_, act, err := s.HandleKey(context.Background(), KeyEnter)
		<-done

		if err != nil {
			t.Fatalf("round %d: Enter: %v", round, err)
		}
		if got := act.Item.Key(); got != want {
			t.Fatalf("round %d: activated %q, want %q", round, got, want)
		}
	}
}

func TestCombine_MarksFavoriteRows(t *testing.T) {
	f := newFixture(t)
	snap := f.session.Open(context.Background())

	fav := map[string]bool{}
	for _, it := range snap.Items {
		if it.Nav == nil {
			t.Fatalf("unexpected remote row %+v", it)
		}
		if it.Favorite {
			fav[string(it.Kind)+":"+it.Nav.Path] = true
		}
	}
	for _, key := range []string{"favorite:/repairs", "nav:/repairs"} {
		if !fav[key] {
			t.Errorf("%s must be marked favorite", key)
		}
	}
	if fav["recent:/invoices"] || fav["nav:/invoices"] {
		t.Error("/invoices is not a favorite")
	}

	// Toggling refreshes the flag on every row of the path.
	var idx int
	for i, it := range snap.Items {
		if it.Kind == KindNav && it.Nav.Path == "/invoices" {
			idx = i
		}
	}
	if _, err := f.session.QuickAction(context.Background(), idx, route.Favorite); err != nil {
		t.Fatalf("QuickAction: %v", err)
	}
	for _, it := range f.session.Snapshot().Items {
		if it.Nav != nil && it.Nav.Path == "/invoices" && !it.Favorite {
			t.Errorf("%s row not marked after toggle", it.Kind)
		}
	}
}

func TestActivate_RemoteDefaultTarget(t *testing.T) {
	f := newFixture(t)
	f.searcher.results["محصول"] = []domain.RemoteItem{{ID: "p1", Domain: domain.DomainProduct, Title: "شارژر"}}
	f.session.Open(context.Background())
	f.session.Keystroke("محصول")
	waitFor(t, f.session, func(s Snapshot) bool { return s.Status == StatusMerged })

	act, err := f.session.Activate(context.Background(), 0)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if act.Path != "/products?q=%D9%85%D8%AD%D8%B5%D9%88%D9%84" {
		t.Errorf("unexpected path %q", act.Path)
	}
	if len(f.store.recents) != 1 {
		t.Error("remote rows must not enter recents")
	}
}

func TestQuickAction_DoesNotActivate(t *testing.T) {
	f := newFixture(t)
	f.searcher.results["فاکتور"] = []domain.RemoteItem{{ID: "17", Domain: domain.DomainInvoice}}
	f.session.Open(context.Background())
	f.session.Keystroke("فاکتور")
	waitFor(t, f.session, func(s Snapshot) bool { return s.Status == StatusMerged })

	act, err := f.session.QuickAction(context.Background(), 0, route.Print)
	if err != nil {
		t.Fatalf("QuickAction: %v", err)
	}
	if act.Path != "/invoices/17?autoPrint=1" {
		t.Errorf("unexpected path %q", act.Path)
	}
	if f.session.Snapshot().Status != StatusMerged {
		t.Error("quick action must not close the palette")
	}
	if len(f.store.recents) != 1 {
		t.Error("quick action must not record recents")
	}

	if _, err := f.session.QuickAction(context.Background(), 0, route.PayNext); !errors.Is(err, domain.ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := f.session.QuickAction(context.Background(), 99, route.Open); !errors.Is(err, domain.ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
}

func TestRemoteFailure_InlineDismissibleError(t *testing.T) {
	f := newFixture(t)
	f.searcher.errs["خطا"] = domain.NewSearchError(500, "سرویس در دسترس نیست")
	f.session.Open(context.Background())
	f.session.Keystroke("خطا")

	snap := waitFor(t, f.session, func(s Snapshot) bool { return s.Error != "" })
	if snap.Error != "سرویس در دسترس نیست" || snap.Remote != nil {
		t.Fatalf("unexpected failure snapshot: %+v", snap)
	}
	if snap.RemoteState != gateway.StateFailed {
		t.Errorf("expected failed, got %s", snap.RemoteState)
	}

	if got := f.session.DismissError(); got.Error != "" || !got.Open() {
		t.Errorf("dismiss must clear the message and keep the palette open: %+v", got)
	}
}

func TestClose_CancelsInFlight(t *testing.T) {
	f := newFixture(t)
	f.searcher.block["abc"] = true
	f.session.Open(context.Background())
	f.session.Keystroke("abc")
	waitFor(t, f.session, func(Snapshot) bool { return len(f.searcher.Calls()) == 1 })

	snap, _, _ := f.session.HandleKey(context.Background(), KeyEscape)
	if snap.Status != StatusClosed || len(snap.Items) != 0 {
		t.Fatalf("unexpected snapshot after Escape: %+v", snap)
	}

	select {
	case <-f.searcher.aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("close must abort the in-flight request")
	}
	time.Sleep(30 * time.Millisecond)
	if got := f.session.Snapshot(); got.Status != StatusClosed || got.Error != "" {
		t.Errorf("aborted request mutated state: %+v", got)
	}

	if _, err := f.session.Keystroke("x"); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestUpdates_DeliversLatest(t *testing.T) {
	f := newFixture(t)
	f.session.Open(context.Background())
	f.session.Keystroke("ف")
	f.session.Keystroke("فا")
	f.session.Close()

	select {
	case snap := <-f.session.Updates():
		if snap.Status != StatusClosed {
			t.Errorf("expected only the latest snapshot, got %s", snap.Status)
		}
	default:
		t.Fatal("no snapshot published")
	}
}

func TestClampCursor(t *testing.T) {
	tests := []struct{ cursor, n, want int }{
		{0, 0, 0}, {5, 0, 0}, {-1, 3, 0}, {2, 3, 2}, {3, 3, 2}, {9, 1, 0},
	}
	for _, tc := range tests {
		if got := clampCursor(tc.cursor, tc.n); got != tc.want {
			t.Errorf("clampCursor(%d, %d) = %d, want %d", tc.cursor, tc.n, got, tc.want)
		}
	}
}
