// Package gateway debounces remote searches per palette session and keeps at
// most one request alive at a time.
package gateway

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/metrics"
)

// Defaults.
const (
	DefaultDebounce     = 220 * time.Millisecond
	DefaultMinTermRunes = 2
)

// State of the session's remote search.
type State string

// Gateway states.
const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateInFlight   State = "in_flight"
	StateResolved   State = "resolved"
	StateFailed     State = "failed"
	StateAborted    State = "aborted"
)

// Pending reports whether a timer or request is outstanding.
func (s State) Pending() bool {
	return s == StateDebouncing || s == StateInFlight
}

// Outcome is the terminal result of one flight.
type Outcome struct {
	Term   string
	State  State // StateResolved or StateFailed
	Groups []domain.DomainGroup
	Err    error

	ctx context.Context
}

// Superseded reports whether a newer Start or CancelAll has retired this flight.
// Consumers check it under the same lock they use to call Start, so a false
// answer means the outcome is still the latest.
func (o Outcome) Superseded() bool {
	return o.ctx != nil && o.ctx.Err() != nil
}

// Items returns the grouped items flattened in display order.
func (o Outcome) Items() []domain.RemoteItem {
	return domain.FlattenGroups(o.Groups)
}

// Callback receives outcomes on the gateway's goroutine, never under the gateway lock.
type Callback func(Outcome)

// Options configures a Gateway.
type Options struct {
	Debounce     time.Duration
	MinTermRunes int
	Logger       *zap.Logger
}

// Gateway owns at most one debounce timer and one cancel func.
type Gateway struct {
	searcher  Searcher
	onOutcome Callback
	debounce  time.Duration
	minRunes  int
	logger    *zap.Logger

	mu    sync.Mutex
	state State
	cur   *flight
}

type flight struct {
	term   string
	ctx    context.Context
	cancel context.CancelFunc
	timer  *time.Timer
}

// New creates an idle gateway.
func New(searcher Searcher, onOutcome Callback, opts Options) *Gateway {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinTermRunes <= 0 {
		opts.MinTermRunes = DefaultMinTermRunes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Gateway{
		searcher:  searcher,
		onOutcome: onOutcome,
		debounce:  opts.Debounce,
		minRunes:  opts.MinTermRunes,
		logger:    opts.Logger,
		state:     StateIdle,
	}
}

// Start retires any pending timer or request and schedules a search for term.
// Terms shorter than the minimum return StateIdle without any network call.
// Start never invokes the callback itself.
func (g *Gateway) Start(term string) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.retire()

	if utf8.RuneCountInString(term) < g.minRunes {
		g.state = StateIdle
		return g.state
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := &flight{term: term, ctx: ctx, cancel: cancel}
	f.timer = time.AfterFunc(g.debounce, func() { g.fire(f) })
	g.cur = f
	g.state = StateDebouncing
	return g.state
}

// CancelAll stops the pending timer and aborts the in-flight request.
func (g *Gateway) CancelAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	pending := g.state.Pending()
	g.retire()
	if pending {
		g.state = StateAborted
	}
}

// State returns the current state.
func (g *Gateway) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// retire stops the timer and cancels the request of the current flight.
// Caller holds g.mu.
func (g *Gateway) retire() {
	f := g.cur
	if f == nil {
		return
	}
	g.cur = nil
	f.timer.Stop()
	f.cancel()
	if g.state.Pending() {
		metrics.DebounceSupersededTotal.Inc()
		g.logger.Debug("remote search superseded", zap.String("term", f.term), zap.String("state", string(g.state)))
	}
}

func (g *Gateway) fire(f *flight) {
	g.mu.Lock()
	if g.cur != f || f.ctx.Err() != nil {
		g.mu.Unlock()
		return
	}
	g.state = StateInFlight
	g.mu.Unlock()

	items, err := g.searcher.Search(f.ctx, f.term)

	g.mu.Lock()
	if g.cur != f || f.ctx.Err() != nil {
		// Retired flights leave no trace.
		g.mu.Unlock()
		return
	}
	if errors.Is(err, domain.ErrAborted) {
		g.state = StateAborted
		g.mu.Unlock()
		return
	}
	out := Outcome{Term: f.term, ctx: f.ctx}
	if err != nil {
		g.state = StateFailed
		out.State = StateFailed
		out.Err = err
	} else {
		g.state = StateResolved
		out.State = StateResolved
		out.Groups = domain.GroupByDomain(items)
	}
	g.mu.Unlock()

	if g.onOutcome != nil {
		g.onOutcome(out)
	}
}
