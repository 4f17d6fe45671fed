package storesearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/storesearch/internal/access"
	"github.com/kailas-cloud/storesearch/internal/db"
	"github.com/kailas-cloud/storesearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/storesearch/internal/db/redis"
	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/repository/favorites"
	"github.com/kailas-cloud/storesearch/internal/transport/remote"
	"github.com/kailas-cloud/storesearch/internal/usecase/gateway"
	healthuc "github.com/kailas-cloud/storesearch/internal/usecase/health"
	"github.com/kailas-cloud/storesearch/internal/usecase/navindex"
	"github.com/kailas-cloud/storesearch/internal/usecase/palette"
	"github.com/kailas-cloud/storesearch/internal/usecase/query"
	"github.com/kailas-cloud/storesearch/internal/usecase/spell"
	"github.com/kailas-cloud/storesearch/internal/usecase/synonym"
	"github.com/kailas-cloud/storesearch/internal/usecase/tablefilter"
	"github.com/kailas-cloud/storesearch/internal/vocabulary"
)

const (
	driverRedis  = "redis"
	driverMemory = "memory"

	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "storesearch:"
)

// Внутренние интерфейсы для подмены в тестах.
type queryProcessor interface {
	Process(raw string) domain.ProcessedQuery
}

type sessionManager interface {
	Create(ctx context.Context, user, role string) (*palette.Session, error)
	Get(id string) (*palette.Session, error)
	Delete(id string) error
	CloseAll()
}

// Client is the storesearch SDK entry point.
type Client struct {
	store     db.Store
	rules     *access.Rules
	processor queryProcessor
	catalog   *navindex.Catalog
	matcher   *tablefilter.Matcher
	sessions  sessionManager
	healthSvc healthUseCase
	obs       *observer
}

// New loads the vocabulary, connects the favorites store and wires the
// search stack. The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:    driverMemory,
		keyPrefix: defaultKeyPrefix,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	vocab, err := vocabulary.Load(cfg.vocabulary)
	if err != nil {
		return nil, fmt.Errorf("storesearch: %w", err)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("storesearch: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, vocab, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverRedis:
		if len(cfg.addrs) == 0 {
			return nil, errors.New("storesearch: redis address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("storesearch: create redis store: %w", err)
		}
		return s, nil
	case driverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("storesearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, vocab *vocabulary.Bundle, cfg *clientConfig, obs *observer) *Client {
	processor := query.New(spell.New(vocab.Dictionary), synonym.New(vocab.Synonyms))
	catalog := navindex.NewCatalog(vocab.Nav, vocab.Access, nil)
	favStore := favorites.New(store, cfg.keyPrefix, cfg.recentsLimit)

	// Without a backend the palette still merges, just with no remote rows.
	var searcher gateway.Searcher = offlineSearcher{}
	var backend healthuc.BackendChecker
	if cfg.backendURL != "" {
		rc := remote.NewClient(&remote.Config{BaseURL: cfg.backendURL, Token: cfg.backendToken})
		searcher = rc
		backend = rc
	}
	gwOpts := gateway.Options{Debounce: cfg.debounce, MinTermRunes: cfg.minTermRunes}
	newGateway := func(cb gateway.Callback) palette.RemoteGateway {
		return gateway.New(searcher, cb, gwOpts)
	}

	return &Client{
		store:     store,
		rules:     vocab.Access,
		processor: processor,
		catalog:   catalog,
		matcher:   tablefilter.NewMatcher(vocab.Synonyms),
		sessions:  palette.NewManager(processor, catalog, favStore, newGateway, nil),
		healthSvc: healthuc.New(store, backend),
		obs:       obs,
	}
}

// offlineSearcher stands in for the backend when none is configured.
type offlineSearcher struct{}

func (offlineSearcher) Search(context.Context, string) ([]domain.RemoteItem, error) { return nil, nil }

// Close aborts every palette's pending search and releases the store.
func (c *Client) Close() {
	if c.sessions != nil {
		c.sessions.CloseAll()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks favorites store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Roles lists the roles defined by the access rules.
func (c *Client) Roles() []string { return c.rules.RoleNames() }

// DefaultRole is the role used for unknown or empty role names.
func (c *Client) DefaultRole() string { return c.rules.DefaultRole }

// CanAccess reports whether role may open path.
func (c *Client) CanAccess(role, path string) bool {
	return c.catalog.CanAccess(c.role(role), path)
}

// Process runs normalization, spelling correction and synonym expansion.
func (c *Client) Process(raw string) Query {
	start := time.Now()
	q := c.processor.Process(raw)
	c.obs.observe("process", start, nil)
	return queryFromDomain(q)
}

// Nav returns the menu entries visible to role that match raw. An empty
// query lists the first entries of the menu.
func (c *Client) Nav(role, raw string) []NavEntry {
	start := time.Now()
	entries := c.catalog.ForRole(c.role(role)).Search(c.processor.Process(raw))
	c.obs.observeResults("nav", start, len(entries))
	return navEntriesFromDomain(entries)
}

// Filter keeps the rows that contain every token of raw, allowing typos and
// synonyms. Order is preserved.
func (c *Client) Filter(rows []string, raw string) []string {
	return FilterRows(c, rows, func(s string) string { return s }, raw)
}

// FilterRows is Filter over arbitrary rows; text returns the searchable text of a row.
func FilterRows[T any](c *Client, rows []T, text func(T) string, raw string) []T {
	start := time.Now()
	out := tablefilter.Filter(c.matcher, rows, text, c.processor.Process(raw))
	c.obs.observeResults("filter", start, len(out))
	return out
}

// OpenPalette creates an open palette for user. An empty role selects the default role.
func (c *Client) OpenPalette(ctx context.Context, user, role string) (p *Palette, err error) {
	start := time.Now()
	defer func() { c.obs.observe("open_palette", start, err) }()

	p, err = c.sessions.Create(ctx, user, c.role(role))
	if err != nil {
		return nil, fmt.Errorf("open palette: %w", err)
	}
	return p, nil
}

// Palette returns a palette created by OpenPalette.
func (c *Client) Palette(id string) (*Palette, error) {
	p, err := c.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", id, err)
	}
	return p, nil
}

// ClosePalette closes and forgets a palette.
func (c *Client) ClosePalette(id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("close_palette", start, err) }()

	if err = c.sessions.Delete(id); err != nil {
		return fmt.Errorf("close palette %s: %w", id, err)
	}
	return nil
}

func (c *Client) role(role string) string {
	if role == "" {
		return c.rules.DefaultRole
	}
	return role
}
