package palette

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/metrics"
)

// Manager owns the palette sessions of the HTTP API.
type Manager struct {
	processor  QueryProcessor
	catalog    NavCatalog
	favorites  FavoritesStore
	newGateway GatewayFactory
	logger     *zap.Logger

	// idleTimeout evicts sessions untouched for longer. Zero keeps them forever.
	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(
	processor QueryProcessor,
	catalog NavCatalog,
	favorites FavoritesStore,
	newGateway GatewayFactory,
	logger *zap.Logger,
) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		processor:  processor,
		catalog:    catalog,
		favorites:  favorites,
		newGateway: newGateway,
		logger:     logger,
		sessions:   make(map[string]*Session),
	}
}

// WithIdleTimeout makes the manager evict sessions that were neither changed
// nor looked up for d. Non-positive values disable eviction.
func (m *Manager) WithIdleTimeout(d time.Duration) *Manager {
	m.idleTimeout = max(d, 0)
	return m
}

// Create opens a new session for user, filtered by role.
func (m *Manager) Create(ctx context.Context, user, role string) (*Session, error) {
	if user == "" || role == "" {
		return nil, fmt.Errorf("%w: user and role are required", domain.ErrInvalidQuery)
	}
	m.EvictIdle()

	s := NewSession(uuid.NewString(), user, role, Deps{
		Processor:  m.processor,
		Local:      m.catalog.ForRole(role),
		Favorites:  m.favorites,
		Access:     accessFunc(m.catalog.CanAccess),
		NewGateway: m.newGateway,
		Logger:     m.logger,
	})
	s.Open(ctx)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.PaletteSessionsActive.Set(float64(n))
	m.logger.Debug("palette session created",
		zap.String("session", s.ID()),
		zap.String("user", user),
		zap.String("role", role),
	)
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	s.touch()
	return s, nil
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	s.Close()
	metrics.PaletteSessionsActive.Set(float64(n))
	return nil
}

// CloseAll closes every session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	metrics.PaletteSessionsActive.Set(0)
}

// EvictIdle closes and forgets every session idle for longer than the idle
// timeout. Returns the number of evicted sessions.
func (m *Manager) EvictIdle() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if len(idle) == 0 {
		return 0
	}
	for _, s := range idle {
		s.Close()
	}
	metrics.PaletteSessionsActive.Set(float64(n))
	m.logger.Debug("idle palette sessions evicted",
		zap.Int("evicted", len(idle)),
		zap.Int("remaining", n),
	)
	return len(idle)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (m *Manager) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle()
		}
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type accessFunc func(role, path string) bool

func (f accessFunc) CanAccessPath(role, path string) bool { return f(role, path) }
