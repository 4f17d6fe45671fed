package storesearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/storesearch/internal/vocabulary"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "redis" or "memory"
	addrs      []string
	password   string
	standalone bool

	vocabulary vocabulary.Paths

	backendURL   string
	backendToken string
	debounce     time.Duration
	minTermRunes int

	keyPrefix    string
	recentsLimit int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis keeps favorites and recents in a Redis or Valkey instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithStandalone disables cluster topology discovery.
// Use for standalone Valkey/Redis instances (not managed by cluster operator).
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithMemory keeps favorites and recents in process memory. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
		c.addrs = nil
	})
}

// WithVocabulary loads the dictionary, synonyms, menu and access rules from
// files. Empty paths keep the embedded defaults.
func WithVocabulary(p vocabulary.Paths) Option {
	return optionFunc(func(c *clientConfig) {
		c.vocabulary = p
	})
}

// WithBackend enables remote search against baseURL. Without it palettes
// only show local navigation results.
func WithBackend(baseURL, token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.backendURL = baseURL
		c.backendToken = token
	})
}

// WithDebounce sets the quiet period before a remote search fires.
// Default: 220ms.
func WithDebounce(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.debounce = d
	})
}

// WithMinTermRunes sets the shortest query sent to the backend. Default: 2.
func WithMinTermRunes(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minTermRunes = n
	})
}

// WithKeyPrefix namespaces favorites and recents keys.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithRecentsLimit caps each user's recents list. Clamped to [15, 30].
func WithRecentsLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.recentsLimit = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
