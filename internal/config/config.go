package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Favorites store drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds the storesearch configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Auth         AuthConfig         `yaml:"auth"`
	RemoteSearch RemoteSearchConfig `yaml:"remote_search"`
	Database     DatabaseConfig     `yaml:"database"`
	Storage      StorageConfig      `yaml:"storage"`
	Palette      PaletteConfig      `yaml:"palette"`
	Vocabulary   VocabularyConfig   `yaml:"vocabulary"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RemoteSearchConfig describes the backend global search endpoint.
type RemoteSearchConfig struct {
	BaseURL      string `yaml:"base_url"`
	Path         string `yaml:"path"`
	Token        string `yaml:"token"`
	Limit        int    `yaml:"limit"`
	DebounceMs   int    `yaml:"debounce_ms"`
	MinTermRunes int    `yaml:"min_term_runes"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

// Debounce returns the quiet period as a duration.
func (r RemoteSearchConfig) Debounce() time.Duration {
	return time.Duration(r.DebounceMs) * time.Millisecond
}

// Timeout returns the request timeout as a duration.
func (r RemoteSearchConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSec) * time.Second
}

// DatabaseConfig holds the favorites/recents store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis when addrs are set)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Standalone       bool     `yaml:"standalone"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key layout and list sizes.
type StorageConfig struct {
	KeyPrefix    string `yaml:"key_prefix"`
	RecentsLimit int    `yaml:"recents_limit"`
}

// PaletteConfig holds palette session lifecycle settings.
type PaletteConfig struct {
	SessionIdleMin int `yaml:"session_idle_min"`
	EvictEverySec  int `yaml:"evict_every_sec"`
}

// SessionIdle returns how long an untouched session survives.
func (p PaletteConfig) SessionIdle() time.Duration {
	return time.Duration(p.SessionIdleMin) * time.Minute
}

// EvictEvery returns the idle sweep interval.
func (p PaletteConfig) EvictEvery() time.Duration {
	return time.Duration(p.EvictEverySec) * time.Second
}

// VocabularyConfig holds optional override files. Empty paths use the
// embedded defaults.
type VocabularyConfig struct {
	Dictionary string `yaml:"dictionary"`
	Synonyms   string `yaml:"synonyms"`
	Nav        string `yaml:"nav"`
	Access     string `yaml:"access"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.RemoteSearch.Path == "" {
		c.RemoteSearch.Path = "/api/search"
	}
	if c.RemoteSearch.Limit <= 0 {
		c.RemoteSearch.Limit = 24
	}
	if c.RemoteSearch.DebounceMs <= 0 {
		c.RemoteSearch.DebounceMs = 220
	}
	if c.RemoteSearch.MinTermRunes <= 0 {
		c.RemoteSearch.MinTermRunes = 2
	}
	if c.RemoteSearch.TimeoutSec <= 0 {
		c.RemoteSearch.TimeoutSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
		if len(c.Database.Addrs) == 0 {
			c.Database.Driver = DriverMemory
		}
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "storesearch:"
	}
	if c.Storage.RecentsLimit <= 0 {
		c.Storage.RecentsLimit = 20
	}
	if c.Palette.SessionIdleMin <= 0 {
		c.Palette.SessionIdleMin = 30
	}
	if c.Palette.EvictEverySec <= 0 {
		c.Palette.EvictEverySec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.RemoteSearch.BaseURL == "" {
		return fmt.Errorf("remote_search.base_url is required")
	}
	if !strings.HasPrefix(c.RemoteSearch.Path, "/") {
		return fmt.Errorf("remote_search.path must start with /, got %q", c.RemoteSearch.Path)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", DriverRedis)
		}
	case DriverMemory:
		// ok
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverMemory, c.Database.Driver)
	}
	if c.Storage.RecentsLimit < 15 || c.Storage.RecentsLimit > 30 {
		return fmt.Errorf("storage.recents_limit must be between 15 and 30, got %d", c.Storage.RecentsLimit)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
