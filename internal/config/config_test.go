package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:         HTTPConfig{Port: 8080},
		RemoteSearch: RemoteSearchConfig{BaseURL: "http://backend:8000"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "invalid port",
			mutate: func(c *Config) { c.HTTP.Port = 0 },
			want:   "http.port must be between 1 and 65535, got 0",
		},
		{
			name:   "missing base url",
			mutate: func(c *Config) { c.RemoteSearch.BaseURL = "" },
			want:   "remote_search.base_url is required",
		},
		{
			name:   "relative path",
			mutate: func(c *Config) { c.RemoteSearch.Path = "api/search" },
			want:   `remote_search.path must start with /, got "api/search"`,
		},
		{
			name:   "redis without addrs",
			mutate: func(c *Config) { c.Database.Driver = DriverRedis },
			want:   `database.addrs is required for driver "redis"`,
		},
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.Database.Driver = "valkey-glide" },
			want:   `database.driver must be "redis" or "memory", got "valkey-glide"`,
		},
		{
			name:   "recents too small",
			mutate: func(c *Config) { c.Storage.RecentsLimit = 5 },
			want:   "storage.recents_limit must be between 15 and 30, got 5",
		},
		{
			name:   "recents too large",
			mutate: func(c *Config) { c.Storage.RecentsLimit = 31 },
			want:   "storage.recents_limit must be between 15 and 30, got 31",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tc.want {
				t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), tc.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.RemoteSearch.Path != "/api/search" {
		t.Errorf("expected Path=/api/search, got %q", cfg.RemoteSearch.Path)
	}
	if cfg.RemoteSearch.Limit != 24 {
		t.Errorf("expected Limit=24, got %d", cfg.RemoteSearch.Limit)
	}
	if cfg.RemoteSearch.Debounce() != 220*time.Millisecond {
		t.Errorf("expected Debounce=220ms, got %v", cfg.RemoteSearch.Debounce())
	}
	if cfg.RemoteSearch.MinTermRunes != 2 {
		t.Errorf("expected MinTermRunes=2, got %d", cfg.RemoteSearch.MinTermRunes)
	}
	if cfg.RemoteSearch.Timeout() != 10*time.Second {
		t.Errorf("expected Timeout=10s, got %v", cfg.RemoteSearch.Timeout())
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected memory driver without addrs, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.KeyPrefix != "storesearch:" {
		t.Errorf("expected KeyPrefix='storesearch:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Storage.RecentsLimit != 20 {
		t.Errorf("expected RecentsLimit=20, got %d", cfg.Storage.RecentsLimit)
	}
	if cfg.Palette.SessionIdle() != 30*time.Minute {
		t.Errorf("expected SessionIdle=30m, got %v", cfg.Palette.SessionIdle())
	}
	if cfg.Palette.EvictEvery() != time.Minute {
		t.Errorf("expected EvictEvery=1m, got %v", cfg.Palette.EvictEvery())
	}
}

func TestApplyDefaults_RedisWhenAddrsSet(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{Addrs: []string{"localhost:6379"}}}
	cfg.ApplyDefaults()

	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected redis driver, got %q", cfg.Database.Driver)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:         HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		RemoteSearch: RemoteSearchConfig{Path: "/v2/search", Limit: 10, DebounceMs: 300, MinTermRunes: 3},
		Database:     DatabaseConfig{ReadinessTimeout: 15},
		Storage:      StorageConfig{KeyPrefix: "custom:", RecentsLimit: 25},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.RemoteSearch.Path != "/v2/search" || cfg.RemoteSearch.Limit != 10 {
		t.Errorf("remote search overridden: %+v", cfg.RemoteSearch)
	}
	if cfg.RemoteSearch.DebounceMs != 300 || cfg.RemoteSearch.MinTermRunes != 3 {
		t.Errorf("debounce settings overridden: %+v", cfg.RemoteSearch)
	}
	if cfg.Storage.KeyPrefix != "custom:" || cfg.Storage.RecentsLimit != 25 {
		t.Errorf("storage overridden: %+v", cfg.Storage)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("STORESEARCH_TEST_TOKEN", "secret")

	tests := []struct {
		in   string
		want string
	}{
		{"token: ${STORESEARCH_TEST_TOKEN}", "token: secret"},
		{"token: ${STORESEARCH_TEST_UNSET:-fallback}", "token: fallback"},
		{"token: ${STORESEARCH_TEST_UNSET}", "token: "},
		{"plain", "plain"},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.HTTP.Port == 0 || cfg.RemoteSearch.BaseURL == "" {
		t.Errorf("local config incomplete: %+v", cfg)
	}
}
