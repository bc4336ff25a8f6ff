package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KOMPAS_STORE_BACKEND", "")
	t.Setenv("KOMPAS_FEED_URL", "")

	cfg := Load()

	if cfg.StoreBackend != BackendRedis {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendRedis)
	}
	if cfg.FeedURL != "http://localhost:3002/homesections" {
		t.Errorf("FeedURL = %q", cfg.FeedURL)
	}
	if cfg.ReloadInterval != 5*time.Minute {
		t.Errorf("ReloadInterval = %v, want 5m", cfg.ReloadInterval)
	}
	if cfg.StoreTimeout != 5*time.Second {
		t.Errorf("StoreTimeout = %v, want 5s", cfg.StoreTimeout)
	}
	if cfg.AllowedCIDRS != nil {
		t.Errorf("AllowedCIDRS = %v, want nil", cfg.AllowedCIDRS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KOMPAS_STORE_BACKEND", "Memory")
	t.Setenv("KOMPAS_FEED_FILE", "/srv/home.yaml")
	t.Setenv("KOMPAS_RELOAD_FEED_INTERVAL", "30s")
	t.Setenv("KOMPAS_ALLOWED_CIDRS", "10.0.0.0/8, '127.0.0.1'")
	t.Setenv("KOMPAS_ALLOWED_HOSTS", "kompas.local")
	t.Setenv("KOMPAS_RATE_LIMIT_BURST", "5")

	cfg := Load()

	if cfg.StoreBackend != BackendMemory {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendMemory)
	}
	if cfg.FeedFile != "/srv/home.yaml" {
		t.Errorf("FeedFile = %q", cfg.FeedFile)
	}
	if cfg.ReloadInterval != 30*time.Second {
		t.Errorf("ReloadInterval = %v, want 30s", cfg.ReloadInterval)
	}
	if len(cfg.AllowedCIDRS) != 2 || cfg.AllowedCIDRS[1] != "127.0.0.1" {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
	if len(cfg.AllowedHosts) != 1 || cfg.AllowedHosts[0] != "kompas.local" {
		t.Errorf("AllowedHosts = %v", cfg.AllowedHosts)
	}
	if cfg.RateLimitBurst != 5 {
		t.Errorf("RateLimitBurst = %d, want 5", cfg.RateLimitBurst)
	}
}

func TestLoadPanics(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown backend",
			env:  map[string]string{"KOMPAS_STORE_BACKEND": "sqlite"},
		},
		{
			name: "password required but missing",
			env: map[string]string{
				"KOMPAS_STORE_BACKEND":           "redis",
				"KOMPAS_REDIS_PASSWORD_REQUIRED": "true",
				"KOMPAS_REDIS_PASSWORD":          "",
			},
		},
		{
			name: "zero reload interval",
			env:  map[string]string{"KOMPAS_RELOAD_FEED_INTERVAL": "0s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked")
				}
			}()

			Load()
		})
	}
}

func TestMemoryBackendIgnoresRedisPassword(t *testing.T) {
	t.Setenv("KOMPAS_STORE_BACKEND", "memory")
	t.Setenv("KOMPAS_REDIS_PASSWORD_REQUIRED", "true")
	t.Setenv("KOMPAS_REDIS_PASSWORD", "")

	if cfg := Load(); cfg.StoreBackend != BackendMemory {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{
			name:     "single value",
			value:    "value1",
			expected: []string{"value1"},
		},
		{
			name:     "multiple values",
			value:    "value1, value2, value3",
			expected: []string{"value1", "value2", "value3"},
		},
		{
			name:     "quotes and blanks",
			value:    `"a", ,'b'`,
			expected: []string{"a", "b"},
		},
		{
			name:     "empty",
			value:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.value)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() length = %v, want %v", len(result), len(tt.expected))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}
