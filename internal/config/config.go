package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Bookmarks
	StoreBackend string        // "redis" | "memory"
	StoreTimeout time.Duration // bound on a single persistence call (ex: 5s)

	// Home feed
	FeedURL        string        // JSON endpoint (ex: http://localhost:3002/homesections)
	FeedFile       string        // optional YAML/JSON fixture; wins over FeedURL when set
	FeedTimeout    time.Duration // HTTP timeout per fetch (ex: 10s)
	ReloadInterval time.Duration // interval between feed reloads (default: 5m)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Write limits on bookmark endpoints, per client IP
	RateLimitPerMin int // sustained requests per minute
	RateLimitBurst  int // burst size

	AllowedHosts []string // optional, restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("KOMPAS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("KOMPAS_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("KOMPAS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("KOMPAS_PRETTY_LOG", true),

		// Bookmarks
		StoreBackend: strings.ToLower(getenv("KOMPAS_STORE_BACKEND", BackendRedis)),
		StoreTimeout: mustDuration("KOMPAS_STORE_TIMEOUT", 5*time.Second),

		// Home feed
		FeedURL:        getenv("KOMPAS_FEED_URL", "http://localhost:3002/homesections"),
		FeedFile:       getenv("KOMPAS_FEED_FILE", ""),
		FeedTimeout:    mustDuration("KOMPAS_FEED_TIMEOUT", 10*time.Second),
		ReloadInterval: mustDuration("KOMPAS_RELOAD_FEED_INTERVAL", 5*time.Minute),

		// Redis settings
		RedisAddr:             getenv("KOMPAS_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("KOMPAS_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("KOMPAS_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("KOMPAS_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("KOMPAS_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Write limits
		RateLimitPerMin: getenvInt("KOMPAS_RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:  getenvInt("KOMPAS_RATE_LIMIT_BURST", 30),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("KOMPAS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("KOMPAS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("KOMPAS_TRUST_PROXY", false),
	}

	switch cfg.StoreBackend {
	case BackendRedis, BackendMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: KOMPAS_STORE_BACKEND must be %q or %q, got %q",
			BackendRedis, BackendMemory, cfg.StoreBackend))
	}

	// Validate Redis password configuration
	if cfg.StoreBackend == BackendRedis && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: KOMPAS_REDIS_PASSWORD is required when KOMPAS_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.ReloadInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: KOMPAS_RELOAD_FEED_INTERVAL must be > 0, got %v", cfg.ReloadInterval))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
