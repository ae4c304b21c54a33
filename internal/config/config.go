// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package config

import (
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment
// variables and an optional YAML config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting
//
// Example - load configuration from the environment:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal("failed to load config:", err)
//	}
//
// Validation:
// LoadWithKoanf validates the merged configuration and returns an error
// when values are malformed (out-of-range ports, negative learning rates,
// unknown auth modes) or when an enabled tier is missing required settings
// (for example LOCALSTORE_PATH when the local store is enabled on disk).
//
// Thread Safety:
// Config is immutable after LoadWithKoanf and safe for concurrent read
// access from multiple goroutines.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	API        APIConfig        `koanf:"api"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Engine     EngineConfig     `koanf:"engine"`
	Feedback   FeedbackConfig   `koanf:"feedback"`
	WeightSync WeightSyncConfig `koanf:"weightsync"`
	LocalStore LocalStoreConfig `koanf:"localstore"` // Optional: BadgerDB local persistence tier
	NATS       NATSConfig       `koanf:"nats"`       // Optional: backend sync over NATS JetStream
	Warehouse  WarehouseConfig  `koanf:"warehouse"`  // Optional: DuckDB long-term analytics tier
	Scheduler  SchedulerConfig  `koanf:"scheduler"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8090)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - SERVER_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: "development", "staging", or "production" (default: development)
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// APIConfig holds pagination bounds for list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and rate limiting settings.
//
// Environment Variables:
//   - AUTH_MODE: "none" or "jwt" (default: none)
//   - JWT_SECRET: HMAC signing secret, min 32 chars (required for jwt)
//   - SESSION_TIMEOUT: Token lifetime (default: 24h)
//   - ADMIN_USERNAME / ADMIN_PASSWORD: Admin credentials (required for jwt)
//   - BCRYPT_COST: Password hashing cost factor (default: 12)
//   - LOGIN_RATE_PER_MINUTE: Login attempts allowed per minute (default: 10)
//   - LOGIN_BURST: Login attempt burst allowance (default: 5)
//   - RATE_LIMIT_REQS / RATE_LIMIT_WINDOW: General API rate limit (default: 100 per 1m)
//   - RATE_LIMIT_DISABLED: Disable API rate limiting (default: false)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - TRUSTED_PROXIES: Comma-separated proxy CIDRs for client IP resolution
type SecurityConfig struct {
	AuthMode           string        `koanf:"auth_mode"`
	JWTSecret          string        `koanf:"jwt_secret"`
	SessionTimeout     time.Duration `koanf:"session_timeout"`
	AdminUsername      string        `koanf:"admin_username"`
	AdminPassword      string        `koanf:"admin_password"`
	BcryptCost         int           `koanf:"bcrypt_cost"`
	LoginRatePerMinute int           `koanf:"login_rate_per_minute"`
	LoginBurst         int           `koanf:"login_burst"`
	RateLimitReqs      int           `koanf:"rate_limit_reqs"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled  bool          `koanf:"rate_limit_disabled"`
	CORSOrigins        []string      `koanf:"cors_origins"`
	TrustedProxies     []string      `koanf:"trusted_proxies"`
}

// LoggingConfig holds zerolog output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// EngineConfig holds recommendation scoring settings.
//
// Environment Variables:
//   - ENGINE_DEFAULT_PROFILE: Weight profile used when a request names none
//     (default: moderate)
//   - ENGINE_RECENCY_WINDOW: Age beyond which recency scores zero (default: 720h)
//   - ENGINE_MEMO_TTL: Memoized recommendation lifetime (default: 60s)
//   - ENGINE_MEMO_CAPACITY: Memo cache entry bound (default: 512)
//   - ENGINE_MAX_TOP_N: Cap on requested result count, 0 = uncapped (default: 100)
type EngineConfig struct {
	DefaultProfile string        `koanf:"default_profile"`
	RecencyWindow  time.Duration `koanf:"recency_window"`
	MemoTTL        time.Duration `koanf:"memo_ttl"`
	MemoCapacity   int           `koanf:"memo_capacity"`
	MaxTopN        int           `koanf:"max_top_n"`
}

// FeedbackConfig holds feedback history bounds and reinforcement
// learning rates.
//
// Environment Variables:
//   - FEEDBACK_EVENT_CAPACITY: Event history FIFO bound (default: 1000)
//   - FEEDBACK_ADJUSTMENT_CAPACITY: Per-profile adjustment history bound (default: 100)
//   - FEEDBACK_MIN_EVENTS: Events a preset needs before feedback moves weights (default: 5)
//   - FEEDBACK_ADJUSTMENT_STEP: Raw delta scale per signal (default: 0.01)
//   - FEEDBACK_MAX_ADJUSTMENT: Per-signal delta clamp (default: 0.02)
//   - FEEDBACK_MIN_WEIGHT / FEEDBACK_MAX_WEIGHT: Per-component weight bounds
//     applied before renormalizing (default: 0.05 / 0.50)
type FeedbackConfig struct {
	EventCapacity      int     `koanf:"event_capacity"`
	AdjustmentCapacity int     `koanf:"adjustment_capacity"`
	MinEvents          int     `koanf:"min_events"`
	AdjustmentStep     float64 `koanf:"adjustment_step"`
	MaxAdjustment      float64 `koanf:"max_adjustment"`
	MinWeight          float64 `koanf:"min_weight"`
	MaxWeight          float64 `koanf:"max_weight"`
}

// WeightSyncConfig holds blend shares, the effective-weights cache, and
// sync hook execution settings.
//
// Environment Variables:
//   - WEIGHTSYNC_GLOBAL_SHARE / WEIGHTSYNC_LOCAL_SHARE: Blend shares for
//     base vs learned weights (default: 0.7 / 0.3)
//   - WEIGHTSYNC_WEIGHTS_TTL: Effective-weights cache lifetime (default: 30s)
//   - WEIGHTSYNC_WEIGHTS_CAPACITY: Effective-weights cache bound (default: 64)
//   - WEIGHTSYNC_DEBOUNCE_WINDOW: Local sync coalescing window (default: 1s)
//   - WEIGHTSYNC_HOOK_TIMEOUT: Per-hook invocation timeout (default: 10s)
//   - WEIGHTSYNC_SAMPLE_CAPACITY: Time-to-selection sample bound (default: 100)
//   - WEIGHTSYNC_ERROR_CAPACITY: Sync error list bound (default: 100)
type WeightSyncConfig struct {
	GlobalShare     float64       `koanf:"global_share"`
	LocalShare      float64       `koanf:"local_share"`
	WeightsTTL      time.Duration `koanf:"weights_ttl"`
	WeightsCapacity int           `koanf:"weights_capacity"`
	DebounceWindow  time.Duration `koanf:"debounce_window"`
	HookTimeout     time.Duration `koanf:"hook_timeout"`
	SampleCapacity  int           `koanf:"sample_capacity"`
	ErrorCapacity   int           `koanf:"error_capacity"`
}

// LocalStoreConfig holds BadgerDB local persistence settings.
// The local store is the first sync tier: learned weights and KPI state
// are flushed here on the debounced local sync cycle and restored on
// startup.
//
// Environment Variables:
//   - LOCALSTORE_ENABLED: Enable local persistence (default: true)
//   - LOCALSTORE_PATH: BadgerDB directory (default: ./data/localstore)
//   - LOCALSTORE_IN_MEMORY: Run Badger without disk files (default: false)
//   - LOCALSTORE_GC_INTERVAL: Value log garbage collection cadence (default: 5m)
type LocalStoreConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// NATSConfig holds backend sync tier settings. When enabled, weight and
// KPI snapshots publish to NATS JetStream on the backend sync cycle,
// guarded by a circuit breaker.
//
// Environment Variables:
//   - NATS_ENABLED: Enable the backend tier (default: false)
//   - NATS_URL: Server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED_SERVER: Run an embedded NATS server (default: false)
//   - NATS_STORE_DIR: JetStream storage directory for the embedded server
//   - NATS_MAX_MEMORY / NATS_MAX_STORE: Embedded JetStream resource caps in bytes
//   - NATS_WEIGHTS_SUBJECT: Subject for weight snapshots (default: presage.sync.weights)
//   - NATS_KPI_SUBJECT: Subject for KPI snapshots (default: presage.sync.kpi)
//   - NATS_BREAKER_MAX_REQUESTS / NATS_BREAKER_INTERVAL / NATS_BREAKER_TIMEOUT /
//     NATS_BREAKER_FAILURES: Circuit breaker tuning
type NATSConfig struct {
	// Enabled controls whether the backend sync tier is active.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer enables an embedded NATS server.
	// If false, expects an external NATS server at URL.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory for the embedded server.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory is the maximum memory for embedded JetStream in bytes.
	MaxMemory int64 `koanf:"max_memory"`

	// MaxStore is the maximum disk storage for embedded JetStream in bytes.
	MaxStore int64 `koanf:"max_store"`

	// WeightsSubject is the subject weight snapshots publish to.
	WeightsSubject string `koanf:"weights_subject"`

	// KPISubject is the subject KPI snapshots publish to.
	KPISubject string `koanf:"kpi_subject"`

	// Breaker tunes the circuit breaker wrapping publishes.
	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker guarding backend publishes.
type BreakerConfig struct {
	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `koanf:"timeout"`

	// ConsecutiveFailures is the failure count that trips the breaker.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures"`
}

// WarehouseConfig holds DuckDB long-term analytics settings. When
// enabled, analytics exports are appended to DuckDB on the long-term
// sync cycle.
//
// Environment Variables:
//   - WAREHOUSE_ENABLED: Enable the long-term tier (default: false)
//   - WAREHOUSE_PATH: DuckDB database file (default: ./data/presage.duckdb)
//   - WAREHOUSE_IN_MEMORY: Run DuckDB in memory (default: false)
//   - WAREHOUSE_THREADS: DuckDB thread count, 0 = DuckDB default (default: 0)
//   - WAREHOUSE_RETENTION_DAYS: Snapshot retention, 0 = keep forever (default: 90)
type WarehouseConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Path          string `koanf:"path"`
	InMemory      bool   `koanf:"in_memory"`
	Threads       int    `koanf:"threads"`
	RetentionDays int    `koanf:"retention_days"`
}

// SchedulerConfig holds the periodic sync cadence for the backend and
// long-term tiers. The local tier is debounced, not scheduled.
//
// Environment Variables:
//   - SCHEDULER_BACKEND_INTERVAL: Backend sync cadence (default: 5m)
//   - SCHEDULER_LONGTERM_INTERVAL: Long-term sync cadence (default: 30m)
type SchedulerConfig struct {
	BackendInterval  time.Duration `koanf:"backend_interval"`
	LongTermInterval time.Duration `koanf:"longterm_interval"`
}

// IsProduction reports whether the server runs in production mode.
// Production mode refuses insecure settings like AUTH_MODE=none.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return !c.IsProduction()
}
