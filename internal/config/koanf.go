// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/presage/config.yaml",
	"/etc/presage/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8090,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		API: APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     500,
		},
		Security: SecurityConfig{
			AuthMode:           "none", // Open by default - development mode only
			JWTSecret:          "",
			SessionTimeout:     24 * time.Hour,
			AdminUsername:      "",
			AdminPassword:      "",
			BcryptCost:         12,
			LoginRatePerMinute: 10,
			LoginBurst:         5,
			RateLimitReqs:      100,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  false,
			CORSOrigins:        []string{"*"},
			TrustedProxies:     nil,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Engine: EngineConfig{
			DefaultProfile: "moderate",
			RecencyWindow:  720 * time.Hour, // 30 days
			MemoTTL:        60 * time.Second,
			MemoCapacity:   512,
			MaxTopN:        100,
		},
		Feedback: FeedbackConfig{
			EventCapacity:      1000,
			AdjustmentCapacity: 100,
			MinEvents:          5,
			AdjustmentStep:     0.01,
			MaxAdjustment:      0.02,
			MinWeight:          0.05,
			MaxWeight:          0.50,
		},
		WeightSync: WeightSyncConfig{
			GlobalShare:     0.7,
			LocalShare:      0.3,
			WeightsTTL:      30 * time.Second,
			WeightsCapacity: 64,
			DebounceWindow:  time.Second,
			HookTimeout:     10 * time.Second,
			SampleCapacity:  100,
			ErrorCapacity:   100,
		},
		LocalStore: LocalStoreConfig{
			Enabled:    true,
			Path:       "./data/localstore",
			InMemory:   false,
			GCInterval: 5 * time.Minute,
		},
		NATS: NATSConfig{
			Enabled:        false, // Backend tier is opt-in
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			StoreDir:       "./data/nats",
			MaxMemory:      256 * 1024 * 1024,      // 256MB
			MaxStore:       1 * 1024 * 1024 * 1024, // 1GB
			WeightsSubject: "presage.sync.weights",
			KPISubject:     "presage.sync.kpi",
			Breaker: BreakerConfig{
				MaxRequests:         3,
				Interval:            time.Minute,
				Timeout:             30 * time.Second,
				ConsecutiveFailures: 5,
			},
		},
		Warehouse: WarehouseConfig{
			Enabled:       false, // Long-term tier is opt-in
			Path:          "./data/presage.duckdb",
			InMemory:      false,
			Threads:       0, // DuckDB default
			RetentionDays: 90,
		},
		Scheduler: SchedulerConfig{
			BackendInterval:  5 * time.Minute,
			LongTermInterval: 30 * time.Minute,
		},
	}
}

// Load reads configuration from environment variables and optional config file.
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// HTTP_PORT -> server.port
	// FEEDBACK_MIN_EVENTS -> feedback.min_events
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
// Only explicitly mapped variables are honored so arbitrary environment
// noise cannot reach the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":      "server.port",
		"http_host":      "server.host",
		"server_timeout": "server.timeout",
		"environment":    "server.environment",

		// API mappings
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",

		// Security mappings
		"auth_mode":             "security.auth_mode",
		"jwt_secret":            "security.jwt_secret",
		"session_timeout":       "security.session_timeout",
		"admin_username":        "security.admin_username",
		"admin_password":        "security.admin_password",
		"bcrypt_cost":           "security.bcrypt_cost",
		"login_rate_per_minute": "security.login_rate_per_minute",
		"login_burst":           "security.login_burst",
		"rate_limit_reqs":       "security.rate_limit_reqs",
		"rate_limit_window":     "security.rate_limit_window",
		"rate_limit_disabled":   "security.rate_limit_disabled",
		"cors_origins":          "security.cors_origins",
		"trusted_proxies":       "security.trusted_proxies",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Engine mappings
		"engine_default_profile": "engine.default_profile",
		"engine_recency_window":  "engine.recency_window",
		"engine_memo_ttl":        "engine.memo_ttl",
		"engine_memo_capacity":   "engine.memo_capacity",
		"engine_max_top_n":       "engine.max_top_n",

		// Feedback mappings
		"feedback_event_capacity":      "feedback.event_capacity",
		"feedback_adjustment_capacity": "feedback.adjustment_capacity",
		"feedback_min_events":          "feedback.min_events",
		"feedback_adjustment_step":     "feedback.adjustment_step",
		"feedback_max_adjustment":      "feedback.max_adjustment",
		"feedback_min_weight":          "feedback.min_weight",
		"feedback_max_weight":          "feedback.max_weight",

		// WeightSync mappings
		"weightsync_global_share":     "weightsync.global_share",
		"weightsync_local_share":      "weightsync.local_share",
		"weightsync_weights_ttl":      "weightsync.weights_ttl",
		"weightsync_weights_capacity": "weightsync.weights_capacity",
		"weightsync_debounce_window":  "weightsync.debounce_window",
		"weightsync_hook_timeout":     "weightsync.hook_timeout",
		"weightsync_sample_capacity":  "weightsync.sample_capacity",
		"weightsync_error_capacity":   "weightsync.error_capacity",

		// LocalStore mappings
		"localstore_enabled":     "localstore.enabled",
		"localstore_path":        "localstore.path",
		"localstore_in_memory":   "localstore.in_memory",
		"localstore_gc_interval": "localstore.gc_interval",

		// NATS mappings
		"nats_enabled":              "nats.enabled",
		"nats_url":                  "nats.url",
		"nats_embedded_server":      "nats.embedded_server",
		"nats_store_dir":            "nats.store_dir",
		"nats_max_memory":           "nats.max_memory",
		"nats_max_store":            "nats.max_store",
		"nats_weights_subject":      "nats.weights_subject",
		"nats_kpi_subject":          "nats.kpi_subject",
		"nats_breaker_max_requests": "nats.breaker.max_requests",
		"nats_breaker_interval":     "nats.breaker.interval",
		"nats_breaker_timeout":      "nats.breaker.timeout",
		"nats_breaker_failures":     "nats.breaker.consecutive_failures",

		// Warehouse mappings
		"warehouse_enabled":        "warehouse.enabled",
		"warehouse_path":           "warehouse.path",
		"warehouse_in_memory":      "warehouse.in_memory",
		"warehouse_threads":        "warehouse.threads",
		"warehouse_retention_days": "warehouse.retention_days",

		// Scheduler mappings
		"scheduler_backend_interval":  "scheduler.backend_interval",
		"scheduler_longterm_interval": "scheduler.longterm_interval",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// YAML files already produce slices; this handles the env var form.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}
