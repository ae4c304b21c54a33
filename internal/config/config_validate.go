// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package config

import (
	"fmt"
	"strings"
)

// validAuthModes defines the allowed authentication modes
var validAuthModes = map[string]bool{
	"none": true,
	"jwt":  true,
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validEnvironments defines the allowed environment modes
var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
	"prod":        true,
}

// placeholderPatterns are secret values that indicate an unconfigured
// deployment and must never reach production.
var placeholderPatterns = []string{
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
	"SECRET_HERE",
}

const minJWTSecretLength = 32

// Validate checks that the merged configuration is complete and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateEngine(); err != nil {
		return err
	}

	if err := c.validateFeedback(); err != nil {
		return err
	}

	if err := c.validateWeightSync(); err != nil {
		return err
	}

	if err := c.validateLocalStore(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateWarehouse(); err != nil {
		return err
	}

	return c.validateScheduler()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive")
	}
	if !validEnvironments[strings.ToLower(c.Server.Environment)] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be at least API_DEFAULT_PAGE_SIZE (%d)", c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateAuthMode(); err != nil {
		return err
	}

	if err := c.validateAuthModeConfig(); err != nil {
		return err
	}

	if err := c.validateBcryptCost(); err != nil {
		return err
	}

	if err := c.validateLoginThrottle(); err != nil {
		return err
	}

	return c.validateRateLimits()
}

func (c *Config) validateAuthMode() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt")
	}
	return c.validateAuthModeForEnvironment()
}

// validateAuthModeForEnvironment refuses to start with AUTH_MODE=none in
// production. This prevents accidental deployment of an open API.
func (c *Config) validateAuthModeForEnvironment() error {
	if c.Security.AuthMode == "none" && c.IsProduction() {
		return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production. " +
			"Either set AUTH_MODE=jwt " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

func (c *Config) validateAuthModeConfig() error {
	if c.Security.AuthMode != "jwt" {
		return nil
	}
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	return c.validateAdminCredentials("jwt")
}

func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for security", minJWTSecretLength)
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

func (c *Config) validateAdminCredentials(authMode string) error {
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE is %s", authMode)
	}
	if c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when AUTH_MODE is %s", authMode)
	}
	if containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - choose a real password")
	}
	return nil
}

func (c *Config) validateBcryptCost() error {
	// bcrypt rejects costs outside [4, 31]; below 10 is too cheap to
	// resist offline cracking on modern hardware.
	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 10 and 31")
	}
	return nil
}

func (c *Config) validateLoginThrottle() error {
	if c.Security.LoginRatePerMinute < 1 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must be at least 1")
	}
	if c.Security.LoginBurst < 1 {
		return fmt.Errorf("LOGIN_BURST must be at least 1")
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.DefaultProfile == "" {
		return fmt.Errorf("ENGINE_DEFAULT_PROFILE must not be empty")
	}
	if c.Engine.RecencyWindow <= 0 {
		return fmt.Errorf("ENGINE_RECENCY_WINDOW must be positive")
	}
	if c.Engine.MemoTTL <= 0 {
		return fmt.Errorf("ENGINE_MEMO_TTL must be positive")
	}
	if c.Engine.MemoCapacity < 1 {
		return fmt.Errorf("ENGINE_MEMO_CAPACITY must be at least 1")
	}
	if c.Engine.MaxTopN < 0 {
		return fmt.Errorf("ENGINE_MAX_TOP_N must not be negative")
	}
	return nil
}

func (c *Config) validateFeedback() error {
	if c.Feedback.EventCapacity < 1 {
		return fmt.Errorf("FEEDBACK_EVENT_CAPACITY must be at least 1")
	}
	if c.Feedback.AdjustmentCapacity < 1 {
		return fmt.Errorf("FEEDBACK_ADJUSTMENT_CAPACITY must be at least 1")
	}
	if c.Feedback.MinEvents < 1 {
		return fmt.Errorf("FEEDBACK_MIN_EVENTS must be at least 1")
	}
	if c.Feedback.AdjustmentStep <= 0 {
		return fmt.Errorf("FEEDBACK_ADJUSTMENT_STEP must be positive")
	}
	if c.Feedback.MaxAdjustment <= 0 {
		return fmt.Errorf("FEEDBACK_MAX_ADJUSTMENT must be positive")
	}
	if c.Feedback.MinWeight <= 0 || c.Feedback.MinWeight >= 1 {
		return fmt.Errorf("FEEDBACK_MIN_WEIGHT must be between 0 and 1 exclusive")
	}
	if c.Feedback.MaxWeight <= c.Feedback.MinWeight || c.Feedback.MaxWeight > 1 {
		return fmt.Errorf("FEEDBACK_MAX_WEIGHT must be between FEEDBACK_MIN_WEIGHT and 1")
	}
	return nil
}

func (c *Config) validateWeightSync() error {
	if c.WeightSync.GlobalShare < 0 || c.WeightSync.LocalShare < 0 {
		return fmt.Errorf("WEIGHTSYNC_GLOBAL_SHARE and WEIGHTSYNC_LOCAL_SHARE must not be negative")
	}
	if c.WeightSync.GlobalShare+c.WeightSync.LocalShare <= 0 {
		return fmt.Errorf("WEIGHTSYNC_GLOBAL_SHARE and WEIGHTSYNC_LOCAL_SHARE must not both be zero")
	}
	if c.WeightSync.WeightsTTL <= 0 {
		return fmt.Errorf("WEIGHTSYNC_WEIGHTS_TTL must be positive")
	}
	if c.WeightSync.WeightsCapacity < 1 {
		return fmt.Errorf("WEIGHTSYNC_WEIGHTS_CAPACITY must be at least 1")
	}
	if c.WeightSync.DebounceWindow <= 0 {
		return fmt.Errorf("WEIGHTSYNC_DEBOUNCE_WINDOW must be positive")
	}
	if c.WeightSync.HookTimeout <= 0 {
		return fmt.Errorf("WEIGHTSYNC_HOOK_TIMEOUT must be positive")
	}
	if c.WeightSync.SampleCapacity < 1 {
		return fmt.Errorf("WEIGHTSYNC_SAMPLE_CAPACITY must be at least 1")
	}
	if c.WeightSync.ErrorCapacity < 1 {
		return fmt.Errorf("WEIGHTSYNC_ERROR_CAPACITY must be at least 1")
	}
	return nil
}

func (c *Config) validateLocalStore() error {
	if !c.LocalStore.Enabled {
		return nil
	}
	if !c.LocalStore.InMemory && c.LocalStore.Path == "" {
		return fmt.Errorf("LOCALSTORE_PATH is required when LOCALSTORE_ENABLED=true and LOCALSTORE_IN_MEMORY=false")
	}
	if c.LocalStore.GCInterval <= 0 {
		return fmt.Errorf("LOCALSTORE_GC_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if !c.NATS.EmbeddedServer && c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true and NATS_EMBEDDED_SERVER=false")
	}
	if c.NATS.URL != "" && !strings.HasPrefix(c.NATS.URL, "nats://") && !strings.HasPrefix(c.NATS.URL, "tls://") {
		return fmt.Errorf("NATS_URL must use the nats:// or tls:// scheme")
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED_SERVER=true")
	}
	if c.NATS.WeightsSubject == "" {
		return fmt.Errorf("NATS_WEIGHTS_SUBJECT must not be empty")
	}
	if c.NATS.KPISubject == "" {
		return fmt.Errorf("NATS_KPI_SUBJECT must not be empty")
	}

	return c.validateBreaker()
}

func (c *Config) validateBreaker() error {
	if c.NATS.Breaker.MaxRequests < 1 {
		return fmt.Errorf("NATS_BREAKER_MAX_REQUESTS must be at least 1")
	}
	if c.NATS.Breaker.Interval <= 0 {
		return fmt.Errorf("NATS_BREAKER_INTERVAL must be positive")
	}
	if c.NATS.Breaker.Timeout <= 0 {
		return fmt.Errorf("NATS_BREAKER_TIMEOUT must be positive")
	}
	if c.NATS.Breaker.ConsecutiveFailures < 1 {
		return fmt.Errorf("NATS_BREAKER_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateWarehouse() error {
	if !c.Warehouse.Enabled {
		return nil
	}
	if !c.Warehouse.InMemory && c.Warehouse.Path == "" {
		return fmt.Errorf("WAREHOUSE_PATH is required when WAREHOUSE_ENABLED=true and WAREHOUSE_IN_MEMORY=false")
	}
	if c.Warehouse.Threads < 0 {
		return fmt.Errorf("WAREHOUSE_THREADS must not be negative")
	}
	if c.Warehouse.RetentionDays < 0 {
		return fmt.Errorf("WAREHOUSE_RETENTION_DAYS must not be negative")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.BackendInterval <= 0 {
		return fmt.Errorf("SCHEDULER_BACKEND_INTERVAL must be positive")
	}
	if c.Scheduler.LongTermInterval <= 0 {
		return fmt.Errorf("SCHEDULER_LONGTERM_INTERVAL must be positive")
	}
	return nil
}

// containsPlaceholder reports whether value looks like an unconfigured
// template secret.
func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
