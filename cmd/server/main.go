// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package main is the entry point for the Presage server application.
//
// Presage is a self-hosted preset recommendation engine with explainable
// scoring and adaptive weights. Every recommendation carries a per-component
// score breakdown, user feedback moves per-profile learned weights, and
// learned state syncs through a tiered persistence pipeline.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Scoring Engine: Preset scorer with memoized recommendations
//  3. Feedback Store: Bounded event history and learned weights
//  4. Weight Sync Manager: Blend cache, KPI session state, sync hooks
//  5. Local Store: BadgerDB persistence tier with startup restore
//  6. Backend Tier (optional): NATS JetStream snapshot publisher
//  7. Warehouse Tier (optional): DuckDB analytics history
//  8. Authentication: JWT or no-auth mode
//  9. HTTP Server: Chi router with REST and WebSocket endpoints
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (see .env.example)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// For JWT authentication:
//   - JWT_SECRET: 32+ character secret for token signing
//   - ADMIN_USERNAME: Admin username
//   - ADMIN_PASSWORD: Admin password (8+ characters)
//
// # Build Tags
//
// Optional build tags enable additional sync tiers:
//
//	go build -tags "nats" ./cmd/server         # Enable NATS JetStream backend
//	go build -tags "duckdb" ./cmd/server       # Enable DuckDB warehouse
//	go build -tags "nats,duckdb" ./cmd/server  # Enable both
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Flushes learned weights to the local store
//   - Shuts down backend and warehouse tiers if enabled
//
// # Example Usage
//
// Development (no auth, memory only):
//
//	export AUTH_MODE=none
//	export LOCALSTORE_IN_MEMORY=true
//	go run ./cmd/server
//
// Production with JWT and persistent tiers:
//
//	export AUTH_MODE=jwt
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=secure-password
//	export LOCALSTORE_PATH=/data/localstore
//	./presage
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/presage/internal/api"
	"github.com/tomtom215/presage/internal/auth"
	"github.com/tomtom215/presage/internal/config"
	"github.com/tomtom215/presage/internal/dispatch"
	"github.com/tomtom215/presage/internal/feedback"
	"github.com/tomtom215/presage/internal/localstore"
	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/metrics"
	"github.com/tomtom215/presage/internal/recommend"
	"github.com/tomtom215/presage/internal/supervisor"
	"github.com/tomtom215/presage/internal/supervisor/services"
	"github.com/tomtom215/presage/internal/weightsync"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Presage with supervisor tree")

	logging.Info().
		Str("auth_mode", cfg.Security.AuthMode).
		Str("default_profile", cfg.Engine.DefaultProfile).
		Bool("localstore_enabled", cfg.LocalStore.Enabled).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("warehouse_enabled", cfg.Warehouse.Enabled).
		Msg("Configuration loaded")

	// Initialize the scoring engine
	scorer, err := recommend.NewScorer(&recommend.Config{
		RecencyWindow: cfg.Engine.RecencyWindow,
		MemoTTL:       cfg.Engine.MemoTTL,
		MemoCapacity:  cfg.Engine.MemoCapacity,
		MaxTopN:       cfg.Engine.MaxTopN,
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize scoring engine")
	}
	logging.Info().Msg("Scoring engine initialized")

	// Initialize the feedback store (shared by the handler and the manager)
	store, err := feedback.NewStore(&feedback.Config{
		EventCapacity:      cfg.Feedback.EventCapacity,
		AdjustmentCapacity: cfg.Feedback.AdjustmentCapacity,
		MinFeedback:        cfg.Feedback.MinEvents,
		AdjustmentStep:     cfg.Feedback.AdjustmentStep,
		MaxAdjustment:      cfg.Feedback.MaxAdjustment,
		MinWeight:          cfg.Feedback.MinWeight,
		MaxWeight:          cfg.Feedback.MaxWeight,
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize feedback store")
	}

	// Initialize the weight sync manager
	manager, err := weightsync.NewManager(&weightsync.Config{
		GlobalShare:     cfg.WeightSync.GlobalShare,
		LocalShare:      cfg.WeightSync.LocalShare,
		WeightsTTL:      cfg.WeightSync.WeightsTTL,
		WeightsCapacity: cfg.WeightSync.WeightsCapacity,
		DebounceWindow:  cfg.WeightSync.DebounceWindow,
		HookTimeout:     cfg.WeightSync.HookTimeout,
		SampleCapacity:  cfg.WeightSync.SampleCapacity,
		ErrorCapacity:   cfg.WeightSync.ErrorCapacity,
	}, store, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize weight sync manager")
	}
	logging.Info().Msg("Weight sync manager initialized")

	// Surface recorded sync failures as Prometheus counters
	manager.RegisterErrorHook(func(serr weightsync.SyncError) {
		metrics.RecordSyncError(string(serr.Tier))
	})

	// Initialize the local persistence tier (BadgerDB)
	// Persisted learned weights and KPI state are restored before the
	// store registers as a local sync hook.
	var local *localstore.Store
	if cfg.LocalStore.Enabled {
		local, err = localstore.Open(&localstore.Config{
			Path:       cfg.LocalStore.Path,
			InMemory:   cfg.LocalStore.InMemory,
			GCInterval: cfg.LocalStore.GCInterval,
		}, logging.Logger())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open local store")
		}

		if err := local.Restore(manager); err != nil {
			logging.Warn().Err(err).Msg("Failed to restore persisted weight state (starting fresh)")
		}

		manager.RegisterLocalHook(instrumentHook(weightsync.TierLocal, local.Hook()))
		logging.Info().
			Str("path", cfg.LocalStore.Path).
			Bool("in_memory", cfg.LocalStore.InMemory).
			Msg("Local store initialized")
	} else {
		logging.Info().Msg("Local store disabled (LOCALSTORE_ENABLED=false) - learned weights will not persist")
	}

	// Initialize the backend sync tier (optional - requires build with -tags nats)
	// Publishes weight and KPI snapshots to NATS JetStream on the backend cycle.
	backendComponents, err := InitBackend(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize backend sync tier")
	}
	if hook := backendComponents.Hook(); hook != nil {
		manager.RegisterBackendHook(instrumentHook(weightsync.TierBackend, hook))
		logging.Info().Msg("Backend publisher registered as sync hook")
	}

	// Initialize the warehouse tier (optional - requires build with -tags duckdb)
	// Appends analytics exports to DuckDB on the long-term cycle.
	wh, err := InitWarehouse(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize warehouse tier")
	}
	if wh != nil {
		manager.RegisterLongTermHook(instrumentHook(weightsync.TierLongTerm, wh.Hook()))
		logging.Info().Msg("Warehouse registered as long-term sync hook")
	}

	var jwtManager *auth.JWTManager

	switch cfg.Security.AuthMode {
	case auth.ModeJWT:
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("JWT authentication enabled")
	case auth.ModeNone:
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  All endpoints are publicly accessible without authentication!")
		logging.Warn().Msg("  This mode should ONLY be used for:")
		logging.Warn().Msg("    - Local development")
		logging.Warn().Msg("    - Completely isolated private networks")
		logging.Warn().Msg("    - CI/CD testing environments")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  NEVER use AUTH_MODE=none in production or on public networks!")
		logging.Warn().Msg("============================================================")
	}

	authMiddleware, err := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize auth middleware")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
		logging.Warn().Msg("This should only be used for development and CI!")
	}

	// Create dispatch hub for real-time updates (supervisor will run it)
	hub := dispatch.NewHub()

	handler := api.NewHandler(cfg, scorer, store, manager, jwtManager, hub)
	router := api.NewRouter(handler, authMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Sync layer services
	tree.AddSyncService(services.NewSyncSchedulerService(
		manager,
		cfg.Scheduler.BackendInterval,
		cfg.Scheduler.LongTermInterval,
	))
	logging.Info().
		Dur("backend_interval", cfg.Scheduler.BackendInterval).
		Dur("longterm_interval", cfg.Scheduler.LongTermInterval).
		Msg("Sync scheduler added to supervisor tree")

	// Embedded NATS server (if enabled and compiled in)
	AddBackendToSupervisor(tree, backendComponents)

	// Dispatch layer services
	tree.AddDispatchService(services.NewDispatchHubService(hub))
	logging.Info().Msg("Dispatch hub added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	// Ordered shutdown of unsupervised components. The manager closes
	// first: its final flush writes pending learned state through the
	// local hook, so the local store must still be open.
	manager.Close()
	if local != nil {
		if err := local.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing local store")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	backendComponents.Shutdown(shutdownCtx)

	if wh != nil {
		if err := wh.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing warehouse")
		}
	}

	handler.Close()

	logging.Info().Msg("Application stopped gracefully")
}

// instrumentHook wraps a sync hook with a Prometheus duration
// observation labeled by tier. A hook abandoned at its timeout still
// records its eventual duration when it returns.
func instrumentHook(tier weightsync.Tier, h weightsync.Hook) weightsync.Hook {
	return func(ctx context.Context, snap weightsync.Snapshot) error {
		start := time.Now()
		err := h(ctx, snap)
		metrics.ObserveSyncHook(string(tier), time.Since(start))
		return err
	}
}
