// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

/*
Package main is the entry point for the Presage server application.

Presage is a self-hosted preset recommendation engine with explainable
scoring and adaptive weights. It ranks candidate presets against a usage
context, attaches a per-component score breakdown to every result, learns
per-profile weight adjustments from user feedback, and syncs learned state
through a tiered persistence pipeline.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("presage")
	├── SyncSupervisor ("sync-layer")
	│   ├── Sync Scheduler (backend + long-term cadence)
	│   └── Embedded NATS server (optional, -tags nats)
	├── DispatchSupervisor ("dispatch-layer")
	│   └── Dispatch Hub (WebSocket broadcasts)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router, REST + WebSocket endpoints)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Scoring Engine: preset scorer with memoized recommendations
 4. Feedback Store: bounded event history and learned weights
 5. Weight Sync Manager: blend cache, KPI session state, sync hooks
 6. Local Store: BadgerDB persistence tier with startup restore
 7. Backend Tier: NATS JetStream publisher (optional, -tags nats)
 8. Warehouse Tier: DuckDB analytics history (optional, -tags duckdb)
 9. Authentication: JWT or no-auth mode
 10. Supervisor Tree: Suture v4 process supervision
 11. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8090               # HTTP server port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Authentication (choose one mode)
	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<32+ chars>       # Required for JWT mode
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<password>

	# Sync tiers (enable as needed)
	LOCALSTORE_ENABLED=true
	LOCALSTORE_PATH=./data/localstore

	NATS_ENABLED=false
	NATS_URL=nats://localhost:4222
	NATS_EMBEDDED_SERVER=false

	WAREHOUSE_ENABLED=false
	WAREHOUSE_PATH=./data/presage.duckdb

	# Scheduled sync cadence
	SCHEDULER_BACKEND_INTERVAL=5m
	SCHEDULER_LONGTERM_INTERVAL=30m

See .env.example for complete configuration reference.

# Build Tags

Optional build tags enable additional functionality:

	go build ./cmd/server                        # Standard build
	go build -tags nats ./cmd/server             # Enable NATS backend tier
	go build -tags duckdb ./cmd/server           # Enable DuckDB warehouse tier
	go build -tags "nats,duckdb" ./cmd/server    # Enable both

Build tags affect sync hook registration and supervisor tree composition:
  - nats: Registers the JetStream publisher as a backend sync hook and,
    when NATS_EMBEDDED_SERVER=true, adds the embedded server to the sync layer
  - duckdb: Registers the warehouse as a long-term sync hook

Without a tag, enabling the matching tier via configuration logs a warning
and the tier stays inactive.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Broadcasts shutdown to WebSocket clients
 3. Waits for in-flight requests (10s timeout)
 4. Stops the sync scheduler
 5. Flushes learned weights to the local store
 6. Closes the backend publisher and warehouse
 7. Reports any services that failed to stop

# Usage Examples

Development (no auth, in-memory tiers):

	export AUTH_MODE=none
	export LOCALSTORE_IN_MEMORY=true
	go run ./cmd/server

Production (JWT + persistent tiers):

	export AUTH_MODE=jwt
	export JWT_SECRET=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin ADMIN_PASSWORD=secure-password
	export LOCALSTORE_PATH=/data/localstore
	export WAREHOUSE_ENABLED=true WAREHOUSE_PATH=/data/presage.duckdb
	./presage

Docker:

	docker run -d \
	  -e AUTH_MODE=jwt \
	  -e JWT_SECRET=<secret> \
	  -e ADMIN_USERNAME=admin \
	  -e ADMIN_PASSWORD=<password> \
	  -v presage-data:/data \
	  -p 8090:8090 \
	  tomtom215/presage
*/
package main
