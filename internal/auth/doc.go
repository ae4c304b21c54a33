// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

/*
Package auth provides authentication for the Presage API.

This package implements bearer-token authentication for a single admin
credential pair. It sits between incoming HTTP requests and the API
handlers; general request rate limiting and CORS live in the router
middleware, not here.

Key Components:

  - JWTManager: Token generation and validation using HMAC-SHA256
  - CredentialStore: Admin credential verification with bcrypt hashing
  - LoginLimiter: Per-IP throttle for the login endpoint
  - Middleware: Authenticate and RequireAdmin HTTP middleware

Authentication Modes:

The server supports two modes (configured via AUTH_MODE):

 1. JWT Mode (default): POST /api/v1/auth/login exchanges the admin
    credentials for a signed token with configurable expiry. Tokens are
    accepted from the Authorization header or the "token" cookie.

 2. None: authentication disabled. Intended for development; config
    validation refuses this mode in production.

Usage Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	creds, err := auth.NewCredentialStore(cfg.Security.AdminUsername,
	    cfg.Security.AdminPassword, cfg.Security.BcryptCost)
	if err != nil {
	    return err
	}
	mw, err := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode)
	if err != nil {
	    return err
	}
	router.Use(mw.Authenticate)
*/
package auth
