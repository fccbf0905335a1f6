// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 4000)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - TokenSecret: Secret for bearer token signatures (required)
  - TokenTTL: Bearer token lifetime (default: 24h)
  - AllowedOrigins: Origins allowed for CORS and websocket upgrades
  - BroadcastConcurrency: Max concurrent sends per result broadcast (default: 50)

# CLI Flags

	-p, --port              Server port
	-d, --database-url      Database URL
	-t, --database-type     sqlite or postgres
	--token-secret          Token signing secret
	--token-ttl             Token lifetime (e.g. 12h)
	--origin                Allowed origin (repeatable)
	--broadcast-concurrency Fan-out limit

# Environment Variables

Flags fall back to environment variables:

	PORT                  → -p
	DATABASE_URL          → -d
	DATABASE_TYPE         → -t
	TOKEN_SECRET          → --token-secret
	TOKEN_TTL             → --token-ttl
	FRONTEND_URL          → --origin (comma separated)
	BROADCAST_CONCURRENCY → --broadcast-concurrency

CLI flags take precedence over environment variables. main loads a .env file
into the environment before parsing, if one exists.

# Validation

ParseFlags returns an error if required values are missing or invalid:

  - DATABASE_URL must be provided
  - TOKEN_SECRET must be provided
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
