// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the livepoll API server.

livepoll runs live poll sessions: an administrator creates a poll and starts
a session, participants join with a short code, and every vote is pushed to
everyone watching the session as it happens.

# Starting the Server

The server requires environment variables or CLI flags for configuration.
A .env file in the working directory is loaded first if present.

	DATABASE_URL=livepoll.db TOKEN_SECRET=... go run .

Or with flags:

	go run . -p 4000 -t postgres -d "postgres://..." --token-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - TOKEN_SECRET (--token-secret): Secret for signing bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 4000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TOKEN_TTL (--token-ttl): Bearer token lifetime (default: 24h)
  - FRONTEND_URL (--origin): Allowed browser origins (default: http://localhost:3000)
  - BROADCAST_CONCURRENCY (--broadcast-concurrency): Parallel sends per broadcast (default: 50)

# Architecture

  - handlers: HTTP and websocket handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, bearer auth, JSON helpers
  - live: Session synchronization engine
  - lifecycle: Session start and end
  - results: Result aggregation
  - store: Persistence for users, polls, sessions and votes
  - models: Request/response and domain types
  - auth: IDs, session codes, passwords and tokens
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
