// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open selects the driver from the configured type and pings the server:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"postgres" uses lib/pq; "sqlite" (the default) uses modernc.org/sqlite.
SQLite pools are capped at one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on both PostgreSQL and SQLite.

# Tables

  - app_user: Accounts with bcrypt hashes and a role (admin or user)
  - poll: Poll question and owner
  - poll_option: Ordered option labels, unique per poll
  - poll_session: Live sessions keyed by a unique join code
  - response: The vote ledger, one row per (session, voter)

# Relationships

	app_user 1──* poll
	poll 1──* poll_option
	poll 1──* poll_session
	poll_session 1──* response

All foreign keys use ON DELETE CASCADE.

# Invariants Enforced in Storage

  - poll_session.code is unique
  - idx_poll_session_active: at most one row per poll with ended_at IS NULL
  - response primary key (session_id, voter): one vote per voter per session
*/
package db
