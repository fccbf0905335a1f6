// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store persists users, polls, sessions and the per-session vote
// ledger. Queries are written to run unchanged on PostgreSQL and SQLite.
package store
