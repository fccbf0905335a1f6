// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package lifecycle starts and ends poll sessions. Only administrators may
// do either, and a poll has at most one active session at a time.
package lifecycle
