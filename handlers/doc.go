// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the livepoll API.

# Handler Types

Each REST handler is a struct built from *sql.DB and Config:

  - AuthHandler: account registration and login
  - PollHandler: poll creation and lookup
  - SessionHandler: session start, end and the session document
  - SocketHandler: the live session websocket

REST handlers are constructed directly:

	pollHandler := handlers.NewPollHandler(db, cfg)

SocketHandler instead takes the shared *live.Engine, so that every
connection in the process broadcasts through the same session groups.

# Accounts

	POST /auth/register → Register (username, password, role)
	POST /auth/login    → Login (returns a bearer token and role)

# Polls and Sessions

Admin-only routes check the role carried by the bearer token:

	POST /poll/create    → CreatePoll
	GET  /poll/history   → History
	GET  /poll/{id}      → GetPoll
	POST /session/start  → Start (returns the join code)
	POST /session/end    → End
	GET  /session/{code} → Get (poll, responses and results)

Get needs no token, since participants join sessions anonymously.

# Live Sessions

GET /ws upgrades to a websocket. Each connection gets a write goroutine fed
by a bounded queue; a client that falls behind is disconnected rather than
slowing down the rest of its session. See package live for the frame format.
*/
package handlers
