// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the livepoll API.

# Route Registration

NewRouter builds the handler tree for the server:

	handler := router.NewRouter(db, cfg)

Every request passes through request IDs, panic recovery and CORS before
reaching the mux.

# Endpoints

Health:

	GET /health
	GET /

Accounts (public):

	POST /auth/register - Create an account
	POST /auth/login    - Get a bearer token

Polls (bearer token; create and history are admin only):

	POST /poll/create  - Create poll
	GET  /poll/history - Polls created by the caller
	GET  /poll/{id}    - Poll details

Sessions (start and end need an admin token; the document is public):

	POST /session/start  - Start a session, returns the join code
	POST /session/end    - End the poll's active session
	GET  /session/{code} - Session document with results

Live:

	GET /ws - Websocket for join, submitVote and result updates
*/
package router
