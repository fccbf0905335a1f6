// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - RegisterRequest: username, password, role
  - LoginRequest: username, password
  - CreatePollRequest: question, options
  - SessionControlRequest: pollId (start and end)

# Response Types

  - RegisterResponse: success
  - LoginResponse: token, role
  - StartSessionResponse: code, sessionId, question
  - MessageResponse: message
  - SessionDocument: a session with its poll, responses and results
  - ErrorResponse: error, message

# Domain Types

  - User: account with a role
  - Poll: question and ordered option labels, immutable once created
  - Session: one live run of a poll, active until EndedAt is set
  - Ledger: voter → chosen option, at most one entry per voter
  - Results: option → vote count, every option present

# Constants

Roles:

	RoleAdmin = "admin"
	RoleUser  = "user"
*/
package models
