// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential, token, and identifier utilities.

# Bearer Tokens

Tokens are HS256 JWTs carrying the user ID, username, role and expiry:

	token, err := auth.IssueToken(auth.NewClaims(id, username, "admin", exp), secret)
	claims, err := auth.ParseToken(token, secret, time.Now())

Only HS256 is accepted. Tokens are not stored; validation only needs the
secret.

# Passwords

Passwords are hashed with bcrypt (cost 10):

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

# Session Codes

Join codes are 6 characters drawn from 0-9A-Z (about 2.2 billion values):

	code, err := auth.GenerateSessionCode()

Codes are case-insensitive; NormalizeCode trims and upper-cases user input
before any lookup.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
