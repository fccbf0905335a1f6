// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, status, client IP, request ID and duration_ms once the
handler returns.

# Authentication

Protected routes require an Authorization: Bearer header carrying a token
issued by POST /auth/login:

	mux.HandleFunc("GET /poll/history", middleware.RequireAuth(secret, handler))

Handlers read the caller's identity with ClaimsFromContext.

# CORS

Cross-origin requests are allowed only from the configured frontend origins:

	handler = middleware.CORS(cfg.AllowedOrigins)(mux)

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
