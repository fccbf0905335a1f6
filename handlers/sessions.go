// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/lifecycle"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/results"
	"github.com/danielhkuo/livepoll/store"
)

type SessionHandler struct {
	store   *store.Store
	manager *lifecycle.Manager
	cfg     cliparse.Config
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config) *SessionHandler {
	st := store.New(db)
	return &SessionHandler{store: st, manager: lifecycle.NewManager(st), cfg: cfg}
}

// Start handles POST /session/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims, pollID, ok := parseSessionControl(w, r)
	if !ok {
		return
	}

	sess, err := h.manager.StartSession(r.Context(), pollID, claims.Role)
	if err != nil {
		writeLifecycleError(w, "start", pollID, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StartSessionResponse{
		Code:      sess.Code,
		SessionID: sess.ID,
		Question:  sess.Poll.Question,
	})
}

// End handles POST /session/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	claims, pollID, ok := parseSessionControl(w, r)
	if !ok {
		return
	}

	if _, err := h.manager.EndSession(r.Context(), pollID, claims.Role); err != nil {
		writeLifecycleError(w, "end", pollID, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Session ended"})
}

// Get handles GET /session/{code}
// Works for active and ended sessions alike.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := auth.NormalizeCode(r.PathValue("code"))
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session code is required")
		return
	}

	sess, err := h.store.SessionByCode(r.Context(), code)
	if errors.Is(err, store.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "code", code, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	responses, err := h.store.Responses(r.Context(), sess.ID)
	if err != nil {
		slog.Error("failed to query responses", "code", code, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	ledger := make(models.Ledger, len(responses))
	for _, resp := range responses {
		ledger[resp.User] = resp.Option
	}

	counts := results.Aggregate(sess.Poll.Options, ledger)
	middleware.JSONResponse(w, http.StatusOK, models.SessionDocument{
		ID:        sess.ID,
		Code:      sess.Code,
		Poll:      sess.Poll.View(),
		Responses: responses,
		Results:   counts,
		Total:     results.Total(counts),
		StartedAt: sess.StartedAt,
		EndedAt:   sess.EndedAt,
		Active:    sess.Active(),
	})
}

func parseSessionControl(w http.ResponseWriter, r *http.Request) (auth.Claims, string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "No token")
		return auth.Claims{}, "", false
	}

	var req models.SessionControlRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return auth.Claims{}, "", false
	}
	pollID := strings.TrimSpace(req.PollID)
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "pollId is required")
		return auth.Claims{}, "", false
	}
	return claims, pollID, true
}

func writeLifecycleError(w http.ResponseWriter, op, pollID string, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrForbidden):
		middleware.ErrorResponse(w, http.StatusForbidden, "Admin only")
	case errors.Is(err, store.ErrPollNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, store.ErrActiveSessionExists):
		middleware.ErrorResponse(w, http.StatusConflict, "Active session already exists")
	case errors.Is(err, store.ErrActiveSessionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "No active session")
	default:
		slog.Error("session lifecycle failed", "op", op, "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// requireAdmin writes 401/403 and returns false unless the caller is an admin
func requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "No token")
		return auth.Claims{}, false
	}
	if claims.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "Admin only")
		return auth.Claims{}, false
	}
	return claims, true
}
