// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
)

type PollHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{store: store.New(db), cfg: cfg}
}

// CreatePoll handles POST /poll/create
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}
	options, msg := validateOptions(req.Options)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	poll := models.Poll{
		ID:        uuid.NewString(),
		Question:  question,
		Options:   options,
		CreatedBy: claims.UserID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreatePoll(r.Context(), poll); err != nil {
		slog.Error("failed to create poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "creator", claims.Username, "options", len(options))
	middleware.JSONResponse(w, http.StatusOK, poll)
}

// History handles GET /poll/history
func (h *PollHandler) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	polls, err := h.store.PollsByCreator(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// GetPoll handles GET /poll/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	poll, err := h.store.PollByID(r.Context(), pollID)
	if errors.Is(err, store.ErrPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// validateOptions trims labels and rejects blank or duplicate ones.
// Returns the cleaned list, or a client message.
func validateOptions(raw []string) ([]string, string) {
	if len(raw) == 0 {
		return nil, "at least one option is required"
	}

	seen := make(map[string]bool, len(raw))
	options := make([]string, 0, len(raw))
	for _, opt := range raw {
		label := strings.TrimSpace(opt)
		if label == "" {
			return nil, "options must not be blank"
		}
		if seen[label] {
			return nil, "options must be distinct"
		}
		seen[label] = true
		options = append(options, label)
	}
	return options, ""
}
