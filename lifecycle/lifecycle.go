// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
)

var (
	ErrForbidden     = errors.New("administrator privilege required")
	ErrCodeExhausted = errors.New("could not allocate a unique session code")
)

// codeAttempts bounds retries when a generated code collides.
const codeAttempts = 8

// Store is the persistence the manager needs.
type Store interface {
	PollByID(ctx context.Context, id string) (*models.Poll, error)
	ActiveSession(ctx context.Context, pollID string) (*models.Session, error)
	InsertSession(ctx context.Context, sess models.Session) error
	EndSession(ctx context.Context, sessionID string, at time.Time) error
	Ledger(ctx context.Context, sessionID string) (models.Ledger, error)
}

// Manager starts and ends poll sessions on behalf of administrators.
type Manager struct {
	store   Store
	now     func() time.Time
	newCode func() (string, error)
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:   store,
		now:     time.Now,
		newCode: auth.GenerateSessionCode,
	}
}

// StartSession opens a new session for pollID with a fresh join code.
// At most one session per poll may be active.
func (m *Manager) StartSession(ctx context.Context, pollID, role string) (*models.Session, error) {
	if role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	poll, err := m.store.PollByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	if _, err := m.store.ActiveSession(ctx, poll.ID); err == nil {
		return nil, store.ErrActiveSessionExists
	} else if !errors.Is(err, store.ErrActiveSessionNotFound) {
		return nil, err
	}

	sess := models.Session{
		ID:        uuid.NewString(),
		PollID:    poll.ID,
		Poll:      *poll,
		StartedAt: m.now().UTC(),
	}

	for attempt := 1; attempt <= codeAttempts; attempt++ {
		sess.Code, err = m.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session code: %w", err)
		}

		err = m.store.InsertSession(ctx, sess)
		if err == nil {
			slog.Info("session started",
				"poll_id", poll.ID,
				"session_id", sess.ID,
				"code", sess.Code,
				"options", len(poll.Options),
			)
			return &sess, nil
		}
		if !errors.Is(err, store.ErrCodeTaken) {
			// Includes ErrActiveSessionExists when another admin won the race
			return nil, err
		}
		slog.Warn("session code collision", "poll_id", poll.ID, "attempt", attempt)
	}

	return nil, ErrCodeExhausted
}

// EndSession closes the poll's active session. Connected viewers are not
// notified; further votes are rejected by the live engine.
func (m *Manager) EndSession(ctx context.Context, pollID, role string) (*models.Session, error) {
	if role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	sess, err := m.store.ActiveSession(ctx, pollID)
	if err != nil {
		return nil, err
	}

	endedAt := m.now().UTC()
	if err := m.store.EndSession(ctx, sess.ID, endedAt); err != nil {
		return nil, err
	}
	sess.EndedAt = &endedAt

	votes := -1
	if ledger, err := m.store.Ledger(ctx, sess.ID); err == nil {
		votes = len(ledger)
	} else {
		slog.Warn("failed to count votes for ended session", "session_id", sess.ID, "error", err)
	}

	slog.Info("session ended",
		"poll_id", pollID,
		"session_id", sess.ID,
		"code", sess.Code,
		"ran_for", humanize.RelTime(sess.StartedAt, endedAt, "", ""),
		"votes", humanize.Comma(int64(votes)),
	)
	return sess, nil
}
