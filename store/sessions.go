// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/livepoll/models"
)

// InsertSession persists a new active session.
// Returns ErrActiveSessionExists if the poll already has one, or ErrCodeTaken
// if the code collides with an existing session.
func (s *Store) InsertSession(ctx context.Context, sess models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO poll_session (id, code, poll_id, started_at)
		VALUES ($1, $2, $3, $4)
	`, sess.ID, sess.Code, sess.PollID, utc(sess.StartedAt))
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	// Either index may have fired; the active-session one takes precedence
	if _, activeErr := s.ActiveSession(ctx, sess.PollID); activeErr == nil {
		return ErrActiveSessionExists
	}
	return ErrCodeTaken
}

// ActiveSession returns the poll's session with no end time, without its poll.
func (s *Store) ActiveSession(ctx context.Context, pollID string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, poll_id, started_at
		FROM poll_session
		WHERE poll_id = $1 AND ended_at IS NULL
	`, pollID).Scan(&sess.ID, &sess.Code, &sess.PollID, &sess.StartedAt)
	if err == sql.ErrNoRows {
		return nil, ErrActiveSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}
	return &sess, nil
}

// EndSession sets ended_at if the session is still active.
func (s *Store) EndSession(ctx context.Context, sessionID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll_session
		SET ended_at = $1
		WHERE id = $2 AND ended_at IS NULL
	`, utc(at), sessionID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if n == 0 {
		return ErrActiveSessionNotFound
	}
	return nil
}

// SessionByCode looks up a session by its normalized code, with its poll populated.
func (s *Store) SessionByCode(ctx context.Context, code string) (*models.Session, error) {
	var sess models.Session
	var endedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.code, s.poll_id, s.started_at, s.ended_at,
		       p.id, p.question, p.created_by, p.created_at
		FROM poll_session s
		JOIN poll p ON p.id = s.poll_id
		WHERE s.code = $1
	`, code).Scan(
		&sess.ID, &sess.Code, &sess.PollID, &sess.StartedAt, &endedAt,
		&sess.Poll.ID, &sess.Poll.Question, &sess.Poll.CreatedBy, &sess.Poll.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if endedAt.Valid {
		t := endedAt.Time
		sess.EndedAt = &t
	}

	sess.Poll.Options, err = s.options(ctx, sess.PollID)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// UpsertVote records voter's choice, replacing any earlier one.
// Returns ErrSessionEnded if the session is no longer active. The session
// row is locked for the write, so a concurrent EndSession commits either
// before the vote (which is then rejected) or after it.
func (s *Store) UpsertVote(ctx context.Context, sessionID, voter, option string, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// No-op write; takes the row lock only while the session is active
	res, err := tx.ExecContext(ctx, `
		UPDATE poll_session
		SET ended_at = NULL
		WHERE id = $1 AND ended_at IS NULL
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}
	if n == 0 {
		return ErrSessionEnded
	}

	// A single statement, so concurrent voters never lose each other's rows
	_, err = tx.ExecContext(ctx, `
		INSERT INTO response (session_id, voter, choice, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, voter)
		DO UPDATE SET choice = excluded.choice, updated_at = excluded.updated_at
	`, sessionID, voter, option, utc(at))
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vote: %w", err)
	}
	return nil
}

// Ledger returns the session's voter -> option mapping.
func (s *Store) Ledger(ctx context.Context, sessionID string) (models.Ledger, error) {
	responses, err := s.Responses(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ledger := make(models.Ledger, len(responses))
	for _, r := range responses {
		ledger[r.User] = r.Option
	}
	return ledger, nil
}

// Responses returns the ledger rows in the order they were last written.
func (s *Store) Responses(ctx context.Context, sessionID string) ([]models.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT voter, choice
		FROM response
		WHERE session_id = $1
		ORDER BY updated_at, voter
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	responses := []models.Response{}
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.User, &r.Option); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read responses: %w", err)
	}
	return responses, nil
}
