// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/results"
)

// Store is the slice of the session store the engine needs.
type Store interface {
	SessionByCode(ctx context.Context, code string) (*models.Session, error)
	UpsertVote(ctx context.Context, sessionID, voter, option string, at time.Time) error
	Ledger(ctx context.Context, sessionID string) (models.Ledger, error)
}

// Engine keeps connected viewers of each session in sync with its vote ledger.
// It holds no session state of its own beyond group membership.
type Engine struct {
	store       Store
	groups      *Groups
	concurrency int
	now         func() time.Time
}

// NewEngine creates an engine. concurrency bounds parallel sends per broadcast.
func NewEngine(store Store, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = 50
	}
	return &Engine{
		store:       store,
		groups:      NewGroups(),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Groups exposes the broadcast group registry.
func (e *Engine) Groups() *Groups {
	return e.groups
}

// JoinResult is what the joining connection is told.
type JoinResult struct {
	Poll    models.PollView
	Code    string
	Results models.Results
}

// Dispatch decodes one inbound frame and routes it by event name.
// Failures are reported to conn as an error event and returned; they never
// affect other connections or the session.
func (e *Engine) Dispatch(ctx context.Context, conn Conn, msg []byte) error {
	err := e.dispatch(ctx, conn, msg)
	if err == nil {
		return nil
	}

	if ErrorMessage(err) == MsgInternal {
		slog.Error("live message failed", "conn_id", conn.ID(), "error", err)
	}
	if sendErr := conn.Send(ctx, errorEvent(err)); sendErr != nil {
		slog.Warn("failed to send error event", "conn_id", conn.ID(), "error", sendErr)
	}
	return err
}

func (e *Engine) dispatch(ctx context.Context, conn Conn, msg []byte) error {
	in, err := parseInbound(msg)
	if err != nil {
		return err
	}

	switch in.Name {
	case EventJoin, EventJoinSession:
		var req JoinRequest
		if err := decodeData(in, &req); err != nil {
			return err
		}
		_, err := e.Join(ctx, conn, req.Code, req.User)
		return err

	case EventSubmitVote:
		var req VoteRequest
		if err := decodeData(in, &req); err != nil {
			return err
		}
		return e.SubmitVote(ctx, conn.ID(), req.Code, req.User, req.Option)

	default:
		return ErrInvalidInput
	}
}

// Join attaches conn to the session's broadcast group, sends it the poll,
// then broadcasts current results to the whole group (joiner included).
func (e *Engine) Join(ctx context.Context, conn Conn, code, voter string) (*JoinResult, error) {
	code = auth.NormalizeCode(code)
	if code == "" || strings.TrimSpace(voter) == "" {
		return nil, ErrInvalidInput
	}

	sess, err := e.store.SessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// Leave any previous session before joining this one
	if prev, ok := e.groups.MembershipOf(conn.ID()); ok && prev != sess.Code {
		e.groups.Detach(conn.ID())
	}

	g := e.groups.acquire(sess.Code)
	defer e.groups.release(g)

	ledger, err := e.store.Ledger(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	e.groups.attach(g, conn)

	res := &JoinResult{
		Poll:    sess.Poll.View(),
		Code:    sess.Code,
		Results: results.Aggregate(sess.Poll.Options, ledger),
	}

	joined := Event{Name: EventSessionJoined, Data: SessionJoined{Poll: res.Poll, Code: res.Code}}
	if err := conn.Send(ctx, joined); err != nil {
		slog.Warn("failed to send session joined", "conn_id", conn.ID(), "error", err)
	}
	e.broadcast(ctx, g, res.Results)

	slog.Info("connection joined session", "conn_id", conn.ID(), "code", sess.Code, "user", strings.TrimSpace(voter))
	return res, nil
}

// SubmitVote records voter's choice (replacing any earlier one) and
// broadcasts fresh results to the session's group.
func (e *Engine) SubmitVote(ctx context.Context, connID, code, voter, option string) error {
	code = auth.NormalizeCode(code)
	voter = strings.TrimSpace(voter)
	if code == "" || voter == "" || option == "" {
		return ErrInvalidInput
	}

	sess, err := e.store.SessionByCode(ctx, code)
	if err != nil {
		return err
	}
	if !sess.Active() {
		return ErrSessionEnded
	}
	if !sess.Poll.HasOption(option) {
		return ErrInvalidOption
	}

	g := e.groups.acquire(sess.Code)
	defer e.groups.release(g)

	if err := e.store.UpsertVote(ctx, sess.ID, voter, option, e.now()); err != nil {
		return err
	}

	// Recompute from the persisted ledger, never incrementally
	ledger, err := e.store.Ledger(ctx, sess.ID)
	if err != nil {
		return err
	}
	e.broadcast(ctx, g, results.Aggregate(sess.Poll.Options, ledger))

	slog.Info("vote recorded", "conn_id", connID, "code", sess.Code, "user", voter)
	return nil
}

// Disconnect removes connID from its group. Votes are kept.
func (e *Engine) Disconnect(connID string) {
	if code, ok := e.groups.Detach(connID); ok {
		slog.Info("connection left session", "conn_id", connID, "code", code)
	}
}

// broadcast sends results to every member; caller holds g via acquire
func (e *Engine) broadcast(ctx context.Context, g *SessionBroadcastGroup, r models.Results) {
	ev := resultsEvent(r)

	var eg errgroup.Group
	eg.SetLimit(e.concurrency)
	for _, c := range g.snapshot() {
		eg.Go(func() error {
			if err := c.Send(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("failed to send results", "conn_id", c.ID(), "code", g.code, "error", err)
			}
			return nil
		})
	}
	eg.Wait()
}
