// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tj/assert"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/testutil"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := New(testutil.SetupTestDB(t))

	u := models.User{ID: "u1", Username: "alice", PasswordHash: "hash", Role: models.RoleAdmin, CreatedAt: time.Now().UTC()}
	assert.Nil(t, st.CreateUser(ctx, u))

	err := st.CreateUser(ctx, models.User{ID: "u2", Username: "alice", PasswordHash: "x", Role: models.RoleUser, CreatedAt: time.Now().UTC()})
	assert.Equal(t, ErrUsernameTaken, err)

	got, err := st.UserByUsername(ctx, "alice")
	assert.Nil(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = st.UserByUsername(ctx, "bob")
	assert.Equal(t, ErrUserNotFound, err)
}

func TestPolls(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	adminID := testutil.CreateTestUser(t, conn, "admin", models.RoleAdmin)

	p := models.Poll{
		ID:        "p1",
		Question:  "Favorite color?",
		Options:   []string{"Red", "Blue", "Green"},
		CreatedBy: adminID,
		CreatedAt: time.Now().UTC(),
	}
	assert.Nil(t, st.CreatePoll(ctx, p))

	got, err := st.PollByID(ctx, "p1")
	assert.Nil(t, err)
	assert.Equal(t, "Favorite color?", got.Question)
	// Declared order is preserved
	assert.Equal(t, []string{"Red", "Blue", "Green"}, got.Options)

	_, err = st.PollByID(ctx, "missing")
	assert.Equal(t, ErrPollNotFound, err)

	// Duplicate labels violate UNIQUE (poll_id, label) and roll back the poll
	dup := models.Poll{ID: "p2", Question: "Dup?", Options: []string{"A", "A"}, CreatedBy: adminID, CreatedAt: time.Now().UTC()}
	assert.NotNil(t, st.CreatePoll(ctx, dup))
	_, err = st.PollByID(ctx, "p2")
	assert.Equal(t, ErrPollNotFound, err)

	otherID := testutil.CreateTestUser(t, conn, "other", models.RoleAdmin)
	testutil.CreateTestPoll(t, conn, otherID, "Not mine", "X", "Y")

	polls, err := st.PollsByCreator(ctx, adminID)
	assert.Nil(t, err)
	assert.Len(t, polls, 1)
	assert.Equal(t, []string{"Red", "Blue", "Green"}, polls[0].Options)

	polls, err = st.PollsByCreator(ctx, "nobody")
	assert.Nil(t, err)
	assert.Len(t, polls, 0)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	adminID := testutil.CreateTestUser(t, conn, "admin", models.RoleAdmin)
	poll := testutil.CreateTestPoll(t, conn, adminID, "Q?", "Red", "Blue")

	sess := models.Session{ID: "s1", Code: "ABC123", PollID: poll.ID, StartedAt: time.Now()}
	assert.Nil(t, st.InsertSession(ctx, sess))

	// A second active session for the same poll is refused by the partial index
	err := st.InsertSession(ctx, models.Session{ID: "s2", Code: "XYZ789", PollID: poll.ID, StartedAt: time.Now()})
	assert.Equal(t, ErrActiveSessionExists, err)

	active, err := st.ActiveSession(ctx, poll.ID)
	assert.Nil(t, err)
	assert.Equal(t, "s1", active.ID)

	got, err := st.SessionByCode(ctx, "ABC123")
	assert.Nil(t, err)
	assert.True(t, got.Active())
	assert.Equal(t, poll.ID, got.Poll.ID)
	assert.Equal(t, []string{"Red", "Blue"}, got.Poll.Options)

	_, err = st.SessionByCode(ctx, "NOPE00")
	assert.Equal(t, ErrSessionNotFound, err)

	assert.Nil(t, st.EndSession(ctx, "s1", time.Now()))
	assert.Equal(t, ErrActiveSessionNotFound, st.EndSession(ctx, "s1", time.Now()))

	_, err = st.ActiveSession(ctx, poll.ID)
	assert.Equal(t, ErrActiveSessionNotFound, err)

	// Ended sessions stay queryable
	got, err = st.SessionByCode(ctx, "ABC123")
	assert.Nil(t, err)
	assert.False(t, got.Active())
	assert.NotNil(t, got.EndedAt)

	// Reusing a code is a collision even once the old session ended
	err = st.InsertSession(ctx, models.Session{ID: "s3", Code: "ABC123", PollID: poll.ID, StartedAt: time.Now()})
	assert.Equal(t, ErrCodeTaken, err)

	assert.Nil(t, st.InsertSession(ctx, models.Session{ID: "s3", Code: "NEW456", PollID: poll.ID, StartedAt: time.Now()}))
}

func TestUpsertVote_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	adminID := testutil.CreateTestUser(t, conn, "admin", models.RoleAdmin)
	poll := testutil.CreateTestPoll(t, conn, adminID, "Q?", "Red", "Blue")
	sessionID, _ := testutil.StartTestSession(t, conn, poll.ID)

	now := time.Now()
	assert.Nil(t, st.UpsertVote(ctx, sessionID, "alice", "Red", now))
	assert.Nil(t, st.UpsertVote(ctx, sessionID, "alice", "Blue", now.Add(time.Second)))
	assert.Nil(t, st.UpsertVote(ctx, sessionID, "bob", "Red", now.Add(2*time.Second)))

	ledger, err := st.Ledger(ctx, sessionID)
	assert.Nil(t, err)
	assert.Equal(t, models.Ledger{"alice": "Blue", "bob": "Red"}, ledger)
	assert.Equal(t, 2, testutil.CountResponses(t, conn, sessionID))

	responses, err := st.Responses(ctx, sessionID)
	assert.Nil(t, err)
	assert.Equal(t, []models.Response{{User: "alice", Option: "Blue"}, {User: "bob", Option: "Red"}}, responses)
}

func TestUpsertVote_EndedSession(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	adminID := testutil.CreateTestUser(t, conn, "admin", models.RoleAdmin)
	poll := testutil.CreateTestPoll(t, conn, adminID, "Q?", "Red", "Blue")
	sessionID, _ := testutil.StartTestSession(t, conn, poll.ID)

	assert.Nil(t, st.UpsertVote(ctx, sessionID, "alice", "Red", time.Now()))
	assert.Nil(t, st.EndSession(ctx, sessionID, time.Now()))

	assert.Equal(t, ErrSessionEnded, st.UpsertVote(ctx, sessionID, "alice", "Blue", time.Now()))
	assert.Equal(t, ErrSessionEnded, st.UpsertVote(ctx, sessionID, "bob", "Blue", time.Now()))
	assert.Equal(t, ErrSessionEnded, st.UpsertVote(ctx, "missing", "bob", "Blue", time.Now()))

	ledger, err := st.Ledger(ctx, sessionID)
	assert.Nil(t, err)
	assert.Equal(t, models.Ledger{"alice": "Red"}, ledger)

	// Rejected votes leave the session ended
	_, err = st.ActiveSession(ctx, poll.ID)
	assert.Equal(t, ErrActiveSessionNotFound, err)
}

func TestUpsertVote_Concurrent(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	st := New(conn)
	adminID := testutil.CreateTestUser(t, conn, "admin", models.RoleAdmin)
	poll := testutil.CreateTestPoll(t, conn, adminID, "Q?", "Red", "Blue")
	sessionID, _ := testutil.StartTestSession(t, conn, poll.ID)

	const voters = 20
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voter := fmt.Sprintf("voter-%02d", i)
			// Each voter changes their mind once
			if err := st.UpsertVote(ctx, sessionID, voter, "Red", time.Now()); err != nil {
				t.Errorf("UpsertVote() error = %v", err)
			}
			if err := st.UpsertVote(ctx, sessionID, voter, "Blue", time.Now()); err != nil {
				t.Errorf("UpsertVote() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	ledger, err := st.Ledger(ctx, sessionID)
	assert.Nil(t, err)
	assert.Len(t, ledger, voters)
	for voter, option := range ledger {
		assert.Equal(t, "Blue", option, voter)
	}
}
