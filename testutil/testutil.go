// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/models"
)

// SetupTestDB creates a fresh SQLite database with the full schema.
// Each test gets its own file under t.TempDir(), closed on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "livepoll_test.db")
	conn, err := db.Open(db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                 4000,
		DatabaseURL:          "file:test.db",
		DatabaseType:         db.TypeSQLite,
		TokenSecret:          "test-token-secret",
		TokenTTL:             time.Hour,
		AllowedOrigins:       []string{"http://localhost:3000"},
		BroadcastConcurrency: 4,
	}
}

// CreateTestUser inserts an account and returns its ID
// role should be "admin" or "user"
func CreateTestUser(t *testing.T, db *sql.DB, username, role string) string {
	t.Helper()

	userID, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO app_user (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, username, "not-a-real-hash", role, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// CreateTestPoll inserts a poll with the given options in order
func CreateTestPoll(t *testing.T, db *sql.DB, createdBy, question string, options ...string) models.Poll {
	t.Helper()

	pollID, _ := auth.GenerateID(16)
	createdAt := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO poll (id, question, created_by, created_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, question, createdBy, createdAt)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, label := range options {
		_, err := db.Exec(`
			INSERT INTO poll_option (poll_id, sort_order, label)
			VALUES ($1, $2, $3)
		`, pollID, i, label)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
	}

	return models.Poll{
		ID:        pollID,
		Question:  question,
		Options:   options,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
	}
}

// StartTestSession inserts an active session and returns its ID and code
func StartTestSession(t *testing.T, db *sql.DB, pollID string) (sessionID, code string) {
	t.Helper()

	sessionID, _ = auth.GenerateID(16)
	code, _ = auth.GenerateSessionCode()
	_, err := db.Exec(`
		INSERT INTO poll_session (id, code, poll_id, started_at)
		VALUES ($1, $2, $3, $4)
	`, sessionID, code, pollID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID, code
}

// EndTestSession marks a session as ended
func EndTestSession(t *testing.T, db *sql.DB, sessionID string) {
	t.Helper()

	_, err := db.Exec(`UPDATE poll_session SET ended_at = $1 WHERE id = $2`, time.Now().UTC(), sessionID)
	if err != nil {
		t.Fatalf("Failed to end test session: %v", err)
	}
}

// CountResponses returns the number of ledger rows for a session
func CountResponses(t *testing.T, db *sql.DB, sessionID string) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM response WHERE session_id = $1`, sessionID).Scan(&n); err != nil {
		t.Fatalf("Failed to count responses: %v", err)
	}
	return n
}

// TestToken issues a bearer token for the given identity
func TestToken(t *testing.T, cfg cliparse.Config, userID, username, role string) string {
	t.Helper()

	claims := auth.NewClaims(userID, username, role, time.Now().Add(cfg.TokenTTL))
	token, err := auth.IssueToken(claims, cfg.TokenSecret)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// BearerHeader builds the Authorization header map for MakeRequest
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
