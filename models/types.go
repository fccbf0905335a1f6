// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// User role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Request types

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Shared by POST /session/start and POST /session/end
type SessionControlRequest struct {
	PollID string `json:"pollId"`
}

// Response types

type RegisterResponse struct {
	Success bool `json:"success"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type StartSessionResponse struct {
	Code      string `json:"code"`
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Domain types

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Poll is immutable once created. Options keep their declared order.
type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasOption reports whether label is one of the poll's options.
func (p Poll) HasOption(label string) bool {
	for _, opt := range p.Options {
		if opt == label {
			return true
		}
	}
	return false
}

// View returns the poll as sent to voters.
func (p Poll) View() PollView {
	return PollView{ID: p.ID, Question: p.Question, Options: p.Options}
}

type PollView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Session is one live instance of a poll. Active iff EndedAt is nil.
type Session struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	PollID    string     `json:"-"`
	Poll      Poll       `json:"poll"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

func (s Session) Active() bool {
	return s.EndedAt == nil
}

// Ledger maps voter identity to chosen option.
type Ledger map[string]string

// Results maps every poll option to its vote count.
type Results map[string]int

// Response is one persisted ledger row, in the order it was last written.
type Response struct {
	User   string `json:"user"`
	Option string `json:"option"`
}

type SessionDocument struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Poll      PollView   `json:"poll"`
	Responses []Response `json:"responses"`
	Results   Results    `json:"results"`
	Total     int        `json:"total"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Active    bool       `json:"active"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
