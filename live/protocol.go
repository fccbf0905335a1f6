// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
)

// Event names on the wire
const (
	// client → server
	EventJoin        = "join"
	EventJoinSession = "joinSession" // accepted alias for older clients
	EventSubmitVote  = "submitVote"

	// server → client
	EventSessionJoined = "sessionJoined"
	EventUpdateResults = "updateResults"
	EventError         = "error"
)

var (
	ErrInvalidInput  = errors.New("invalid input data")
	ErrInvalidOption = errors.New("invalid option")
	// Shared with the store, which rejects votes racing an EndSession
	ErrSessionEnded = store.ErrSessionEnded
)

// Client-facing error strings
const (
	MsgInvalidInput    = "Invalid input data"
	MsgSessionNotFound = "Session not found"
	MsgInvalidOption   = "Invalid option"
	MsgSessionEnded    = "Session has ended"
	MsgInternal        = "Internal server error"
)

// Event is one frame in either direction: {"event": "...", "data": ...}
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

type inbound struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

type JoinRequest struct {
	Code string `json:"code"`
	User string `json:"user"`
}

type VoteRequest struct {
	Code   string `json:"code"`
	User   string `json:"user"`
	Option string `json:"option"`
}

type SessionJoined struct {
	Poll models.PollView `json:"poll"`
	Code string          `json:"code"`
}

// ErrorMessage maps an engine error to the string sent to the client.
// Anything unrecognized is reported as an internal error.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return MsgInvalidInput
	case errors.Is(err, store.ErrSessionNotFound):
		return MsgSessionNotFound
	case errors.Is(err, ErrInvalidOption):
		return MsgInvalidOption
	case errors.Is(err, ErrSessionEnded):
		return MsgSessionEnded
	default:
		return MsgInternal
	}
}

func errorEvent(err error) Event {
	return Event{Name: EventError, Data: ErrorMessage(err)}
}

func resultsEvent(r models.Results) Event {
	return Event{Name: EventUpdateResults, Data: r}
}

func parseInbound(msg []byte) (inbound, error) {
	var in inbound
	if err := json.Unmarshal(msg, &in); err != nil {
		return inbound{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Name == "" {
		return inbound{}, fmt.Errorf("%w: missing event name", ErrInvalidInput)
	}
	return in, nil
}

func decodeData(in inbound, v any) error {
	if len(in.Data) == 0 {
		return fmt.Errorf("%w: missing %s payload", ErrInvalidInput, in.Name)
	}
	if err := json.Unmarshal(in.Data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
