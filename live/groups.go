// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"sync"
)

// Conn is one client connection as seen by the engine.
// Send must not block for long; transports queue and return.
type Conn interface {
	ID() string
	Send(ctx context.Context, ev Event) error
}

// SessionBroadcastGroup is the set of connections attached to one session.
// mu also serializes ledger writes and broadcasts for the session, so viewers
// see snapshots in persistence order.
type SessionBroadcastGroup struct {
	code    string
	mu      sync.Mutex
	members map[string]Conn

	refs int // guarded by Groups.mu
}

func (g *SessionBroadcastGroup) Code() string {
	return g.code
}

// snapshot copies the member list; caller holds mu
func (g *SessionBroadcastGroup) snapshot() []Conn {
	conns := make([]Conn, 0, len(g.members))
	for _, c := range g.members {
		conns = append(conns, c)
	}
	return conns
}

// Groups maps session codes to broadcast groups and connections to the one
// group they belong to. A group exists while it has members or while an
// operation holds it, so idle and ended sessions cost nothing.
//
// Lock order: a group's mu may be held while taking Groups.mu, never the
// reverse.
type Groups struct {
	mu       sync.Mutex
	byCode   map[string]*SessionBroadcastGroup
	memberOf map[string]string // conn ID -> code
}

func NewGroups() *Groups {
	return &Groups{
		byCode:   make(map[string]*SessionBroadcastGroup),
		memberOf: make(map[string]string),
	}
}

// acquire returns the group for code with its mu held, creating it on
// first use. Every acquire must be paired with release.
func (gs *Groups) acquire(code string) *SessionBroadcastGroup {
	gs.mu.Lock()
	g, ok := gs.byCode[code]
	if !ok {
		g = &SessionBroadcastGroup{code: code, members: make(map[string]Conn)}
		gs.byCode[code] = g
	}
	g.refs++
	gs.mu.Unlock()

	g.mu.Lock()
	return g
}

// release unlocks g and drops it once it has no members and no other holder.
// A group is only removed while nobody can be waiting on its lock, so a
// later acquire never splits a session across two locks.
func (gs *Groups) release(g *SessionBroadcastGroup) {
	empty := len(g.members) == 0

	gs.mu.Lock()
	g.refs--
	if g.refs == 0 && empty {
		delete(gs.byCode, g.code)
	}
	gs.mu.Unlock()

	g.mu.Unlock()
}

// Len returns the number of live groups.
func (gs *Groups) Len() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return len(gs.byCode)
}

// Size returns the number of connections attached to code.
func (gs *Groups) Size(code string) int {
	gs.mu.Lock()
	g, ok := gs.byCode[code]
	gs.mu.Unlock()
	if !ok {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

// MembershipOf returns the code of the group connID is attached to.
func (gs *Groups) MembershipOf(connID string) (string, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	code, ok := gs.memberOf[connID]
	return code, ok
}

// attach adds conn to g; caller holds g via acquire
func (gs *Groups) attach(g *SessionBroadcastGroup, conn Conn) {
	g.members[conn.ID()] = conn

	gs.mu.Lock()
	gs.memberOf[conn.ID()] = g.code
	gs.mu.Unlock()
}

// Detach removes connID from whatever group it is in. Safe to call for
// unknown connections.
func (gs *Groups) Detach(connID string) (string, bool) {
	gs.mu.Lock()
	code, ok := gs.memberOf[connID]
	delete(gs.memberOf, connID)
	g := gs.byCode[code]
	if g != nil {
		g.refs++
	}
	gs.mu.Unlock()

	if !ok || g == nil {
		return "", false
	}

	g.mu.Lock()
	delete(g.members, connID)
	gs.release(g)
	return code, true
}
