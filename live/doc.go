// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live keeps every viewer of a poll session in sync with its vote ledger.

# Protocol

Frames are JSON objects with an event name and a payload:

	{"event": "join",       "data": {"code": "AB12CD", "user": "alice"}}
	{"event": "submitVote", "data": {"code": "AB12CD", "user": "alice", "option": "Red"}}

joinSession is accepted as an alias for join. The server answers with:

	sessionJoined  {"poll": {...}, "code": "AB12CD"}   joiner only
	updateResults  {"Red": 0, "Blue": 1}               whole group
	error          "Session not found"                 sender only

# Engine

Engine.Join, Engine.SubmitVote and Engine.Disconnect are the three
operations. Every vote is persisted before results are recomputed from the
full ledger and broadcast, and a per-session lock keeps broadcasts in the
same order as the writes that produced them.

The engine does not know about websockets. Transports implement Conn and feed
raw frames to Engine.Dispatch.
*/
package live
