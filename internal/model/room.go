package model

import "time"

// RoomCode is a human-readable identifier for joining rooms
type RoomCode string

// ConnectionID identifies a single live connection to the server.
// It is transient: a player who reconnects gets a fresh one.
type ConnectionID string

// PlayerID is the stable identity of a player. It survives reconnects
// and is the key for all score aggregation. When the identity provider
// supplies nothing, it falls back to the connection identifier.
type PlayerID string

// MatchPhase represents where a room is in the match lifecycle
type MatchPhase string

const (
	// PhaseLobby - no match in progress, players can join
	PhaseLobby MatchPhase = "lobby"
	// PhaseMatchStarting - transient phase while a match is being set up
	PhaseMatchStarting MatchPhase = "match_starting"
	// PhaseAwaitingRoundContent - waiting for the host to supply the round's word and hints
	PhaseAwaitingRoundContent MatchPhase = "awaiting_round_content"
	// PhaseRoundActive - a round is live and guesses are accepted
	PhaseRoundActive MatchPhase = "round_active"
	// PhaseRoundResolved - transient phase between a round win and the next transition
	PhaseRoundResolved MatchPhase = "round_resolved"
	// PhaseMatchEnded - match finished; the room is idle and re-startable
	PhaseMatchEnded MatchPhase = "match_ended"
)

// InMatch reports whether a match is currently being played
func (p MatchPhase) InMatch() bool {
	switch p {
	case PhaseMatchStarting, PhaseAwaitingRoundContent, PhaseRoundActive, PhaseRoundResolved:
		return true
	}
	return false
}

// Player represents a participant in a room, scoped to one connection
type Player struct {
	ConnID      ConnectionID
	StableID    PlayerID
	DisplayName string
	JoinedAt    time.Time
}

// RoundContent is the host-supplied content for one round: the one-way
// hash of the secret word plus hints of increasing specificity. The
// plaintext word never reaches the server or any other client.
type RoundContent struct {
	SecretHash string
	Hints      []string
}

// MatchScoreEntry tracks a player's wins and cumulative guess time for
// the current match. Discarded when the room is deleted.
type MatchScoreEntry struct {
	DisplayName string
	Wins        int
	// TotalTime is the sum of elapsed guess times for rounds where the
	// client reported a usable elapsed time. Wins with an unknown time
	// still count toward Wins but not toward TotalTime.
	TotalTime time.Duration
	// TimedWins counts only the wins that contributed to TotalTime
	TimedWins int
}

// MatchDelta accumulates the stat increments earned by one stable
// player since the current match started. Flushed to the durable store
// exactly once, at match end.
type MatchDelta struct {
	RoundWins int
	MatchWins int
}

// IsZero reports whether the delta carries nothing worth persisting
func (d MatchDelta) IsZero() bool {
	return d.RoundWins == 0 && d.MatchWins == 0
}

// Room is a live multiplayer session. All fields are guarded by the
// registry's per-room lock; nothing outside the registry mutates a Room
// except through that lock.
type Room struct {
	Code      RoomCode
	HostConn  ConnectionID
	Players   []Player // insertion order = display order
	Phase     MatchPhase
	Round     int
	MaxRounds int

	// Content is the current round's content; nil outside RoundActive
	Content *RoundContent
	// RoundSealed is the atomic claim on the current round. Set when the
	// first correct guess commits; any later correct comparison for the
	// same round is treated as late.
	RoundSealed bool
	// RoundStartedAt is when the current round's content was supplied
	RoundStartedAt time.Time

	// Scores is the match-scoped ledger, keyed by connection
	Scores map[ConnectionID]*MatchScoreEntry
	// StableIDByConn maps transient connections to stable identities
	StableIDByConn map[ConnectionID]PlayerID
	// NameByStableID keeps the latest display name per stable identity
	NameByStableID map[PlayerID]string
	// MatchDeltas is the to-be-persisted delta set for the current match
	MatchDeltas map[PlayerID]*MatchDelta

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetPlayer returns the player for the given connection, or nil
func (r *Room) GetPlayer(conn ConnectionID) *Player {
	for i := range r.Players {
		if r.Players[i].ConnID == conn {
			return &r.Players[i]
		}
	}
	return nil
}

// GetPlayerByStableID returns the first player with the given stable
// identity, or nil. Used for reconnect detection.
func (r *Room) GetPlayerByStableID(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].StableID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// IsHost reports whether the connection is the room's host
func (r *Room) IsHost(conn ConnectionID) bool {
	return r.HostConn == conn
}

// IsEmpty reports whether no players remain
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// StableID resolves a connection to its stable identity, falling back
// to the connection identifier itself
func (r *Room) StableID(conn ConnectionID) PlayerID {
	if id, ok := r.StableIDByConn[conn]; ok && id != "" {
		return id
	}
	return PlayerID(conn)
}

// EnsureScoreEntry seeds a zeroed ledger entry for the connection if absent
func (r *Room) EnsureScoreEntry(conn ConnectionID, name string) *MatchScoreEntry {
	if entry, ok := r.Scores[conn]; ok {
		return entry
	}
	entry := &MatchScoreEntry{DisplayName: name}
	r.Scores[conn] = entry
	return entry
}

// EnsureDelta seeds a zeroed delta for the stable identity if absent
func (r *Room) EnsureDelta(id PlayerID) *MatchDelta {
	if d, ok := r.MatchDeltas[id]; ok {
		return d
	}
	d := &MatchDelta{}
	r.MatchDeltas[id] = d
	return d
}
