package model

import "time"

// EventType identifies the type of event pushed to a room's connections
type EventType string

const (
	// EventRoomSnapshot is sent after any mutation to room membership or phase
	EventRoomSnapshot EventType = "room_snapshot"
	// EventMatchStarted is a distinct signal so clients can switch views
	// immediately without waiting for the next content push
	EventMatchStarted EventType = "match_started"
	// EventRoundContent carries the round's secret hash and hints
	EventRoundContent EventType = "round_content"
	// EventGuessRecorded is sent for every guess, with its verdict
	EventGuessRecorded EventType = "guess_recorded"
	// EventRoundResolved is sent when a round has a winner
	EventRoundResolved EventType = "round_resolved"
	// EventLeaderboardUpdate carries the refreshed room leaderboard
	EventLeaderboardUpdate EventType = "leaderboard_update"
	// EventMatchEnded carries the final scoreboard and leaderboards
	EventMatchEnded EventType = "match_ended"
)

// Event is the base structure for all pushed events
type Event struct {
	Type      EventType  `json:"type"`
	RoomCode  RoomCode   `json:"room_code"`
	Timestamp time.Time  `json:"timestamp"`
	Payload   any        `json:"payload,omitempty"`
}

// RoomSnapshot is the payload for room snapshot events, and the result
// of join/create operations
type RoomSnapshot struct {
	RoomCode  RoomCode         `json:"room_code"`
	HostConn  ConnectionID     `json:"host_id"`
	Players   []SnapshotPlayer `json:"players"`
	Phase     MatchPhase       `json:"phase"`
	Round     int              `json:"round"`
	MaxRounds int              `json:"max_rounds"`
}

// SnapshotPlayer is a player as seen in a snapshot
type SnapshotPlayer struct {
	ConnID      ConnectionID `json:"id"`
	DisplayName string       `json:"name"`
}

// Snapshot builds the broadcastable view of the room's current state
func (r *Room) Snapshot() RoomSnapshot {
	players := make([]SnapshotPlayer, len(r.Players))
	for i, p := range r.Players {
		players[i] = SnapshotPlayer{ConnID: p.ConnID, DisplayName: p.DisplayName}
	}
	return RoomSnapshot{
		RoomCode:  r.Code,
		HostConn:  r.HostConn,
		Players:   players,
		Phase:     r.Phase,
		Round:     r.Round,
		MaxRounds: r.MaxRounds,
	}
}

// MatchStartedPayload contains data for match started events
type MatchStartedPayload struct {
	RoomCode  RoomCode `json:"room_code"`
	Round     int      `json:"round"`
	MaxRounds int      `json:"max_rounds"`
}

// RoundContentPayload contains data for round content events. The
// secret travels only as its one-way hash.
type RoundContentPayload struct {
	Round      int      `json:"round"`
	SecretHash string   `json:"secret_hash"`
	Hints      []string `json:"hints"`
}

// GuessRecordedPayload contains data for guess recorded events
type GuessRecordedPayload struct {
	ConnID      ConnectionID `json:"player_id"`
	DisplayName string       `json:"player_name"`
	Guess       string       `json:"guess"`
	Correct     bool         `json:"correct"`
	// Late marks a correctly-spelled guess that arrived after the round
	// was already sealed; broadcast for transparency, never scored
	Late      bool   `json:"late,omitempty"`
	ElapsedMS *int64 `json:"elapsed_ms"`
}

// RoundResolvedPayload contains data for round resolved events
type RoundResolvedPayload struct {
	Round       int          `json:"round"`
	WinnerConn  ConnectionID `json:"player_id"`
	WinnerName  string       `json:"player_name"`
	Guess       string       `json:"guess"`
	ElapsedMS   *int64       `json:"elapsed_ms"`
	IsFinalRound bool        `json:"is_final_round"`
}

// ScoreboardRow is one row of the scoreboard as broadcast to clients
type ScoreboardRow struct {
	ConnID      ConnectionID `json:"player_id"`
	DisplayName string       `json:"name"`
	Wins        int          `json:"wins"`
	TotalMS     int64        `json:"total_ms"`
	AvgMS       *int64       `json:"avg_ms"`
}

// MatchEndedPayload contains data for match ended events
type MatchEndedPayload struct {
	RoomCode    RoomCode               `json:"room_code"`
	MaxRounds   int                    `json:"max_rounds"`
	Scoreboard  []ScoreboardRow        `json:"scoreboard"`
	Winners     []PlayerID             `json:"winners"`
	Leaderboard []RoomLeaderboardEntry `json:"leaderboard,omitempty"`
}

// ScoreboardRows converts scoreboard entries to their broadcast form
func ScoreboardRows(entries []ScoreboardEntry) []ScoreboardRow {
	rows := make([]ScoreboardRow, len(entries))
	for i, e := range entries {
		rows[i] = ScoreboardRow{
			ConnID:      e.ConnID,
			DisplayName: e.DisplayName,
			Wins:        e.Wins,
			TotalMS:     e.TotalTime.Milliseconds(),
		}
		if e.AvgTime != nil {
			ms := e.AvgTime.Milliseconds()
			rows[i].AvgMS = &ms
		}
	}
	return rows
}
