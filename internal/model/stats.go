package model

// RoomLeaderboardEntry is a room-scoped aggregate for one stable
// player: round and match wins accrued across every match played in
// that room. Lives in the volatile cache for the room's lifetime.
type RoomLeaderboardEntry struct {
	PlayerID    PlayerID `json:"player_id"`
	DisplayName string   `json:"display_name"`
	RoundWins   int      `json:"round_wins"`
	MatchWins   int      `json:"match_wins"`
}

// GlobalPlayerStats is the durable, all-time aggregate for one stable
// player. Mutated only by additive increments at match end.
type GlobalPlayerStats struct {
	PlayerID    PlayerID `json:"player_id"`
	DisplayName string   `json:"display_name"`
	RoundWins   int      `json:"round_wins"`
	MatchWins   int      `json:"match_wins"`
}
