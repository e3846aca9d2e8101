package request

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	DisplayName string `json:"display_name"`
	// PlayerID is the caller's stable identity. Optional; the connection
	// identifier stands in when absent.
	PlayerID string `json:"player_id,omitempty"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	DisplayName string `json:"display_name"`
	PlayerID    string `json:"player_id,omitempty"`
}

// StartMatchRequest is the request body for starting a match
type StartMatchRequest struct {
	ConnectionID string `json:"connection_id"`
}

// RoundContentRequest is the request body for supplying round content.
// SecretHash is the one-way hash of the secret word; the plaintext never
// travels.
type RoundContentRequest struct {
	ConnectionID string   `json:"connection_id"`
	SecretHash   string   `json:"secret_hash"`
	Hints        []string `json:"hints"`
}

// GuessRequest is the request body for submitting a guess
type GuessRequest struct {
	ConnectionID string `json:"connection_id"`
	Guess        string `json:"guess"`
	// ElapsedMS is the client-reported time from hint display to guess,
	// in milliseconds. Optional.
	ElapsedMS *int64 `json:"elapsed_ms,omitempty"`
}

// LeaveRoomRequest is the request body for leaving a room
type LeaveRoomRequest struct {
	ConnectionID string `json:"connection_id"`
}
