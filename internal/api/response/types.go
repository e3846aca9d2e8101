package response

import "github.com/mcoot/hintrush-go/internal/model"

// RoomResponse is returned from room create and join. The connection
// identifier is how the caller refers to itself in later requests.
type RoomResponse struct {
	Room         model.RoomSnapshot `json:"room"`
	ConnectionID model.ConnectionID `json:"connection_id"`
}

// GuessResponse acknowledges a submitted guess to the guessing client.
// The room-wide verdict travels on the event stream.
type GuessResponse struct {
	Guess      string `json:"guess"`
	Correct    bool   `json:"correct"`
	Won        bool   `json:"won"`
	Late       bool   `json:"late,omitempty"`
	GameOver   bool   `json:"game_over,omitempty"`
	// StatsError is set when the match ended but the durable stats
	// flush failed; the verdict stands, global stats may lag
	StatsError string `json:"stats_error,omitempty"`
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status string `json:"status"`
}
