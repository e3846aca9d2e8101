// Package leaderboard is the room-scoped, volatile win aggregate. An
// entry lives for the lifetime of its room, across matches, and is
// purged when the reaper deletes the room. The durable store keeps the
// permanent record, so nothing of lasting value is lost on purge.
package leaderboard

import (
	"context"

	"github.com/mcoot/hintrush-go/internal/model"
)

// Cache is the volatile per-room leaderboard store
type Cache interface {
	// EnsurePlayer seeds a zeroed entry for the player if absent, and
	// refreshes the display name either way
	EnsurePlayer(ctx context.Context, code model.RoomCode, id model.PlayerID, name string) error

	// AddRoundWin atomically increments the player's round wins
	AddRoundWin(ctx context.Context, code model.RoomCode, id model.PlayerID) error

	// AddMatchWin atomically increments the player's match wins
	AddMatchWin(ctx context.Context, code model.RoomCode, id model.PlayerID) error

	// GetRoom returns every entry for the room, ordered by match wins
	// descending, round wins descending, then display name
	GetRoom(ctx context.Context, code model.RoomCode) ([]model.RoomLeaderboardEntry, error)

	// DeleteRoom discards the room's whole aggregate
	DeleteRoom(ctx context.Context, code model.RoomCode) error
}
