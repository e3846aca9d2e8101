// Package storage is the durable, cross-session stats store. It holds
// the permanent per-player record; every write is an additive increment
// applied exactly once, at match end.
package storage

import (
	"context"

	"github.com/mcoot/hintrush-go/internal/model"
)

// Store defines the durable stats persistence contract
type Store interface {
	// ApplyMatchDeltas atomically applies one match's accumulated
	// increments, upserting players with no prior record. The whole
	// batch succeeds or fails together; callers must not retry a failed
	// flush, since a partial retry risks double-incrementing.
	ApplyMatchDeltas(ctx context.Context, deltas map[model.PlayerID]model.MatchDelta, names map[model.PlayerID]string) error

	// GetPlayerStats returns a player's all-time stats, or a zeroed
	// record if the player has never finished a match
	GetPlayerStats(ctx context.Context, id model.PlayerID) (*model.GlobalPlayerStats, error)

	// GetGlobalLeaderboard returns every player ordered by match wins
	// descending, round wins descending, then display name
	GetGlobalLeaderboard(ctx context.Context) ([]model.GlobalPlayerStats, error)

	// Close releases the underlying connection
	Close() error
}
