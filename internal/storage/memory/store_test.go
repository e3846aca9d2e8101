package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/hintrush-go/internal/model"
)

func TestApplyMatchDeltasIsAdditive(t *testing.T) {
	store := New()
	ctx := context.Background()

	deltas := map[model.PlayerID]model.MatchDelta{
		"stable-a": {RoundWins: 2, MatchWins: 1},
	}
	names := map[model.PlayerID]string{"stable-a": "Alice"}

	require.NoError(t, store.ApplyMatchDeltas(ctx, deltas, names))
	require.NoError(t, store.ApplyMatchDeltas(ctx, deltas, names))

	stats, err := store.GetPlayerStats(ctx, "stable-a")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.RoundWins)
	assert.Equal(t, 2, stats.MatchWins)
	assert.Equal(t, "Alice", stats.DisplayName)
}

func TestApplyMatchDeltasSkipsZeroDeltas(t *testing.T) {
	store := New()
	ctx := context.Background()

	deltas := map[model.PlayerID]model.MatchDelta{
		"stable-a": {},
		"stable-b": {RoundWins: 1},
	}
	require.NoError(t, store.ApplyMatchDeltas(ctx, deltas, nil))

	board, err := store.GetGlobalLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, model.PlayerID("stable-b"), board[0].PlayerID)
}

func TestApplyMatchDeltasRefreshesDisplayName(t *testing.T) {
	store := New()
	ctx := context.Background()

	delta := map[model.PlayerID]model.MatchDelta{"stable-a": {RoundWins: 1}}
	require.NoError(t, store.ApplyMatchDeltas(ctx, delta, map[model.PlayerID]string{"stable-a": "Alice"}))
	require.NoError(t, store.ApplyMatchDeltas(ctx, delta, map[model.PlayerID]string{"stable-a": "Alicia"}))

	stats, err := store.GetPlayerStats(ctx, "stable-a")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", stats.DisplayName)
	assert.Equal(t, 2, stats.RoundWins)
}

func TestFailNextFlushFailsOnceWithoutApplying(t *testing.T) {
	store := New()
	ctx := context.Background()
	boom := errors.New("connection refused")
	store.FailNextFlush = boom

	deltas := map[model.PlayerID]model.MatchDelta{"stable-a": {RoundWins: 1}}
	err := store.ApplyMatchDeltas(ctx, deltas, nil)
	assert.ErrorIs(t, err, boom)

	stats, statsErr := store.GetPlayerStats(ctx, "stable-a")
	require.NoError(t, statsErr)
	assert.Equal(t, 0, stats.RoundWins)

	// The hook is one-shot
	require.NoError(t, store.ApplyMatchDeltas(ctx, deltas, nil))
}

func TestGetPlayerStatsUnknownPlayerIsZeroed(t *testing.T) {
	store := New()

	stats, err := store.GetPlayerStats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, model.PlayerID("nobody"), stats.PlayerID)
	assert.Equal(t, 0, stats.RoundWins)
	assert.Equal(t, 0, stats.MatchWins)
}

func TestGetPlayerStatsReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.ApplyMatchDeltas(ctx,
		map[model.PlayerID]model.MatchDelta{"stable-a": {RoundWins: 1}}, nil))

	stats, err := store.GetPlayerStats(ctx, "stable-a")
	require.NoError(t, err)
	stats.RoundWins = 99

	again, err := store.GetPlayerStats(ctx, "stable-a")
	require.NoError(t, err)
	assert.Equal(t, 1, again.RoundWins)
}

func TestGetGlobalLeaderboardOrdering(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.ApplyMatchDeltas(ctx, map[model.PlayerID]model.MatchDelta{
		"a": {RoundWins: 5},
		"b": {RoundWins: 2, MatchWins: 1},
		"c": {RoundWins: 4, MatchWins: 1},
	}, map[model.PlayerID]string{"a": "Alice", "b": "Bob", "c": "Carol"}))

	board, err := store.GetGlobalLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 3)
	// Match wins dominate, round wins break the tie
	assert.Equal(t, "Carol", board[0].DisplayName)
	assert.Equal(t, "Bob", board[1].DisplayName)
	assert.Equal(t, "Alice", board[2].DisplayName)
}
