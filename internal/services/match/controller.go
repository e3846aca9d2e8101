// Package match drives the round state machine: starting matches,
// accepting host-supplied round content, and reconciling the three
// scoring tiers when the final round resolves.
package match

import (
	"context"
	"log/slog"

	"github.com/mcoot/hintrush-go/internal/broadcast"
	"github.com/mcoot/hintrush-go/internal/dependencies/clock"
	"github.com/mcoot/hintrush-go/internal/leaderboard"
	"github.com/mcoot/hintrush-go/internal/metrics"
	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/registry"
	"github.com/mcoot/hintrush-go/internal/storage"
)

// Controller manages match lifecycle for rooms
type Controller struct {
	registry  *registry.Registry
	cache     leaderboard.Cache
	store     storage.Store
	publisher broadcast.Publisher
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewController creates a new match Controller
func NewController(
	reg *registry.Registry,
	cache leaderboard.Cache,
	store storage.Store,
	publisher broadcast.Publisher,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry:  reg,
		cache:     cache,
		store:     store,
		publisher: publisher,
		clock:     clk,
		metrics:   m,
		logger:    logger.With(slog.String("component", "match")),
	}
}

// StartMatch begins a new match. Host only. Resets the match ledger and
// the delta set for every current player, moves to round 1 awaiting
// content, and emits a distinct match_started signal ahead of the
// snapshot so clients can switch views immediately.
func (c *Controller) StartMatch(ctx context.Context, code model.RoomCode, conn model.ConnectionID) error {
	var started model.MatchStartedPayload
	err := c.registry.WithRoom(code, func(room *model.Room) error {
		if !room.IsHost(conn) {
			return model.ErrNotHost
		}
		if room.Phase.InMatch() {
			return model.ErrGameAlreadyStarted
		}

		now := c.clock.Now()
		room.Phase = model.PhaseMatchStarting

		// Fresh ledger and delta set for everyone currently present
		room.MatchDeltas = make(map[model.PlayerID]*model.MatchDelta)
		for _, p := range room.Players {
			room.Scores[p.ConnID] = &model.MatchScoreEntry{DisplayName: p.DisplayName}
			room.EnsureDelta(room.StableID(p.ConnID))
		}

		room.Round = 1
		room.Content = nil
		room.RoundSealed = false
		room.Phase = model.PhaseAwaitingRoundContent
		room.UpdatedAt = now

		started = model.MatchStartedPayload{
			RoomCode:  code,
			Round:     room.Round,
			MaxRounds: room.MaxRounds,
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("match started", slog.String("room", string(code)))

	c.publisher.Publish(code, model.Event{
		Type:      model.EventMatchStarted,
		RoomCode:  code,
		Timestamp: c.clock.Now(),
		Payload:   started,
	})
	return c.registry.PublishSnapshot(code)
}

// SupplyRoundContent stores the host-supplied round content and opens
// the round. Host only: the content collaborator is called exactly once
// per round by a single authority, so every player sees identical
// content. The content is broadcast (hash and hints only) to everyone
// including the host.
func (c *Controller) SupplyRoundContent(ctx context.Context, code model.RoomCode, conn model.ConnectionID, content model.RoundContent) error {
	if content.SecretHash == "" || len(content.Hints) == 0 {
		return model.ErrContentUnavailable
	}

	var payload model.RoundContentPayload
	err := c.registry.WithRoom(code, func(room *model.Room) error {
		if !room.IsHost(conn) {
			return model.ErrNotHost
		}
		if room.Phase != model.PhaseAwaitingRoundContent {
			return model.ErrGameNotActive
		}

		now := c.clock.Now()
		contentCopy := content
		room.Content = &contentCopy
		room.RoundSealed = false
		room.RoundStartedAt = now
		room.Phase = model.PhaseRoundActive
		room.UpdatedAt = now

		payload = model.RoundContentPayload{
			Round:      room.Round,
			SecretHash: content.SecretHash,
			Hints:      content.Hints,
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("round content supplied",
		slog.String("room", string(code)),
		slog.Int("round", payload.Round))

	c.publisher.Publish(code, model.Event{
		Type:      model.EventRoundContent,
		RoomCode:  code,
		Timestamp: c.clock.Now(),
		Payload:   payload,
	})
	return nil
}

// Results is the current scoreboard view for a room, served so a
// results page can load on refresh
type Results struct {
	RoomCode    model.RoomCode               `json:"room_code"`
	Round       int                          `json:"round"`
	Phase       model.MatchPhase             `json:"phase"`
	Scoreboard  []model.ScoreboardRow        `json:"scoreboard"`
	Leaderboard []model.RoomLeaderboardEntry `json:"leaderboard,omitempty"`
}

// FetchResults returns the room's current scoreboard and leaderboard
func (c *Controller) FetchResults(ctx context.Context, code model.RoomCode) (*Results, error) {
	results := &Results{RoomCode: code}
	err := c.registry.WithRoom(code, func(room *model.Room) error {
		results.Round = room.Round
		results.Phase = room.Phase
		results.Scoreboard = model.ScoreboardRows(room.BuildScoreboard())
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries, err := c.cache.GetRoom(ctx, code)
	if err != nil {
		// The scoreboard is still useful without the cache tier
		c.logger.Warn("leaderboard fetch failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
	} else {
		results.Leaderboard = entries
	}
	return results, nil
}

// Outcome carries everything the guess resolver computed under the room
// lock when the final round sealed
type Outcome struct {
	Scoreboard []model.ScoreboardRow
	Winners    []model.PlayerID
	Deltas     map[model.PlayerID]model.MatchDelta
	Names      map[model.PlayerID]string
}

// CompleteMatch reconciles the scoring tiers after the final round.
// Cache increments and the durable flush happen outside the room lock;
// a flush failure is surfaced for manual reconciliation and never
// silently retried, because a retry risks double-incrementing. The
// match_ended broadcast goes out regardless so players are not stuck.
func (c *Controller) CompleteMatch(ctx context.Context, code model.RoomCode, outcome Outcome) error {
	for _, winner := range outcome.Winners {
		name := outcome.Names[winner]
		if err := c.cache.EnsurePlayer(ctx, code, winner, name); err == nil {
			if err := c.cache.AddMatchWin(ctx, code, winner); err != nil {
				c.logger.Warn("cache match win update failed",
					slog.String("room", string(code)),
					slog.String("player", string(winner)),
					slog.String("error", err.Error()))
			}
		}
	}

	var flushErr error
	if err := c.store.ApplyMatchDeltas(ctx, outcome.Deltas, outcome.Names); err != nil {
		c.metrics.PersistenceFailures.Inc()
		c.logger.Error("match-end durable flush failed, manual reconciliation required",
			slog.String("room", string(code)),
			slog.Int("players", len(outcome.Deltas)),
			slog.String("error", err.Error()))
		flushErr = model.ErrPersistenceFailure
	}

	ended := model.MatchEndedPayload{
		RoomCode:   code,
		Scoreboard: outcome.Scoreboard,
		Winners:    outcome.Winners,
		MaxRounds:  c.registry.Config().MaxRounds,
	}
	if entries, err := c.cache.GetRoom(ctx, code); err == nil {
		ended.Leaderboard = entries
		c.publisher.Publish(code, model.Event{
			Type:      model.EventLeaderboardUpdate,
			RoomCode:  code,
			Timestamp: c.clock.Now(),
			Payload:   entries,
		})
	}

	c.publisher.Publish(code, model.Event{
		Type:      model.EventMatchEnded,
		RoomCode:  code,
		Timestamp: c.clock.Now(),
		Payload:   ended,
	})

	c.metrics.MatchesCompleted.Inc()
	c.logger.Info("match ended",
		slog.String("room", string(code)),
		slog.Int("winners", len(outcome.Winners)))

	return flushErr
}
