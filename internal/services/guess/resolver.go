// Package guess resolves submitted guesses. The secret comparison is
// asynchronous work done outside the room lock, so two correct guesses
// can both be in flight at once; the resolver re-checks round state and
// atomically seals the round before committing a win, which is what
// guarantees at most one winner per round.
package guess

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/mcoot/hintrush-go/internal/broadcast"
	"github.com/mcoot/hintrush-go/internal/dependencies/clock"
	"github.com/mcoot/hintrush-go/internal/leaderboard"
	"github.com/mcoot/hintrush-go/internal/metrics"
	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/registry"
	"github.com/mcoot/hintrush-go/internal/services/match"
)

// Resolver arbitrates guesses for all rooms
type Resolver struct {
	registry  *registry.Registry
	cache     leaderboard.Cache
	verifier  SecretVerifier
	publisher broadcast.Publisher
	match     *match.Controller
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewResolver creates a new guess Resolver
func NewResolver(
	reg *registry.Registry,
	cache leaderboard.Cache,
	verifier SecretVerifier,
	publisher broadcast.Publisher,
	matchController *match.Controller,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		registry:  reg,
		cache:     cache,
		verifier:  verifier,
		publisher: publisher,
		match:     matchController,
		clock:     clk,
		metrics:   m,
		logger:    logger.With(slog.String("component", "guess")),
	}
}

// Result is the acknowledgment returned to the guessing connection
type Result struct {
	Correct bool
	// Won is true only for the guess that sealed the round
	Won bool
	// Late marks a correct guess that lost the race to the seal
	Late bool
	// GameOver is true when this guess ended the match
	GameOver bool
}

// roundView is the state captured under the lock before the
// asynchronous comparison starts
type roundView struct {
	secretHash string
	round      int
	playerName string
	stableID   model.PlayerID
}

// SubmitGuess validates, verifies, and scores a guess.
func (r *Resolver) SubmitGuess(ctx context.Context, code model.RoomCode, conn model.ConnectionID, rawGuess string, elapsedMS *int64) (*Result, error) {
	cleaned, err := NormalizeGuess(rawGuess)
	if err != nil {
		return nil, err
	}
	r.metrics.GuessesSubmitted.Inc()

	// Phase 1: capture round state under the lock
	var view roundView
	err = r.registry.WithRoom(code, func(room *model.Room) error {
		if room.Phase != model.PhaseRoundActive || room.Content == nil {
			return model.ErrGameNotActive
		}
		player := room.GetPlayer(conn)
		if player == nil {
			return model.ErrNotInRoom
		}
		view = roundView{
			secretHash: room.Content.SecretHash,
			round:      room.Round,
			playerName: player.DisplayName,
			stableID:   room.StableID(conn),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Phase 2: the suspension window. Other guesses for this room can be
	// dispatched while this comparison runs.
	correct, err := r.verifier.Verify(ctx, view.secretHash, cleaned)
	if err != nil {
		return nil, err
	}

	elapsed := sanitizeElapsed(elapsedMS)

	if !correct {
		r.publishGuess(code, conn, view.playerName, cleaned, false, false, elapsed)
		return &Result{Correct: false}, nil
	}

	// Phase 3: re-check and claim. The comparison came back correct, but
	// the round may have been sealed, advanced, or torn down while it
	// ran; only the state as it is now decides whether this guess wins.
	var (
		won      bool
		outcome  *match.Outcome
		resolved model.RoundResolvedPayload
	)
	err = r.registry.WithRoom(code, func(room *model.Room) error {
		if room.Phase != model.PhaseRoundActive || room.Round != view.round || room.RoundSealed {
			return nil // correct but late
		}

		// Seal first: from this point no other comparison can win round
		room.RoundSealed = true
		room.Phase = model.PhaseRoundResolved
		won = true

		entry := room.EnsureScoreEntry(conn, view.playerName)
		entry.Wins++
		if elapsed != nil {
			entry.TotalTime += time.Duration(*elapsed) * time.Millisecond
			entry.TimedWins++
		}

		room.NameByStableID[view.stableID] = view.playerName
		room.EnsureDelta(view.stableID).RoundWins++

		isFinal := room.Round >= room.MaxRounds
		resolved = model.RoundResolvedPayload{
			Round:        room.Round,
			WinnerConn:   conn,
			WinnerName:   view.playerName,
			Guess:        cleaned,
			ElapsedMS:    elapsed,
			IsFinalRound: isFinal,
		}

		now := r.clock.Now()
		if isFinal {
			outcome = r.buildOutcomeLocked(room)
			room.Phase = model.PhaseMatchEnded
			room.Content = nil
		} else {
			room.Round++
			room.Content = nil
			room.RoundSealed = false
			room.Phase = model.PhaseAwaitingRoundContent
		}
		room.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !won {
		r.metrics.LateCorrectGuesses.Inc()
		r.publishGuess(code, conn, view.playerName, cleaned, true, true, elapsed)
		r.logger.Info("correct guess lost the seal race",
			slog.String("room", string(code)),
			slog.Int("round", view.round),
			slog.String("player", view.playerName))
		return &Result{Correct: true, Late: true}, nil
	}

	r.metrics.RoundsResolved.Inc()
	r.publishGuess(code, conn, view.playerName, cleaned, true, false, elapsed)

	// Cache tier: atomic increments, best-effort
	if err := r.cache.EnsurePlayer(ctx, code, view.stableID, view.playerName); err == nil {
		if err := r.cache.AddRoundWin(ctx, code, view.stableID); err != nil {
			r.logger.Warn("cache round win update failed",
				slog.String("room", string(code)),
				slog.String("error", err.Error()))
		} else if entries, err := r.cache.GetRoom(ctx, code); err == nil {
			r.publisher.Publish(code, model.Event{
				Type:      model.EventLeaderboardUpdate,
				RoomCode:  code,
				Timestamp: r.clock.Now(),
				Payload:   entries,
			})
		}
	}

	r.publisher.Publish(code, model.Event{
		Type:      model.EventRoundResolved,
		RoomCode:  code,
		Timestamp: r.clock.Now(),
		Payload:   resolved,
	})

	r.logger.Info("round resolved",
		slog.String("room", string(code)),
		slog.Int("round", resolved.Round),
		slog.String("winner", view.playerName))

	if outcome == nil {
		// Next round awaits host content
		_ = r.registry.PublishSnapshot(code)
		return &Result{Correct: true, Won: true}, nil
	}

	result := &Result{Correct: true, Won: true, GameOver: true}
	if err := r.match.CompleteMatch(ctx, code, *outcome); err != nil {
		// The match still ended for the players; the flush failure is an
		// operator concern, surfaced in the acknowledgment
		_ = r.registry.PublishSnapshot(code)
		return result, err
	}
	_ = r.registry.PublishSnapshot(code)
	return result, nil
}

// buildOutcomeLocked computes the final scoreboard, applies match-win
// credits to the delta set, and snapshots everything the reconciliation
// needs. Caller holds the room lock.
func (r *Resolver) buildOutcomeLocked(room *model.Room) *match.Outcome {
	winners := room.MatchWinners()
	for _, id := range winners {
		room.EnsureDelta(id).MatchWins++
	}

	deltas := make(map[model.PlayerID]model.MatchDelta, len(room.MatchDeltas))
	for id, d := range room.MatchDeltas {
		deltas[id] = *d
	}
	names := make(map[model.PlayerID]string, len(room.NameByStableID))
	for id, name := range room.NameByStableID {
		names[id] = name
	}

	return &match.Outcome{
		Scoreboard: model.ScoreboardRows(room.BuildScoreboard()),
		Winners:    winners,
		Deltas:     deltas,
		Names:      names,
	}
}

func (r *Resolver) publishGuess(code model.RoomCode, conn model.ConnectionID, name, guess string, correct, late bool, elapsed *int64) {
	r.publisher.Publish(code, model.Event{
		Type:      model.EventGuessRecorded,
		RoomCode:  code,
		Timestamp: r.clock.Now(),
		Payload: model.GuessRecordedPayload{
			ConnID:      conn,
			DisplayName: name,
			Guess:       guess,
			Correct:     correct,
			Late:        late,
			ElapsedMS:   elapsed,
		},
	})
}

// NormalizeGuess upper-cases the guess and enforces the allowed
// alphabet: letters with optional interior spaces. Client-side
// filtering is not trusted.
func NormalizeGuess(raw string) (string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", model.ErrInvalidGuess
	}
	for _, r := range cleaned {
		if !unicode.IsLetter(r) && r != ' ' {
			return "", model.ErrInvalidGuess
		}
	}
	return cleaned, nil
}

// sanitizeElapsed keeps an elapsed time only if it is a usable
// non-negative value; otherwise the win counts with an unknown time
func sanitizeElapsed(ms *int64) *int64 {
	if ms == nil || *ms < 0 {
		return nil
	}
	v := *ms
	return &v
}
