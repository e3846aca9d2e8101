package match

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hintrush-go/internal/broadcast"
	"github.com/mcoot/hintrush-go/internal/dependencies/mocks"
	"github.com/mcoot/hintrush-go/internal/leaderboard"
	"github.com/mcoot/hintrush-go/internal/metrics"
	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/registry"
	memorystore "github.com/mcoot/hintrush-go/internal/storage/memory"
	"github.com/mcoot/hintrush-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	cache      *leaderboard.MemoryCache
	store      *memorystore.Store
	events     *broadcast.Capture
	registry   *registry.Registry
	controller *Controller
	ctx        context.Context

	hostConn model.ConnectionID
	bobConn  model.ConnectionID
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.cache = leaderboard.NewMemory()
	s.store = memorystore.New()
	s.events = broadcast.NewCapture()
	m := metrics.New("test", prometheus.NewRegistry())

	s.registry = registry.New(registry.DefaultConfig(), s.clock, s.random, s.cache, s.events, m, logger)
	s.controller = NewController(s.registry, s.cache, s.store, s.events, s.clock, m, logger)
	s.ctx = context.Background()

	s.random.QueueString("ABCD")
	_, hostConn, err := s.registry.CreateRoom(s.ctx, "Alice", "stable-a")
	s.Require().NoError(err)
	_, bobConn, err := s.registry.JoinRoom(s.ctx, "ABCD", "Bob", "stable-b", "")
	s.Require().NoError(err)
	s.hostConn = hostConn
	s.bobConn = bobConn
}

func (s *ControllerSuite) TestStartMatchHostOnly() {
	err := s.controller.StartMatch(s.ctx, "ABCD", s.bobConn)
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *ControllerSuite) TestStartMatchUnknownRoom() {
	err := s.controller.StartMatch(s.ctx, "ZZZZ", s.hostConn)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestStartMatchResetsLedger() {
	s.Require().NoError(s.controller.StartMatch(s.ctx, "ABCD", s.hostConn))

	s.Require().NoError(s.registry.WithRoom("ABCD", func(room *model.Room) error {
		s.Equal(model.PhaseAwaitingRoundContent, room.Phase)
		s.Equal(1, room.Round)
		s.Nil(room.Content)
		s.False(room.RoundSealed)

		// Every current player has a zeroed score entry and delta
		s.Len(room.Scores, 2)
		s.Equal(0, room.Scores[s.hostConn].Wins)
		s.Equal("Alice", room.Scores[s.hostConn].DisplayName)
		s.Contains(room.MatchDeltas, model.PlayerID("stable-a"))
		s.Contains(room.MatchDeltas, model.PlayerID("stable-b"))
		return nil
	}))

	started := s.events.EventsOfType(model.EventMatchStarted)
	s.Require().Len(started, 1)
	payload := started[0].Payload.(model.MatchStartedPayload)
	s.Equal(1, payload.Round)
	s.Equal(3, payload.MaxRounds)
}

func (s *ControllerSuite) TestStartMatchRejectedWhileInProgress() {
	s.Require().NoError(s.controller.StartMatch(s.ctx, "ABCD", s.hostConn))

	err := s.controller.StartMatch(s.ctx, "ABCD", s.hostConn)
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

func (s *ControllerSuite) TestSupplyRoundContentOpensRound() {
	s.Require().NoError(s.controller.StartMatch(s.ctx, "ABCD", s.hostConn))

	content := model.RoundContent{SecretHash: "$2a$hash", Hints: []string{"a fruit", "keeps doctors away"}}
	s.Require().NoError(s.controller.SupplyRoundContent(s.ctx, "ABCD", s.hostConn, content))

	s.Require().NoError(s.registry.WithRoom("ABCD", func(room *model.Room) error {
		s.Equal(model.PhaseRoundActive, room.Phase)
		s.Require().NotNil(room.Content)
		s.Equal("$2a$hash", room.Content.SecretHash)
		s.Equal(s.clock.Now(), room.RoundStartedAt)
		return nil
	}))

	broadcastContent := s.events.EventsOfType(model.EventRoundContent)
	s.Require().Len(broadcastContent, 1)
	payload := broadcastContent[0].Payload.(model.RoundContentPayload)
	s.Equal(1, payload.Round)
	s.Equal([]string{"a fruit", "keeps doctors away"}, payload.Hints)
}

func (s *ControllerSuite) TestSupplyRoundContentValidation() {
	s.Require().NoError(s.controller.StartMatch(s.ctx, "ABCD", s.hostConn))

	for _, content := range []model.RoundContent{
		{SecretHash: "", Hints: []string{"hint"}},
		{SecretHash: "$2a$hash", Hints: nil},
	} {
		err := s.controller.SupplyRoundContent(s.ctx, "ABCD", s.hostConn, content)
		s.ErrorIs(err, model.ErrContentUnavailable)
	}
}

func (s *ControllerSuite) TestSupplyRoundContentHostOnly() {
	s.Require().NoError(s.controller.StartMatch(s.ctx, "ABCD", s.hostConn))

	content := model.RoundContent{SecretHash: "$2a$hash", Hints: []string{"hint"}}
	err := s.controller.SupplyRoundContent(s.ctx, "ABCD", s.bobConn, content)
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *ControllerSuite) TestSupplyRoundContentRequiresAwaitingPhase() {
	content := model.RoundContent{SecretHash: "$2a$hash", Hints: []string{"hint"}}

	// Still in the lobby
	err := s.controller.SupplyRoundContent(s.ctx, "ABCD", s.hostConn, content)
	s.ErrorIs(err, model.ErrGameNotActive)

	// Round already open
	s.Require().NoError(s.controller.StartMatch(s.ctx, "ABCD", s.hostConn))
	s.Require().NoError(s.controller.SupplyRoundContent(s.ctx, "ABCD", s.hostConn, content))
	err = s.controller.SupplyRoundContent(s.ctx, "ABCD", s.hostConn, content)
	s.ErrorIs(err, model.ErrGameNotActive)
}

func (s *ControllerSuite) TestFetchResultsLobbyRoom() {
	results, err := s.controller.FetchResults(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ABCD"), results.RoomCode)
	s.Equal(model.PhaseLobby, results.Phase)

	// Joining seeds a zeroed ledger row per player, so a lobby room's
	// scoreboard lists everyone at zero, name order
	s.Require().Len(results.Scoreboard, 2)
	s.Equal("Alice", results.Scoreboard[0].DisplayName)
	s.Equal("Bob", results.Scoreboard[1].DisplayName)
	for _, row := range results.Scoreboard {
		s.Equal(0, row.Wins)
		s.Nil(row.AvgMS)
	}

	s.Len(results.Leaderboard, 2)
}

func (s *ControllerSuite) TestFetchResultsUnknownRoom() {
	_, err := s.controller.FetchResults(s.ctx, "ZZZZ")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestFetchResultsMidMatchScoreboard() {
	s.Require().NoError(s.controller.StartMatch(s.ctx, "ABCD", s.hostConn))
	s.Require().NoError(s.registry.WithRoom("ABCD", func(room *model.Room) error {
		room.Scores[s.bobConn].Wins = 2
		room.Scores[s.bobConn].TotalTime = 3 * time.Second
		room.Scores[s.bobConn].TimedWins = 2
		return nil
	}))

	results, err := s.controller.FetchResults(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(results.Scoreboard, 2)
	s.Equal("Bob", results.Scoreboard[0].DisplayName)
	s.Equal(2, results.Scoreboard[0].Wins)
	s.Require().NotNil(results.Scoreboard[0].AvgMS)
	s.Equal(int64(1500), *results.Scoreboard[0].AvgMS)
}

func (s *ControllerSuite) TestCompleteMatchCreditsAllTiers() {
	outcome := Outcome{
		Scoreboard: []model.ScoreboardRow{{ConnID: s.hostConn, DisplayName: "Alice", Wins: 2}},
		Winners:    []model.PlayerID{"stable-a"},
		Deltas: map[model.PlayerID]model.MatchDelta{
			"stable-a": {RoundWins: 2, MatchWins: 1},
			"stable-b": {RoundWins: 1},
		},
		Names: map[model.PlayerID]string{"stable-a": "Alice", "stable-b": "Bob"},
	}

	s.Require().NoError(s.controller.CompleteMatch(s.ctx, "ABCD", outcome))

	// Cache tier credited for the winner
	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("stable-a"), entries[0].PlayerID)
	s.Equal(1, entries[0].MatchWins)

	// Durable tier credited additively for everyone in the delta set
	aliceStats, err := s.store.GetPlayerStats(s.ctx, "stable-a")
	s.Require().NoError(err)
	s.Equal(2, aliceStats.RoundWins)
	s.Equal(1, aliceStats.MatchWins)
	bobStats, err := s.store.GetPlayerStats(s.ctx, "stable-b")
	s.Require().NoError(err)
	s.Equal(1, bobStats.RoundWins)

	ended := s.events.EventsOfType(model.EventMatchEnded)
	s.Require().Len(ended, 1)
	payload := ended[0].Payload.(model.MatchEndedPayload)
	s.Equal([]model.PlayerID{"stable-a"}, payload.Winners)
	s.Len(payload.Leaderboard, 2)
}

func (s *ControllerSuite) TestCompleteMatchFlushFailureStillBroadcasts() {
	s.store.FailNextFlush = context.DeadlineExceeded

	outcome := Outcome{
		Winners: []model.PlayerID{"stable-a"},
		Deltas:  map[model.PlayerID]model.MatchDelta{"stable-a": {RoundWins: 1, MatchWins: 1}},
		Names:   map[model.PlayerID]string{"stable-a": "Alice"},
	}

	err := s.controller.CompleteMatch(s.ctx, "ABCD", outcome)
	s.ErrorIs(err, model.ErrPersistenceFailure)

	// Not retried, not partially applied
	stats, statsErr := s.store.GetPlayerStats(s.ctx, "stable-a")
	s.Require().NoError(statsErr)
	s.Equal(0, stats.RoundWins)
	s.Equal(0, stats.MatchWins)

	// Players still see the match end
	s.Len(s.events.EventsOfType(model.EventMatchEnded), 1)
}

func (s *ControllerSuite) TestCompleteMatchAppliesDeltasAcrossMatches() {
	outcome := Outcome{
		Winners: []model.PlayerID{"stable-a"},
		Deltas:  map[model.PlayerID]model.MatchDelta{"stable-a": {RoundWins: 2, MatchWins: 1}},
		Names:   map[model.PlayerID]string{"stable-a": "Alice"},
	}
	s.Require().NoError(s.controller.CompleteMatch(s.ctx, "ABCD", outcome))
	s.Require().NoError(s.controller.CompleteMatch(s.ctx, "ABCD", outcome))

	stats, err := s.store.GetPlayerStats(s.ctx, "stable-a")
	s.Require().NoError(err)
	s.Equal(4, stats.RoundWins)
	s.Equal(2, stats.MatchWins)
}
