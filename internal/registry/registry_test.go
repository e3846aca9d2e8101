package registry

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
	"github.com/mcoot/hintrush-go/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	cache    *leaderboard.MemoryCache
	events   *broadcast.Capture
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.cache = leaderboard.NewMemory()
	s.events = broadcast.NewCapture()
	m := metrics.New("test", prometheus.NewRegistry())
	s.registry = New(DefaultConfig(), s.clock, s.random, s.cache, s.events, m, testutil.NopLogger())
	s.ctx = context.Background()
}

// CreateRoom tests

func (s *RegistrySuite) TestCreateRoomSucceeds() {
	s.random.QueueString("ABCD")

	snapshot, connID, err := s.registry.CreateRoom(s.ctx, "Alice", "stable-a")
	s.Require().NoError(err)

	s.Equal(model.RoomCode("ABCD"), snapshot.RoomCode)
	s.Equal(model.PhaseLobby, snapshot.Phase)
	s.Require().Len(snapshot.Players, 1)
	s.Equal("Alice", snapshot.Players[0].DisplayName)
	s.Equal(connID, snapshot.HostConn)
	s.Equal(1, s.registry.RoomCount())
}

func (s *RegistrySuite) TestCreateRoomRetriesOnCodeCollision() {
	s.random.QueueString("ABCD", "ABCD", "EFGH")

	first, _, err := s.registry.CreateRoom(s.ctx, "Alice", "")
	s.Require().NoError(err)
	second, _, err := s.registry.CreateRoom(s.ctx, "Bob", "")
	s.Require().NoError(err)

	s.Equal(model.RoomCode("ABCD"), first.RoomCode)
	s.Equal(model.RoomCode("EFGH"), second.RoomCode)
}

func (s *RegistrySuite) TestCreateRoomBlankNameFallsBack() {
	s.random.QueueString("ABCD")

	snapshot, _, err := s.registry.CreateRoom(s.ctx, "   ", "")
	s.Require().NoError(err)
	s.Equal("Host", snapshot.Players[0].DisplayName)
}

func (s *RegistrySuite) TestCreateRoomSeedsLeaderboard() {
	s.random.QueueString("ABCD")

	_, _, err := s.registry.CreateRoom(s.ctx, "Alice", "stable-a")
	s.Require().NoError(err)

	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("Alice", entries[0].DisplayName)
	s.Equal(0, entries[0].RoundWins)
}

// JoinRoom tests

func (s *RegistrySuite) TestJoinRoomPreservesJoinOrder() {
	s.random.QueueString("ABCD")
	_, hostConn, _ := s.registry.CreateRoom(s.ctx, "Alice", "")

	_, _, err := s.registry.JoinRoom(s.ctx, "ABCD", "Bob", "", "")
	s.Require().NoError(err)
	snapshot, _, err := s.registry.JoinRoom(s.ctx, "ABCD", "Carol", "", "")
	s.Require().NoError(err)

	s.Require().Len(snapshot.Players, 3)
	s.Equal("Alice", snapshot.Players[0].DisplayName)
	s.Equal("Bob", snapshot.Players[1].DisplayName)
	s.Equal("Carol", snapshot.Players[2].DisplayName)
	s.Equal(hostConn, snapshot.HostConn)
}

func (s *RegistrySuite) TestJoinRoomUnknownCode() {
	_, _, err := s.registry.JoinRoom(s.ctx, "ZZZZ", "Bob", "", "")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestJoinRoomEnforcesCapacity() {
	s.random.QueueString("ABCD")
	s.registry.CreateRoom(s.ctx, "Alice", "")

	for _, name := range []string{"Bob", "Carol", "Dave"} {
		_, _, err := s.registry.JoinRoom(s.ctx, "ABCD", name, "", "")
		s.Require().NoError(err)
	}

	_, _, err := s.registry.JoinRoom(s.ctx, "ABCD", "Eve", "", "")
	s.ErrorIs(err, model.ErrRoomFull)
}

func (s *RegistrySuite) TestJoinRoomIdempotentForPresentConnection() {
	s.random.QueueString("ABCD")
	s.registry.CreateRoom(s.ctx, "Alice", "")
	_, connID, err := s.registry.JoinRoom(s.ctx, "ABCD", "Bob", "", "")
	s.Require().NoError(err)

	snapshot, sameConn, err := s.registry.JoinRoom(s.ctx, "ABCD", "Bob", "", connID)
	s.Require().NoError(err)
	s.Equal(connID, sameConn)
	s.Len(snapshot.Players, 2)
}

func (s *RegistrySuite) TestJoinRoomRejectedMidMatch() {
	s.random.QueueString("ABCD")
	s.registry.CreateRoom(s.ctx, "Alice", "")

	err := s.registry.WithRoom("ABCD", func(room *model.Room) error {
		room.Phase = model.PhaseRoundActive
		return nil
	})
	s.Require().NoError(err)

	_, _, err = s.registry.JoinRoom(s.ctx, "ABCD", "Bob", "stranger", "")
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

func (s *RegistrySuite) TestJoinRoomReconnectAllowedMidMatch() {
	s.random.QueueString("ABCD")
	s.registry.CreateRoom(s.ctx, "Alice", "stable-a")
	_, bobConn, err := s.registry.JoinRoom(s.ctx, "ABCD", "Bob", "stable-b", "")
	s.Require().NoError(err)

	// Bob drops mid-match
	s.Require().NoError(s.registry.WithRoom("ABCD", func(room *model.Room) error {
		room.Phase = model.PhaseRoundActive
		return nil
	}))
	s.Require().NoError(s.registry.LeaveRoom(s.ctx, "ABCD", bobConn))

	snapshot, newConn, err := s.registry.JoinRoom(s.ctx, "ABCD", "Bob", "stable-b", "")
	s.Require().NoError(err)
	s.NotEqual(bobConn, newConn)
	s.Len(snapshot.Players, 2)

	// The reconnect keeps a delta slot alive for Bob's stable identity
	s.Require().NoError(s.registry.WithRoom("ABCD", func(room *model.Room) error {
		s.Contains(room.MatchDeltas, model.PlayerID("stable-b"))
		return nil
	}))
}

// LeaveRoom tests

func (s *RegistrySuite) TestLeaveRoomNotInRoom() {
	s.random.QueueString("ABCD")
	s.registry.CreateRoom(s.ctx, "Alice", "")

	err := s.registry.LeaveRoom(s.ctx, "ABCD", "bogus-conn")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *RegistrySuite) TestLeaveRoomHandsHostToNextInJoinOrder() {
	s.random.QueueString("ABCD")
	_, hostConn, _ := s.registry.CreateRoom(s.ctx, "Alice", "")
	_, bobConn, _ := s.registry.JoinRoom(s.ctx, "ABCD", "Bob", "", "")
	s.registry.JoinRoom(s.ctx, "ABCD", "Carol", "", "")

	s.Require().NoError(s.registry.LeaveRoom(s.ctx, "ABCD", hostConn))

	snapshot, err := s.registry.Snapshot("ABCD")
	s.Require().NoError(err)
	s.Equal(bobConn, snapshot.HostConn)
	s.Len(snapshot.Players, 2)
}

// Reaper tests

func (s *RegistrySuite) TestEmptyRoomReapedAfterGrace() {
	deleted := []model.RoomCode{}
	s.registry.OnRoomDeleted = func(code model.RoomCode) {
		deleted = append(deleted, code)
	}

	s.random.QueueString("ABCD")
	_, hostConn, _ := s.registry.CreateRoom(s.ctx, "Alice", "stable-a")
	s.Require().NoError(s.registry.LeaveRoom(s.ctx, "ABCD", hostConn))

	s.Equal(1, s.registry.RoomCount())
	s.Equal(1, s.clock.PendingTimers())

	s.clock.Advance(5 * time.Second)

	s.Equal(0, s.registry.RoomCount())
	s.Equal([]model.RoomCode{"ABCD"}, deleted)

	// The volatile leaderboard is purged with the room
	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *RegistrySuite) TestRejoinWithinGraceCancelsReap() {
	s.random.QueueString("ABCD")
	_, hostConn, _ := s.registry.CreateRoom(s.ctx, "Alice", "")
	s.Require().NoError(s.registry.LeaveRoom(s.ctx, "ABCD", hostConn))

	_, _, err := s.registry.JoinRoom(s.ctx, "ABCD", "Alice", "", "")
	s.Require().NoError(err)

	s.clock.Advance(10 * time.Second)
	s.Equal(1, s.registry.RoomCount())
}

func (s *RegistrySuite) TestReapNotFiredBeforeGrace() {
	s.random.QueueString("ABCD")
	_, hostConn, _ := s.registry.CreateRoom(s.ctx, "Alice", "")
	s.Require().NoError(s.registry.LeaveRoom(s.ctx, "ABCD", hostConn))

	s.clock.Advance(4 * time.Second)
	s.Equal(1, s.registry.RoomCount())

	s.clock.Advance(1 * time.Second)
	s.Equal(0, s.registry.RoomCount())
}

func (s *RegistrySuite) TestStaleEntryRejectedAfterReap() {
	s.random.QueueString("ABCD")
	_, hostConn, err := s.registry.CreateRoom(s.ctx, "Alice", "")
	s.Require().NoError(err)

	// A caller can resolve the entry pointer and then lose the CPU
	// before locking it; the reaper may finish in that window
	stale, err := s.registry.entry("ABCD")
	s.Require().NoError(err)

	s.Require().NoError(s.registry.LeaveRoom(s.ctx, "ABCD", hostConn))
	s.clock.Advance(DefaultConfig().ReapGrace)
	s.Require().Equal(0, s.registry.RoomCount())

	// Locking the stale entry now must report the room gone, not run fn
	// against the dead Room
	ran := false
	err = s.registry.withEntry(stale, func(*model.Room) error {
		ran = true
		return nil
	})
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.False(ran)
}

// Snapshot broadcast tests

func (s *RegistrySuite) TestMembershipChangesBroadcastSnapshots() {
	s.random.QueueString("ABCD")
	s.registry.CreateRoom(s.ctx, "Alice", "")
	_, bobConn, _ := s.registry.JoinRoom(s.ctx, "ABCD", "Bob", "", "")
	s.registry.LeaveRoom(s.ctx, "ABCD", bobConn)

	snapshots := s.events.EventsOfType(model.EventRoomSnapshot)
	s.Require().Len(snapshots, 3)

	last, ok := snapshots[2].Payload.(model.RoomSnapshot)
	s.Require().True(ok)
	s.Len(last.Players, 1)
}
