package leaderboard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hintrush-go/internal/model"
)

type RedisCacheSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	cache *RedisCache
	ctx   context.Context
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})
	s.cache = NewRedisWithClient(client)
	s.ctx = context.Background()
}

func (s *RedisCacheSuite) TearDownTest() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *RedisCacheSuite) TestEnsurePlayerSeedsZeroedCounters() {
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", "p1", "Alice"))

	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(model.PlayerID("p1"), entries[0].PlayerID)
	s.Equal("Alice", entries[0].DisplayName)
	s.Equal(0, entries[0].RoundWins)
	s.Equal(0, entries[0].MatchWins)
}

func (s *RedisCacheSuite) TestEnsurePlayerRefreshesNameKeepsCounters() {
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", "p1", "Alice"))
	s.Require().NoError(s.cache.AddRoundWin(s.ctx, "ABCD", "p1"))

	// Rejoining with a new display name must not reset earned wins
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", "p1", "Alicia"))

	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("Alicia", entries[0].DisplayName)
	s.Equal(1, entries[0].RoundWins)
}

func (s *RedisCacheSuite) TestIncrementsAccumulate() {
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", "p1", "Alice"))
	s.Require().NoError(s.cache.AddRoundWin(s.ctx, "ABCD", "p1"))
	s.Require().NoError(s.cache.AddRoundWin(s.ctx, "ABCD", "p1"))
	s.Require().NoError(s.cache.AddMatchWin(s.ctx, "ABCD", "p1"))

	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(2, entries[0].RoundWins)
	s.Equal(1, entries[0].MatchWins)
}

func (s *RedisCacheSuite) TestGetRoomOrdering() {
	// Carol: 1 match win. Alice: 2 round wins. Bob: 1 round win.
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", "p1", "Alice"))
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", "p2", "Bob"))
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", "p3", "Carol"))
	s.Require().NoError(s.cache.AddRoundWin(s.ctx, "ABCD", "p1"))
	s.Require().NoError(s.cache.AddRoundWin(s.ctx, "ABCD", "p1"))
	s.Require().NoError(s.cache.AddRoundWin(s.ctx, "ABCD", "p2"))
	s.Require().NoError(s.cache.AddMatchWin(s.ctx, "ABCD", "p3"))

	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("Carol", entries[0].DisplayName)
	s.Equal("Alice", entries[1].DisplayName)
	s.Equal("Bob", entries[2].DisplayName)
}

func (s *RedisCacheSuite) TestGetRoomEmptyForUnknownRoom() {
	entries, err := s.cache.GetRoom(s.ctx, "ZZZZ")
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *RedisCacheSuite) TestRoomsAreIsolated() {
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", "p1", "Alice"))
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "EFGH", "p2", "Bob"))

	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("Alice", entries[0].DisplayName)
}

func (s *RedisCacheSuite) TestPlayerIDWithColonsRoundTrips() {
	// Stable ids minted from uuids stay plain, but client-supplied ids
	// can contain the field separator
	id := model.PlayerID("oauth:google:12345")
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", id, "Alice"))
	s.Require().NoError(s.cache.AddRoundWin(s.ctx, "ABCD", id))

	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(id, entries[0].PlayerID)
	s.Equal(1, entries[0].RoundWins)
}

func (s *RedisCacheSuite) TestDeleteRoomClearsEntries() {
	s.Require().NoError(s.cache.EnsurePlayer(s.ctx, "ABCD", "p1", "Alice"))
	s.Require().NoError(s.cache.DeleteRoom(s.ctx, "ABCD"))

	entries, err := s.cache.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Empty(entries)
}
