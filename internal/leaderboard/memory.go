package leaderboard

import (
	"context"
	"sync"

	"github.com/mcoot/hintrush-go/internal/model"
)

// MemoryCache is an in-memory leaderboard cache, for tests and
// single-process deployments without Redis
type MemoryCache struct {
	mu    sync.Mutex
	rooms map[model.RoomCode]map[model.PlayerID]*model.RoomLeaderboardEntry
}

// NewMemory creates an empty in-memory cache
func NewMemory() *MemoryCache {
	return &MemoryCache{
		rooms: make(map[model.RoomCode]map[model.PlayerID]*model.RoomLeaderboardEntry),
	}
}

var _ Cache = (*MemoryCache)(nil)

func (c *MemoryCache) entry(code model.RoomCode, id model.PlayerID) *model.RoomLeaderboardEntry {
	room, ok := c.rooms[code]
	if !ok {
		room = make(map[model.PlayerID]*model.RoomLeaderboardEntry)
		c.rooms[code] = room
	}
	e, ok := room[id]
	if !ok {
		e = &model.RoomLeaderboardEntry{PlayerID: id}
		room[id] = e
	}
	return e
}

func (c *MemoryCache) EnsurePlayer(_ context.Context, code model.RoomCode, id model.PlayerID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(code, id).DisplayName = name
	return nil
}

func (c *MemoryCache) AddRoundWin(_ context.Context, code model.RoomCode, id model.PlayerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(code, id).RoundWins++
	return nil
}

func (c *MemoryCache) AddMatchWin(_ context.Context, code model.RoomCode, id model.PlayerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(code, id).MatchWins++
	return nil
}

func (c *MemoryCache) GetRoom(_ context.Context, code model.RoomCode) ([]model.RoomLeaderboardEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room := c.rooms[code]
	entries := make([]model.RoomLeaderboardEntry, 0, len(room))
	for _, e := range room {
		entries = append(entries, *e)
	}
	sortEntries(entries)
	return entries, nil
}

func (c *MemoryCache) DeleteRoom(_ context.Context, code model.RoomCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, code)
	return nil
}
