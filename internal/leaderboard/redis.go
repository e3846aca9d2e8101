package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/hintrush-go/internal/model"
)

const keyPrefix = "hintrush"

// Each room is one Redis hash. Stats are stored as separate fields per
// player so increments can use HINCRBY, which stays correct under
// concurrent writers across rooms or processes.
const (
	fieldName      = "name"
	fieldRoundWins = "round_wins"
	fieldMatchWins = "match_wins"
)

func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:leaderboard:%s", keyPrefix, code)
}

func playerField(id model.PlayerID, stat string) string {
	return fmt.Sprintf("%s:%s", id, stat)
}

// Config holds Redis connection settings for the cache
type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
}

// DefaultConfig returns sensible defaults for the cache configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// RedisCache is the Redis-backed leaderboard cache
type RedisCache struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(cfg Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// NewRedisWithClient wraps an existing client (for testing)
func NewRedisWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)

func (c *RedisCache) EnsurePlayer(ctx context.Context, code model.RoomCode, id model.PlayerID, name string) error {
	key := roomKey(code)
	pipe := c.client.Pipeline()
	// Name is refreshed unconditionally; counters only seeded if absent
	pipe.HSet(ctx, key, playerField(id, fieldName), name)
	pipe.HSetNX(ctx, key, playerField(id, fieldRoundWins), 0)
	pipe.HSetNX(ctx, key, playerField(id, fieldMatchWins), 0)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisCache) AddRoundWin(ctx context.Context, code model.RoomCode, id model.PlayerID) error {
	return c.client.HIncrBy(ctx, roomKey(code), playerField(id, fieldRoundWins), 1).Err()
}

func (c *RedisCache) AddMatchWin(ctx context.Context, code model.RoomCode, id model.PlayerID) error {
	return c.client.HIncrBy(ctx, roomKey(code), playerField(id, fieldMatchWins), 1).Err()
}

func (c *RedisCache) GetRoom(ctx context.Context, code model.RoomCode) ([]model.RoomLeaderboardEntry, error) {
	fields, err := c.client.HGetAll(ctx, roomKey(code)).Result()
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[model.PlayerID]*model.RoomLeaderboardEntry)
	entry := func(id model.PlayerID) *model.RoomLeaderboardEntry {
		if e, ok := byPlayer[id]; ok {
			return e
		}
		e := &model.RoomLeaderboardEntry{PlayerID: id}
		byPlayer[id] = e
		return e
	}

	for field, value := range fields {
		// Field layout is "<player_id>:<stat>"; the player id may itself
		// contain separators, so split on the last colon
		sep := strings.LastIndex(field, ":")
		if sep < 0 {
			continue
		}
		id := model.PlayerID(field[:sep])
		switch field[sep+1:] {
		case fieldName:
			entry(id).DisplayName = value
		case fieldRoundWins:
			n, _ := strconv.Atoi(value)
			entry(id).RoundWins = n
		case fieldMatchWins:
			n, _ := strconv.Atoi(value)
			entry(id).MatchWins = n
		}
	}

	entries := make([]model.RoomLeaderboardEntry, 0, len(byPlayer))
	for _, e := range byPlayer {
		entries = append(entries, *e)
	}
	sortEntries(entries)
	return entries, nil
}

func (c *RedisCache) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	return c.client.Del(ctx, roomKey(code)).Err()
}

func sortEntries(entries []model.RoomLeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.MatchWins != b.MatchWins {
			return a.MatchWins > b.MatchWins
		}
		if a.RoundWins != b.RoundWins {
			return a.RoundWins > b.RoundWins
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.PlayerID < b.PlayerID
	})
}
