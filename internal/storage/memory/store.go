package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/storage"
)

// Store is an in-memory durable-store implementation, for tests and
// local development without PostgreSQL. Data does not survive restarts.
type Store struct {
	mu      sync.Mutex
	players map[model.PlayerID]*model.GlobalPlayerStats

	// FailNextFlush makes the next ApplyMatchDeltas fail without
	// applying anything, so tests can exercise the persistence-failure
	// path at match end
	FailNextFlush error
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		players: make(map[model.PlayerID]*model.GlobalPlayerStats),
	}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) ApplyMatchDeltas(_ context.Context, deltas map[model.PlayerID]model.MatchDelta, names map[model.PlayerID]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailNextFlush; err != nil {
		s.FailNextFlush = nil
		return err
	}

	for id, d := range deltas {
		if d.IsZero() {
			continue
		}
		stats, ok := s.players[id]
		if !ok {
			stats = &model.GlobalPlayerStats{PlayerID: id}
			s.players[id] = stats
		}
		stats.RoundWins += d.RoundWins
		stats.MatchWins += d.MatchWins
		if name := names[id]; name != "" {
			stats.DisplayName = name
		}
	}
	return nil
}

func (s *Store) GetPlayerStats(_ context.Context, id model.PlayerID) (*model.GlobalPlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats, ok := s.players[id]; ok {
		copied := *stats
		return &copied, nil
	}
	return &model.GlobalPlayerStats{PlayerID: id}, nil
}

func (s *Store) GetGlobalLeaderboard(_ context.Context) ([]model.GlobalPlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]model.GlobalPlayerStats, 0, len(s.players))
	for _, stats := range s.players {
		entries = append(entries, *stats)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.MatchWins != b.MatchWins {
			return a.MatchWins > b.MatchWins
		}
		if a.RoundWins != b.RoundWins {
			return a.RoundWins > b.RoundWins
		}
		return a.DisplayName < b.DisplayName
	})
	return entries, nil
}

// Close is a no-op for the in-memory store
func (s *Store) Close() error {
	return nil
}
