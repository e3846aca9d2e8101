package model

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// ScoreboardEntry is one row of the end-of-match scoreboard
type ScoreboardEntry struct {
	ConnID      ConnectionID
	PlayerID    PlayerID
	DisplayName string
	Wins        int
	TotalTime   time.Duration
	// AvgTime is TotalTime / TimedWins; nil when no timed win exists
	AvgTime *time.Duration
}

// BuildScoreboard builds the match scoreboard from the room's ledger.
// Ordering is deterministic: wins descending, then average time per win
// ascending; entries without a known average sort after those with one,
// and display name breaks any remaining tie.
func (r *Room) BuildScoreboard() []ScoreboardEntry {
	entries := lo.MapToSlice(r.Scores, func(conn ConnectionID, s *MatchScoreEntry) ScoreboardEntry {
		entry := ScoreboardEntry{
			ConnID:      conn,
			PlayerID:    r.StableID(conn),
			DisplayName: s.DisplayName,
			Wins:        s.Wins,
			TotalTime:   s.TotalTime,
		}
		if s.TimedWins > 0 {
			avg := s.TotalTime / time.Duration(s.TimedWins)
			entry.AvgTime = &avg
		}
		return entry
	})

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		switch {
		case a.AvgTime == nil && b.AvgTime == nil:
			return a.DisplayName < b.DisplayName
		case a.AvgTime == nil:
			return false
		case b.AvgTime == nil:
			return true
		case *a.AvgTime != *b.AvgTime:
			return *a.AvgTime < *b.AvgTime
		}
		return a.DisplayName < b.DisplayName
	})

	return entries
}

// MatchWinners returns the stable identities with the highest round-win
// count in the current match's delta set. Ties are co-winners; each one
// receives a full match-win credit. Result order is deterministic.
func (r *Room) MatchWinners() []PlayerID {
	best := -1
	for _, d := range r.MatchDeltas {
		if d.RoundWins > best {
			best = d.RoundWins
		}
	}
	if best < 0 {
		return nil
	}

	winners := lo.Keys(lo.PickBy(r.MatchDeltas, func(_ PlayerID, d *MatchDelta) bool {
		return d.RoundWins == best
	}))
	sort.Slice(winners, func(i, j int) bool { return winners[i] < winners[j] })
	return winners
}
