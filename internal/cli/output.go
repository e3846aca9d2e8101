package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RoomResult:
		o.printRoomResult(v)
	case Room:
		o.printRoom(v)
	case GuessResult:
		o.printGuessResult(v)
	case Results:
		o.printResults(v)
	case []LeaderboardEntry:
		o.printLeaderboard(v)
	case []GlobalStats:
		o.printGlobalStats(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Room response type (matches API)
type Room struct {
	RoomCode  string       `json:"room_code"`
	HostConn  string       `json:"host_id"`
	Players   []RoomPlayer `json:"players"`
	Phase     string       `json:"phase"`
	Round     int          `json:"round"`
	MaxRounds int          `json:"max_rounds"`
}

// RoomPlayer response type
type RoomPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomResult combines a room with the caller's connection identifier
type RoomResult struct {
	Room         Room   `json:"room"`
	ConnectionID string `json:"connection_id"`
}

// GuessResult response type
type GuessResult struct {
	Guess      string `json:"guess"`
	Correct    bool   `json:"correct"`
	Won        bool   `json:"won"`
	Late       bool   `json:"late,omitempty"`
	GameOver   bool   `json:"game_over,omitempty"`
	StatsError string `json:"stats_error,omitempty"`
}

// ScoreboardRow response type
type ScoreboardRow struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
	TotalMS  int64  `json:"total_ms"`
	AvgMS    *int64 `json:"avg_ms"`
}

// Results response type
type Results struct {
	RoomCode    string             `json:"room_code"`
	Round       int                `json:"round"`
	Phase       string             `json:"phase"`
	Scoreboard  []ScoreboardRow    `json:"scoreboard"`
	Leaderboard []LeaderboardEntry `json:"leaderboard,omitempty"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"display_name"`
	RoundWins int    `json:"round_wins"`
	MatchWins int    `json:"match_wins"`
}

// GlobalStats response type
type GlobalStats struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"display_name"`
	RoundWins int    `json:"round_wins"`
	MatchWins int    `json:"match_wins"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.RoomCode)
	fmt.Printf("Phase: %s\n", r.Phase)
	if r.Round > 0 {
		fmt.Printf("Round: %d/%d\n", r.Round, r.MaxRounds)
	}
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		hostStr := ""
		if p.ID == r.HostConn {
			hostStr = " [host]"
		}
		fmt.Printf("  - %s (%s)%s\n", p.Name, p.ID, hostStr)
	}
}

func (o *Output) printRoomResult(r RoomResult) {
	o.printRoom(r.Room)
	fmt.Printf("Connection: %s\n", r.ConnectionID)
}

func (o *Output) printGuessResult(g GuessResult) {
	switch {
	case g.Won:
		fmt.Printf("Correct! You won the round with %q\n", g.Guess)
	case g.Late:
		fmt.Printf("Correct, but someone beat you to it: %q\n", g.Guess)
	case g.Correct:
		fmt.Printf("Correct: %q\n", g.Guess)
	default:
		fmt.Printf("Incorrect: %q\n", g.Guess)
	}
	if g.GameOver {
		fmt.Println("The match is over!")
	}
	if g.StatsError != "" {
		fmt.Printf("Warning: %s\n", g.StatsError)
	}
}

func (o *Output) printResults(r Results) {
	fmt.Printf("Room: %s (round %d, %s)\n", r.RoomCode, r.Round, r.Phase)
	if len(r.Scoreboard) > 0 {
		fmt.Println("Scoreboard:")
		for i, row := range r.Scoreboard {
			avg := "-"
			if row.AvgMS != nil {
				avg = fmt.Sprintf("%dms", *row.AvgMS)
			}
			fmt.Printf("  %d. %s: %d wins (avg %s)\n", i+1, row.Name, row.Wins, avg)
		}
	}
	if len(r.Leaderboard) > 0 {
		fmt.Println("Room leaderboard:")
		o.printLeaderboardRows(r.Leaderboard)
	}
}

func (o *Output) printLeaderboard(entries []LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Println("No entries")
		return
	}
	o.printLeaderboardRows(entries)
}

func (o *Output) printLeaderboardRows(entries []LeaderboardEntry) {
	for i, e := range entries {
		fmt.Printf("  %d. %s: %d match wins, %d round wins\n", i+1, e.Name, e.MatchWins, e.RoundWins)
	}
}

func (o *Output) printGlobalStats(stats []GlobalStats) {
	if len(stats) == 0 {
		fmt.Println("No entries")
		return
	}
	for i, s := range stats {
		fmt.Printf("  %d. %s: %d match wins, %d round wins\n", i+1, s.Name, s.MatchWins, s.RoundWins)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
