// Package registry owns the set of live rooms. It is the only
// process-wide mutable shared structure: every room mutation goes
// through a per-room lock held by this package, which is what makes the
// round-sealing invariant mechanically enforceable instead of a
// convention.
package registry

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/hintrush-go/internal/broadcast"
	"github.com/mcoot/hintrush-go/internal/dependencies/clock"
	"github.com/mcoot/hintrush-go/internal/dependencies/random"
	"github.com/mcoot/hintrush-go/internal/leaderboard"
	"github.com/mcoot/hintrush-go/internal/metrics"
	"github.com/mcoot/hintrush-go/internal/model"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 4
	// RoomCodeAlphabet is the characters used in room codes
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Config holds room lifecycle settings
type Config struct {
	MaxPlayers int
	MaxRounds  int
	// ReapGrace is how long an empty room lingers before deletion
	ReapGrace time.Duration
}

// DefaultConfig returns the default room configuration
func DefaultConfig() Config {
	return Config{
		MaxPlayers: 4,
		MaxRounds:  3,
		ReapGrace:  5 * time.Second,
	}
}

// roomEntry pairs a room with its lock and any pending reap timer
type roomEntry struct {
	mu        sync.Mutex
	room      *model.Room
	reapTimer clock.Timer
	// reaped marks an entry the reaper has removed from the table. A
	// caller that resolved this entry before removal but locked it after
	// must treat the room as gone rather than mutate a dead Room.
	reaped bool
}

// Registry manages the live room table
type Registry struct {
	cfg       Config
	clock     clock.Clock
	random    random.Random
	cache     leaderboard.Cache
	publisher broadcast.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// OnRoomDeleted is invoked after the reaper removes a room, so the
	// transport layer can tear down the room's event hub
	OnRoomDeleted func(code model.RoomCode)

	mu    sync.RWMutex
	rooms map[model.RoomCode]*roomEntry
}

// New creates a new Registry
func New(
	cfg Config,
	clk clock.Clock,
	rnd random.Random,
	cache leaderboard.Cache,
	publisher broadcast.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		cfg:       cfg,
		clock:     clk,
		random:    rnd,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With(slog.String("component", "registry")),
		rooms:     make(map[model.RoomCode]*roomEntry),
	}
}

// Config returns the registry's room settings
func (r *Registry) Config() Config {
	return r.cfg
}

// CreateRoom allocates a collision-free code and creates a room with
// the caller as sole player and host. Returns the connection identifier
// minted for the host and the initial snapshot.
func (r *Registry) CreateRoom(ctx context.Context, displayName string, stableID model.PlayerID) (model.RoomSnapshot, model.ConnectionID, error) {
	name := normalizeName(displayName, "Host")
	connID := model.ConnectionID(uuid.NewString())
	now := r.clock.Now()

	r.mu.Lock()
	var code model.RoomCode
	for {
		code = model.RoomCode(r.random.String(RoomCodeLength, RoomCodeAlphabet))
		if _, exists := r.rooms[code]; !exists {
			break
		}
	}

	room := &model.Room{
		Code:           code,
		HostConn:       connID,
		Phase:          model.PhaseLobby,
		Round:          0,
		MaxRounds:      r.cfg.MaxRounds,
		Scores:         make(map[model.ConnectionID]*model.MatchScoreEntry),
		StableIDByConn: make(map[model.ConnectionID]model.PlayerID),
		NameByStableID: make(map[model.PlayerID]string),
		MatchDeltas:    make(map[model.PlayerID]*model.MatchDelta),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.addPlayerLocked(room, connID, stableID, name, now)

	r.rooms[code] = &roomEntry{room: room}
	total := len(r.rooms)
	r.mu.Unlock()

	r.metrics.RoomsCreated.Inc()
	r.metrics.ActiveRooms.Set(float64(total))

	r.logger.Info("room created",
		slog.String("room", string(code)),
		slog.String("host", name))

	// Cache seeding is best-effort; the room works without it
	sid := room.StableID(connID)
	if err := r.cache.EnsurePlayer(ctx, code, sid, name); err != nil {
		r.logger.Warn("leaderboard seed failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
	}

	snapshot := room.Snapshot()
	r.publishSnapshot(code, snapshot)
	return snapshot, connID, nil
}

// JoinRoom adds a player to a room. Joining is idempotent for an
// already-present connection. A stable identity already known to the
// room may rejoin mid-match (reconnect); anyone else is rejected once
// the match has started.
func (r *Registry) JoinRoom(ctx context.Context, code model.RoomCode, displayName string, stableID model.PlayerID, connID model.ConnectionID) (model.RoomSnapshot, model.ConnectionID, error) {
	entry, err := r.entry(code)
	if err != nil {
		return model.RoomSnapshot{}, "", err
	}
	name := normalizeName(displayName, "Player")

	entry.mu.Lock()
	if entry.reaped {
		entry.mu.Unlock()
		return model.RoomSnapshot{}, "", model.ErrRoomNotFound
	}
	room := entry.room

	if connID != "" {
		if existing := room.GetPlayer(connID); existing != nil {
			snapshot := room.Snapshot()
			entry.mu.Unlock()
			return snapshot, connID, nil
		}
	}

	reconnect := stableID != "" && hasStableID(room, stableID)
	if room.Phase.InMatch() && !reconnect {
		entry.mu.Unlock()
		return model.RoomSnapshot{}, "", model.ErrGameAlreadyStarted
	}
	if len(room.Players) >= r.cfg.MaxPlayers {
		entry.mu.Unlock()
		return model.RoomSnapshot{}, "", model.ErrRoomFull
	}

	if connID == "" {
		connID = model.ConnectionID(uuid.NewString())
	}
	now := r.clock.Now()
	r.addPlayerLocked(room, connID, stableID, name, now)
	if room.Phase.InMatch() {
		// Reconnecting mid-match: keep the delta slot alive so wins
		// earned before the drop still flush at match end
		room.EnsureDelta(room.StableID(connID))
	}
	room.UpdatedAt = now

	// A rejoin cancels any pending deletion
	if entry.reapTimer != nil {
		entry.reapTimer.Stop()
		entry.reapTimer = nil
	}

	snapshot := room.Snapshot()
	sid := room.StableID(connID)
	entry.mu.Unlock()

	r.logger.Info("player joined",
		slog.String("room", string(code)),
		slog.String("player", name))

	if err := r.cache.EnsurePlayer(ctx, code, sid, name); err != nil {
		r.logger.Warn("leaderboard seed failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
	} else {
		r.publishLeaderboard(ctx, code)
	}

	r.publishSnapshot(code, snapshot)
	return snapshot, connID, nil
}

// LeaveRoom removes the connection's player. The host role passes to
// the next player in join order; an emptied room is scheduled for
// reaping after the grace period.
func (r *Registry) LeaveRoom(ctx context.Context, code model.RoomCode, connID model.ConnectionID) error {
	entry, err := r.entry(code)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	if entry.reaped {
		entry.mu.Unlock()
		return model.ErrRoomNotFound
	}
	room := entry.room
	if room.GetPlayer(connID) == nil {
		entry.mu.Unlock()
		return model.ErrNotInRoom
	}

	for i, p := range room.Players {
		if p.ConnID == connID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}

	// Host handoff in join order
	if room.HostConn == connID && len(room.Players) > 0 {
		room.HostConn = room.Players[0].ConnID
	}
	room.UpdatedAt = r.clock.Now()

	if room.IsEmpty() {
		r.scheduleReapLocked(entry, code)
	}

	snapshot := room.Snapshot()
	entry.mu.Unlock()

	r.logger.Info("player left",
		slog.String("room", string(code)),
		slog.String("connection_id", string(connID)))

	r.publishSnapshot(code, snapshot)
	return nil
}

// WithRoom runs fn with exclusive access to the room's state. All
// mutation by the round state machine and the guess resolver flows
// through here, so nothing touches a Room without its lock.
func (r *Registry) WithRoom(code model.RoomCode, fn func(*model.Room) error) error {
	entry, err := r.entry(code)
	if err != nil {
		return err
	}
	return r.withEntry(entry, fn)
}

// withEntry locks the entry and runs fn, unless the reaper removed the
// room between entry resolution and the lock
func (r *Registry) withEntry(entry *roomEntry, fn func(*model.Room) error) error {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.reaped {
		return model.ErrRoomNotFound
	}
	return fn(entry.room)
}

// Snapshot returns the room's current broadcastable state
func (r *Registry) Snapshot(code model.RoomCode) (model.RoomSnapshot, error) {
	var snapshot model.RoomSnapshot
	err := r.WithRoom(code, func(room *model.Room) error {
		snapshot = room.Snapshot()
		return nil
	})
	return snapshot, err
}

// RoomCount returns the number of live rooms
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// PublishSnapshot broadcasts the room's current snapshot
func (r *Registry) PublishSnapshot(code model.RoomCode) error {
	snapshot, err := r.Snapshot(code)
	if err != nil {
		return err
	}
	r.publishSnapshot(code, snapshot)
	return nil
}

func (r *Registry) entry(code model.RoomCode) (*roomEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return entry, nil
}

// addPlayerLocked appends a player and seeds their score-tier entries.
// Caller holds the room lock (or the room is not yet published).
func (r *Registry) addPlayerLocked(room *model.Room, connID model.ConnectionID, stableID model.PlayerID, name string, now time.Time) {
	room.Players = append(room.Players, model.Player{
		ConnID:      connID,
		StableID:    stableID,
		DisplayName: name,
		JoinedAt:    now,
	})
	if stableID != "" {
		room.StableIDByConn[connID] = stableID
	}
	room.NameByStableID[room.StableID(connID)] = name
	room.EnsureScoreEntry(connID, name)
}

// scheduleReapLocked arms the grace timer for an empty room. Caller
// holds the room entry lock.
func (r *Registry) scheduleReapLocked(entry *roomEntry, code model.RoomCode) {
	if entry.reapTimer != nil {
		entry.reapTimer.Stop()
	}
	entry.reapTimer = r.clock.AfterFunc(r.cfg.ReapGrace, func() {
		r.reap(code)
	})
	r.logger.Info("room empty, deletion scheduled",
		slog.String("room", string(code)),
		slog.Duration("grace", r.cfg.ReapGrace))
}

// reap deletes the room if it is still empty when the grace timer
// fires, and purges its volatile leaderboard. The durable store already
// holds the permanent record.
func (r *Registry) reap(code model.RoomCode) {
	r.mu.Lock()
	entry, ok := r.rooms[code]
	if !ok {
		r.mu.Unlock()
		return
	}

	entry.mu.Lock()
	if !entry.room.IsEmpty() {
		// Someone rejoined between the timer firing and this check
		entry.mu.Unlock()
		r.mu.Unlock()
		return
	}
	entry.reaped = true
	delete(r.rooms, code)
	total := len(r.rooms)
	entry.mu.Unlock()
	r.mu.Unlock()

	r.metrics.RoomsReaped.Inc()
	r.metrics.ActiveRooms.Set(float64(total))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.cache.DeleteRoom(ctx, code); err != nil {
		r.logger.Warn("leaderboard purge failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
	}

	if r.OnRoomDeleted != nil {
		r.OnRoomDeleted(code)
	}

	r.logger.Info("room reaped", slog.String("room", string(code)))
}

func (r *Registry) publishSnapshot(code model.RoomCode, snapshot model.RoomSnapshot) {
	r.publisher.Publish(code, model.Event{
		Type:      model.EventRoomSnapshot,
		RoomCode:  code,
		Timestamp: r.clock.Now(),
		Payload:   snapshot,
	})
}

func (r *Registry) publishLeaderboard(ctx context.Context, code model.RoomCode) {
	entries, err := r.cache.GetRoom(ctx, code)
	if err != nil {
		r.logger.Warn("leaderboard fetch failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
		return
	}
	r.publisher.Publish(code, model.Event{
		Type:      model.EventLeaderboardUpdate,
		RoomCode:  code,
		Timestamp: r.clock.Now(),
		Payload:   entries,
	})
}

func hasStableID(room *model.Room, id model.PlayerID) bool {
	_, ok := room.NameByStableID[id]
	return ok
}

func normalizeName(name, fallback string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
