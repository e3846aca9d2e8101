package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hintrush-go/internal/api/apierr"
	"github.com/mcoot/hintrush-go/internal/api/response"
	"github.com/mcoot/hintrush-go/internal/leaderboard"
	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/storage"
)

// LeaderboardHandler serves the room-scoped and global leaderboards
type LeaderboardHandler struct {
	cache leaderboard.Cache
	store storage.Store
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(cache leaderboard.Cache, store storage.Store) *LeaderboardHandler {
	return &LeaderboardHandler{cache: cache, store: store}
}

// Room handles GET /api/v1/rooms/{code}/leaderboard
func (h *LeaderboardHandler) Room(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	entries, err := h.cache.GetRoom(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, entries)
}

// Global handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Global(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetGlobalLeaderboard(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, stats)
}

// Player handles GET /api/v1/players/{player_id}/stats
func (h *LeaderboardHandler) Player(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["player_id"])

	stats, err := h.store.GetPlayerStats(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, stats)
}
