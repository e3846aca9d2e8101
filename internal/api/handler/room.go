package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hintrush-go/internal/api/apierr"
	"github.com/mcoot/hintrush-go/internal/api/request"
	"github.com/mcoot/hintrush-go/internal/api/response"
	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/registry"
)

// RoomHandler handles room lifecycle endpoints
type RoomHandler struct {
	registry *registry.Registry
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(reg *registry.Registry) *RoomHandler {
	return &RoomHandler{registry: reg}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body; the display name falls back server-side
		req = request.CreateRoomRequest{}
	}

	snapshot, connID, err := h.registry.CreateRoom(r.Context(), req.DisplayName, model.PlayerID(req.PlayerID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomResponse{
		Room:         snapshot,
		ConnectionID: connID,
	})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	snapshot, err := h.registry.Snapshot(code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, snapshot)
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	snapshot, connID, err := h.registry.JoinRoom(r.Context(), code, req.DisplayName, model.PlayerID(req.PlayerID), "")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomResponse{
		Room:         snapshot,
		ConnectionID: connID,
	})
}

// Leave handles POST /api/v1/rooms/{code}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.LeaveRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConnectionID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("connection_id is required"))
		return
	}

	if err := h.registry.LeaveRoom(r.Context(), code, model.ConnectionID(req.ConnectionID)); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
