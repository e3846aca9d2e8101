package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hintrush-go/internal/api/apierr"
	"github.com/mcoot/hintrush-go/internal/api/request"
	"github.com/mcoot/hintrush-go/internal/api/response"
	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/services/guess"
	"github.com/mcoot/hintrush-go/internal/services/match"
)

// MatchHandler handles match and guess endpoints
type MatchHandler struct {
	matches  *match.Controller
	resolver *guess.Resolver
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matches *match.Controller, resolver *guess.Resolver) *MatchHandler {
	return &MatchHandler{matches: matches, resolver: resolver}
}

// Start handles POST /api/v1/rooms/{code}/match
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.StartMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConnectionID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("connection_id is required"))
		return
	}

	if err := h.matches.StartMatch(r.Context(), code, model.ConnectionID(req.ConnectionID)); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// SupplyContent handles POST /api/v1/rooms/{code}/match/content
func (h *MatchHandler) SupplyContent(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.RoundContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConnectionID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("connection_id is required"))
		return
	}

	content := model.RoundContent{SecretHash: req.SecretHash, Hints: req.Hints}
	if err := h.matches.SupplyRoundContent(r.Context(), code, model.ConnectionID(req.ConnectionID), content); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Guess handles POST /api/v1/rooms/{code}/guesses
func (h *MatchHandler) Guess(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.GuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConnectionID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("connection_id is required"))
		return
	}

	result, err := h.resolver.SubmitGuess(r.Context(), code, model.ConnectionID(req.ConnectionID), req.Guess, req.ElapsedMS)
	if err != nil && !(result != nil && errors.Is(err, model.ErrPersistenceFailure)) {
		apierr.WriteError(w, err)
		return
	}

	cleaned, _ := guess.NormalizeGuess(req.Guess)
	resp := response.GuessResponse{
		Guess:    cleaned,
		Correct:  result.Correct,
		Won:      result.Won,
		Late:     result.Late,
		GameOver: result.GameOver,
	}
	if err != nil {
		// The match ended and the verdict stands; the failed flush is
		// reported without turning the winning ack into an error
		resp.StatsError = "stats could not be persisted"
	}
	response.JSON(w, http.StatusOK, resp)
}

// Results handles GET /api/v1/rooms/{code}/results
func (h *MatchHandler) Results(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	results, err := h.matches.FetchResults(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, results)
}
