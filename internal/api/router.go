package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/hintrush-go/internal/api/handler"
	apimiddleware "github.com/mcoot/hintrush-go/internal/api/middleware"
	"github.com/mcoot/hintrush-go/internal/leaderboard"
	"github.com/mcoot/hintrush-go/internal/metrics"
	"github.com/mcoot/hintrush-go/internal/middleware"
	"github.com/mcoot/hintrush-go/internal/registry"
	"github.com/mcoot/hintrush-go/internal/services/guess"
	"github.com/mcoot/hintrush-go/internal/services/match"
	"github.com/mcoot/hintrush-go/internal/sse"
	"github.com/mcoot/hintrush-go/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	Registry     *registry.Registry
	Matches      *match.Controller
	Resolver     *guess.Resolver
	Cache        leaderboard.Cache
	Store        storage.Store
	HubManager   *sse.HubManager
	Metrics      *metrics.Metrics
	MetricsReg   prometheus.Gatherer
	RatePerSec   float64
	RateBurst    int
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Registry)
	matchHandler := handler.NewMatchHandler(cfg.Matches, cfg.Resolver)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Cache, cfg.Store)
	eventsHandler := handler.NewEventsHandler(cfg.Registry, cfg.HubManager, cfg.Metrics)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.RatePerSec > 0 {
		api.Use(apimiddleware.RateLimit(cfg.RatePerSec, cfg.RateBurst))
	}

	// Room lifecycle
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/leave", roomHandler.Leave).Methods(http.MethodPost)

	// Match flow
	api.HandleFunc("/rooms/{code}/match", matchHandler.Start).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/match/content", matchHandler.SupplyContent).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/guesses", matchHandler.Guess).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/results", matchHandler.Results).Methods(http.MethodGet)

	// Leaderboards
	api.HandleFunc("/rooms/{code}/leaderboard", leaderboardHandler.Room).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Global).Methods(http.MethodGet)
	api.HandleFunc("/players/{player_id}/stats", leaderboardHandler.Player).Methods(http.MethodGet)

	// Event stream
	api.HandleFunc("/rooms/{code}/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if cfg.MetricsReg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.MetricsReg, promhttp.HandlerOpts{}))
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
