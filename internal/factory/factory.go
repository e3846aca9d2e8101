// Package factory wires the application graph: scoring tiers, services,
// transport, and observability.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/hintrush-go/internal/broadcast"
	"github.com/mcoot/hintrush-go/internal/dependencies/clock"
	"github.com/mcoot/hintrush-go/internal/dependencies/random"
	"github.com/mcoot/hintrush-go/internal/leaderboard"
	"github.com/mcoot/hintrush-go/internal/metrics"
	"github.com/mcoot/hintrush-go/internal/registry"
	"github.com/mcoot/hintrush-go/internal/services/guess"
	"github.com/mcoot/hintrush-go/internal/services/match"
	"github.com/mcoot/hintrush-go/internal/sse"
	"github.com/mcoot/hintrush-go/internal/storage"
	memorystore "github.com/mcoot/hintrush-go/internal/storage/memory"
	"github.com/mcoot/hintrush-go/internal/storage/postgres"
)

// Backend type constants
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"

	StoreTypeMemory   = "memory"
	StoreTypePostgres = "postgres"
)

const metricsNamespace = "hintrush"

// App contains all wired application components
type App struct {
	// Scoring tiers
	Cache leaderboard.Cache
	Store storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry  *registry.Registry
	Matches   *match.Controller
	Resolver  *guess.Resolver
	Publisher broadcast.Publisher

	// Transport and observability
	HubManager *sse.HubManager
	Metrics    *metrics.Metrics
	MetricsReg *prometheus.Registry
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// RoomConfig holds room lifecycle settings
	// If zero value, defaults to registry.DefaultConfig()
	RoomConfig registry.Config
	// CacheType selects the leaderboard cache backend ("memory" or "redis")
	// If empty, defaults to "memory"
	CacheType string
	// RedisConfig holds Redis connection settings (required if CacheType is "redis")
	RedisConfig *leaderboard.Config
	// StoreType selects the durable stats backend ("memory" or "postgres")
	// If empty, defaults to "memory"
	StoreType string
	// PostgresConfig holds Postgres connection settings (required if StoreType is "postgres")
	PostgresConfig *postgres.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var cache leaderboard.Cache
	cacheType := cfg.CacheType
	if cacheType == "" {
		cacheType = CacheTypeMemory
	}

	switch cacheType {
	case CacheTypeMemory:
		cache = leaderboard.NewMemory()
	case CacheTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when CacheType is redis")
		}
		redisCache, err := leaderboard.NewRedis(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		cache = redisCache
	default:
		return nil, errors.New("invalid CacheType: must be 'memory' or 'redis'")
	}

	var store storage.Store
	storeType := cfg.StoreType
	if storeType == "" {
		storeType = StoreTypeMemory
	}

	switch storeType {
	case StoreTypeMemory:
		store = memorystore.New()
	case StoreTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StoreType is postgres")
		}
		pgStore, err := postgres.New(*cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StoreType: must be 'memory' or 'postgres'")
	}

	roomCfg := cfg.RoomConfig
	if roomCfg.MaxRounds == 0 {
		roomCfg = registry.DefaultConfig()
	}

	clk := clock.New()
	rnd := random.New()
	metricsReg := prometheus.NewRegistry()

	hubManager := sse.NewHubManager(logger)
	publisher := broadcast.NewSSEPublisher(hubManager, logger)

	app := newWithDependencies(roomCfg, cache, store, clk, rnd, metricsReg, guess.NewBcryptVerifier(), publisher, logger)
	app.HubManager = hubManager
	app.Registry.OnRoomDeleted = hubManager.RemoveHub
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	roomCfg registry.Config,
	cache leaderboard.Cache,
	store storage.Store,
	clk clock.Clock,
	rnd random.Random,
	metricsReg *prometheus.Registry,
	verifier guess.SecretVerifier,
	publisher broadcast.Publisher,
	logger *slog.Logger,
) *App {
	m := metrics.New(metricsNamespace, metricsReg)

	reg := registry.New(roomCfg, clk, rnd, cache, publisher, m, logger)

	matches := match.NewController(reg, cache, store, publisher, clk, m, logger)
	resolver := guess.NewResolver(reg, cache, verifier, publisher, matches, clk, m, logger)

	return &App{
		Cache:      cache,
		Store:      store,
		Clock:      clk,
		Random:     rnd,
		Registry:   reg,
		Matches:    matches,
		Resolver:   resolver,
		Publisher:  publisher,
		Metrics:    m,
		MetricsReg: metricsReg,
	}
}

// Close releases the app's external connections
func (a *App) Close() error {
	var errs []error
	if closer, ok := a.Cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
