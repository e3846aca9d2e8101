package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/hintrush-go/internal/api"
	"github.com/mcoot/hintrush-go/internal/config"
	"github.com/mcoot/hintrush-go/internal/factory"
	"github.com/mcoot/hintrush-go/internal/leaderboard"
	"github.com/mcoot/hintrush-go/internal/registry"
	"github.com/mcoot/hintrush-go/internal/storage/postgres"
)

func main() {
	// Local development convenience; absent .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("HINTRUSH_CONFIG_DIR"))
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger: logger,
		RoomConfig: registry.Config{
			MaxPlayers: cfg.Room.MaxPlayers,
			MaxRounds:  cfg.Room.MaxRounds,
			ReapGrace:  cfg.Room.ReapGrace,
		},
		CacheType: cfg.Cache.Backend,
		StoreType: cfg.Store.Backend,
	}

	if cfg.Cache.Backend == factory.CacheTypeRedis {
		redisCfg := leaderboard.DefaultConfig()
		redisCfg.URL = cfg.Cache.RedisURL
		redisCfg.PoolSize = cfg.Cache.PoolSize
		redisCfg.MinIdleConns = cfg.Cache.MinIdleConns
		factoryCfg.RedisConfig = &redisCfg
	}
	if cfg.Store.Backend == factory.StoreTypePostgres {
		factoryCfg.PostgresConfig = &postgres.Config{
			Host:     cfg.Store.Host,
			Port:     cfg.Store.Port,
			User:     cfg.Store.User,
			Password: cfg.Store.Password,
			DBName:   cfg.Store.DBName,
			SSLMode:  cfg.Store.SSLMode,
		}
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close error", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Registry:   app.Registry,
		Matches:    app.Matches,
		Resolver:   app.Resolver,
		Cache:      app.Cache,
		Store:      app.Store,
		HubManager: app.HubManager,
		Metrics:    app.Metrics,
		MetricsReg: app.MetricsReg,
		RatePerSec: cfg.Server.RateLimit,
		RateBurst:  cfg.Server.RateBurst,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	if cfg.Server.ShutdownTimeout > 0 {
		serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}
	server := api.NewServer(router, serverConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
