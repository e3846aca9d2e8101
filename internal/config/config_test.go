package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 4, cfg.Room.MaxPlayers)
	assert.Equal(t, 3, cfg.Room.MaxRounds)
	assert.Equal(t, 5*time.Second, cfg.Room.ReapGrace)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
server:
  port: 9090
  rate_limit: 100
room:
  max_rounds: 5
  reap_grace: 30s
cache:
  backend: redis
  redis_url: redis://cache.internal:6379
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hintrush.yaml"), []byte(contents), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 100.0, cfg.Server.RateLimit)
	assert.Equal(t, 5, cfg.Room.MaxRounds)
	assert.Equal(t, 30*time.Second, cfg.Room.ReapGrace)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis://cache.internal:6379", cfg.Cache.RedisURL)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched values keep their defaults
	assert.Equal(t, 4, cfg.Room.MaxPlayers)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hintrush.yaml"),
		[]byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("HINTRUSH_SERVER_PORT", "7070")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hintrush.yaml"),
		[]byte("cache:\n  backend: memcached\n"), 0o644))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "unknown cache backend")
}

func TestLoadRejectsInvalidRoomSettings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hintrush.yaml"),
		[]byte("room:\n  max_rounds: 0\n"), 0o644))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "max_rounds")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hintrush.yaml"),
		[]byte("server: [not a map"), 0o644))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "reading config")
}
