package factory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/hintrush-go/internal/broadcast"
	"github.com/mcoot/hintrush-go/internal/dependencies/mocks"
	"github.com/mcoot/hintrush-go/internal/leaderboard"
	"github.com/mcoot/hintrush-go/internal/registry"
	memorystore "github.com/mcoot/hintrush-go/internal/storage/memory"
)

// StubVerifier matches a guess by direct string comparison, standing in
// for the hash comparison so tests control correctness exactly
type StubVerifier struct{}

// Verify reports whether guess equals the stored value
func (v StubVerifier) Verify(_ context.Context, secret, guess string) (bool, error) {
	return secret == guess, nil
}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// Events captures everything published, in order
	Events *broadcast.Capture

	// MemoryStore is the durable store, exposed for failure injection
	MemoryStore *memorystore.Store
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memorystore.New()
	cache := leaderboard.NewMemory()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	// Events are captured directly instead of routed through hubs
	capture := broadcast.NewCapture()

	app := newWithDependencies(
		registry.DefaultConfig(),
		cache,
		store,
		mockClock,
		mockRandom,
		prometheus.NewRegistry(),
		StubVerifier{},
		capture,
		logger,
	)

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		Events:      capture,
		MemoryStore: store,
	}
}
