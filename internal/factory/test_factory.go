package factory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/textworld/internal/dependencies/mocks"
	"github.com/mcoot/textworld/internal/services/game"
	"github.com/mcoot/textworld/internal/services/hasher"
	"github.com/mcoot/textworld/internal/storage/memory"
	"github.com/mcoot/textworld/internal/world"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
	Memory    *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
// It uses memory storage, the built-in world and sha256 digests
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	graph, err := world.Default()
	if err != nil {
		panic(err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app, err := newWithDependencies(context.Background(), store, mockClock, mockIDs, hasher.SHA256{}, graph, game.DefaultConfig(), logger)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
		Memory:    store,
	}
}
