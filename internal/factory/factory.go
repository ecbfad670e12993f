package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/textworld/internal/dependencies/clock"
	"github.com/mcoot/textworld/internal/dependencies/ids"
	"github.com/mcoot/textworld/internal/services/account"
	"github.com/mcoot/textworld/internal/services/command"
	"github.com/mcoot/textworld/internal/services/game"
	"github.com/mcoot/textworld/internal/services/hasher"
	"github.com/mcoot/textworld/internal/storage"
	"github.com/mcoot/textworld/internal/storage/filesystem"
	"github.com/mcoot/textworld/internal/storage/memory"
	redisstorage "github.com/mcoot/textworld/internal/storage/redis"
	"github.com/mcoot/textworld/internal/storage/sqlite"
	"github.com/mcoot/textworld/internal/world"
)

// Storage type constants
const (
	StorageTypeMemory     = "memory"
	StorageTypeFilesystem = "filesystem"
	StorageTypeRedis      = "redis"
	StorageTypeSQLite     = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.AccountStorage

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Services
	Hasher         hasher.Hasher
	World          *world.Graph
	Accounts       *account.Service
	GameController *game.Controller
	Commands       *command.Facade

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// FilesystemPath is the account folder (required if StorageType is "filesystem")
	FilesystemPath string
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// WorldPath is a YAML world file; empty uses the built-in world
	WorldPath string
	// HashAlgorithm picks the password digest; empty uses sha256
	HashAlgorithm string
	// Game holds session settings (optional)
	// If zero value, defaults to game.DefaultConfig()
	Game game.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	h, err := hasher.New(cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	graph, err := world.Load(cfg.WorldPath)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	gameCfg := cfg.Game
	if gameCfg.HeartbeatTimeout == 0 {
		gameCfg = game.DefaultConfig()
	}

	app, err := newWithDependencies(ctx, store, clock.New(), ids.New(), h, graph, gameCfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info("application wired",
		slog.String("storage", storageName(cfg.StorageType)),
		slog.Int("rooms", len(graph.Rooms())),
		slog.Int("accounts", app.Accounts.Count()),
	)
	return app, nil
}

func storageName(t string) string {
	if t == "" {
		return StorageTypeMemory
	}
	return t
}

func openStorage(cfg Config) (storage.AccountStorage, error) {
	switch storageName(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFilesystem:
		if cfg.FilesystemPath == "" {
			return nil, errors.New("FilesystemPath required when StorageType is filesystem")
		}
		return filesystem.New(cfg.FilesystemPath)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.New(cfg.SQLitePath)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, filesystem, sqlite or redis", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	ctx context.Context,
	store storage.AccountStorage,
	clk clock.Clock,
	gen ids.Generator,
	h hasher.Hasher,
	graph *world.Graph,
	gameCfg game.Config,
	logger *slog.Logger,
) (*App, error) {
	accounts, err := account.New(ctx, store, clk, logger)
	if err != nil {
		return nil, err
	}
	controller := game.NewController(gameCfg, accounts, graph, clk, gen, logger)
	commands := command.New(h, controller, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		IDs:            gen,
		Hasher:         h,
		World:          graph,
		Accounts:       accounts,
		GameController: controller,
		Commands:       commands,
		Logger:         logger,
	}, nil
}

// Close tears down every live session and releases storage
func (a *App) Close(ctx context.Context) error {
	a.GameController.Shutdown(ctx)
	return a.Storage.Close()
}
