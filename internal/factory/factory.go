package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/clock"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/random"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/auth"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/game"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage/memory"
	redisstorage "github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage/redis"
	sqlitestorage "github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage/sqlite"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.AccountStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService *auth.Service
	Hub         *ws.Hub

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the account store ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string

	AuthConfig auth.Config
	GameConfig game.Config
	HubConfig  ws.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg, logger), nil
}

func newStorage(cfg Config) (storage.AccountStore, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlitestorage.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.AccountStore, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	authService := auth.New(store, clk, cfg.AuthConfig)
	hub := ws.NewHub(authService, func(n game.Notifier) *game.Coordinator {
		return game.NewCoordinator(n, clk, rnd, cfg.GameConfig, logger)
	}, clk, cfg.HubConfig, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		AuthService: authService,
		Hub:         hub,
		Logger:      logger,
	}
}

// EnsureAdmin creates the bootstrap admin account when both fields are set
func (a *App) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	account, err := a.AuthService.EnsureAdmin(ctx, username, password)
	if err != nil {
		return fmt.Errorf("ensure admin account: %w", err)
	}
	if !account.IsAdmin() {
		a.Logger.Warn("admin username is held by a non-admin account",
			slog.String("username", account.Username),
			slog.String("role", string(account.Role)))
		return nil
	}
	a.Logger.Info("admin account ready",
		slog.String("username", account.Username),
		slog.Int64("id", int64(account.ID)))
	return nil
}

// Close releases the account store
func (a *App) Close() error {
	return a.Storage.Close()
}
