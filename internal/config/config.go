// Package config builds the server command and its settings.
// Every flag can also be set from the environment with the GUESSGAME_ prefix.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/factory"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/auth"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/game"
	redisstorage "github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage/redis"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/web/ws"
)

// EnvPrefix is prepended to flag names to form environment variables
const EnvPrefix = "GUESSGAME"

// Config holds the server settings
type Config struct {
	Bind string
	Port int

	Storage    string
	RedisURL   string
	SQLitePath string

	AdminSecret     string
	AdminUsername   string
	AdminPassword   string
	AdminSessionTTL time.Duration

	SessionTimeout time.Duration
	StorageTimeout time.Duration
	AllowedOrigins []string

	LogLevel string
}

// Validate checks the settings after flags and environment are applied
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}

	switch c.Storage {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("--redis-url is required when --storage=redis")
		}
	case factory.StorageTypeSQLite:
		if c.SQLitePath == "" {
			return errors.New("--sqlite-path is required when --storage=sqlite")
		}
	default:
		return fmt.Errorf("invalid storage %q (must be memory, redis or sqlite)", c.Storage)
	}

	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return errors.New("both --admin-username and --admin-password must be provided together")
	}
	if c.AdminUsername != "" && utf8.RuneCountInString(c.AdminUsername) < model.MinCredentialLength {
		return fmt.Errorf("--admin-username must be at least %d characters", model.MinCredentialLength)
	}
	if c.AdminPassword != "" && utf8.RuneCountInString(c.AdminPassword) < model.MinCredentialLength {
		return fmt.Errorf("--admin-password must be at least %d characters", model.MinCredentialLength)
	}
	if c.AdminSessionTTL <= 0 {
		return errors.New("--admin-session-ttl must be positive")
	}
	if c.SessionTimeout < 0 {
		return errors.New("--session-timeout must not be negative")
	}
	if c.StorageTimeout <= 0 {
		return errors.New("--storage-timeout must be positive")
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Logger returns a JSON logger at the configured level
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Factory converts the settings into application wiring
func (c *Config) Factory(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: c.Storage,
		SQLitePath:  c.SQLitePath,
		AuthConfig: auth.Config{
			AdminSecret:     c.AdminSecret,
			AdminSessionTTL: c.AdminSessionTTL,
		},
		GameConfig: game.Config{
			SessionTimeout: c.SessionTimeout,
		},
		HubConfig: ws.Config{
			StorageTimeout: c.StorageTimeout,
		},
	}

	if c.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// CheckOrigin accepts websocket upgrades from the allowed origins.
// It returns nil, meaning any origin, when none are configured.
func (c *Config) CheckOrigin() func(r *http.Request) bool {
	if len(c.AllowedOrigins) == 0 {
		return nil
	}
	allowed := make([]string, len(c.AllowedOrigins))
	for i, o := range c.AllowedOrigins {
		allowed[i] = strings.ToLower(strings.TrimSuffix(o, "/"))
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients do not send an Origin
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.Contains(allowed, strings.ToLower(u.Scheme+"://"+u.Host))
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// NewCommand builds the server command; run is called with validated settings
func NewCommand(cfg *Config, version string, run func(ctx context.Context, cfg *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "guessgame-server",
		Short:   "Two-player number guessing game server.",
		Args:    cobra.ExactArgs(0),
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: GUESSGAME_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 3000, "port to listen on (env: GUESSGAME_PORT)")
	fs.StringVar(&cfg.Storage, "storage", factory.StorageTypeMemory, "account store: memory, redis or sqlite (env: GUESSGAME_STORAGE)")
	fs.StringVar(&cfg.RedisURL, "redis-url", "", "redis connection URL (env: GUESSGAME_REDIS_URL)")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", "database/database.db", "sqlite database file (env: GUESSGAME_SQLITE_PATH)")
	fs.StringVar(&cfg.AdminSecret, "admin-secret", "", "shared secret for the admin API; empty disables it (env: GUESSGAME_ADMIN_SECRET)")
	fs.StringVar(&cfg.AdminUsername, "admin-username", "", "admin account created at startup (env: GUESSGAME_ADMIN_USERNAME)")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "password for --admin-username (env: GUESSGAME_ADMIN_PASSWORD)")
	fs.DurationVar(&cfg.AdminSessionTTL, "admin-session-ttl", time.Hour, "lifetime of admin API tokens (env: GUESSGAME_ADMIN_SESSION_TTL)")
	fs.DurationVar(&cfg.SessionTimeout, "session-timeout", 2*time.Minute, "time before an unfinished game is abandoned; 0 disables (env: GUESSGAME_SESSION_TIMEOUT)")
	fs.DurationVar(&cfg.StorageTimeout, "storage-timeout", 5*time.Second, "timeout for each account store call (env: GUESSGAME_STORAGE_TIMEOUT)")
	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", nil, "origins allowed to open websockets; empty allows all (env: GUESSGAME_ALLOWED_ORIGINS)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "debug, info, warn or error (env: GUESSGAME_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("guessgame-server v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
