package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/config"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/factory"
)

const releaseVersion = "1.0.0"

func main() {
	cfg := &config.Config{}
	cobra.CheckErr(config.NewCommand(cfg, releaseVersion, serve).Execute())
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Set up logging with JSON output
	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	app, err := factory.New(cfg.Factory(logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	if err := app.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}
	if cfg.AdminSecret == "" {
		logger.Warn("admin API disabled: no admin secret configured")
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go app.Hub.Run(hubCtx)
	go cleanAdminSessions(hubCtx, app)

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.AuthService,
		Hub:         app.Hub,
		CheckOrigin: cfg.CheckOrigin(),
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Bind
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)
	// Websocket connections are hijacked, so the hub closes them itself
	server.OnShutdown(stopHub)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
		<-app.Hub.Done()
	}

	logger.Info("server stopped")
	return nil
}

// cleanAdminSessions drops expired admin tokens periodically
func cleanAdminSessions(ctx context.Context, app *factory.App) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.AuthService.CleanExpiredSessions()
		}
	}
}
