package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api/handler"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api/middleware"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/auth"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/web/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Hub         *ws.Hub
	// CheckOrigin filters websocket upgrades; nil accepts any origin
	CheckOrigin func(r *http.Request) bool
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	adminHandler := handler.NewAdminHandler(cfg.AuthService, cfg.Hub)
	wsHandler := ws.NewHandler(cfg.Hub, cfg.CheckOrigin, cfg.Logger)

	// Create middleware
	adminAuth := middleware.AdminAuth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth)
	api.HandleFunc("/health", handler.Health(cfg.Hub)).Methods(http.MethodGet)

	// Admin session (no auth required to log in)
	api.HandleFunc("/admin/session", adminHandler.Login).Methods(http.MethodPost)

	// Protected admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminAuth)
	admin.HandleFunc("/session", adminHandler.Logout).Methods(http.MethodDelete)
	admin.HandleFunc("/users", adminHandler.ListAccounts).Methods(http.MethodGet)
	admin.HandleFunc("/game", adminHandler.GetGame).Methods(http.MethodGet)

	// Legacy single-request admin listing
	r.HandleFunc("/admin", adminHandler.LegacyLogin).Methods(http.MethodPost)

	// Notification channel
	r.Handle("/ws", wsHandler).Methods(http.MethodGet)

	return r
}
