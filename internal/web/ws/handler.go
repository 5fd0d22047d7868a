package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func newConnID() string {
	return uuid.NewString()
}

// Handler upgrades HTTP requests and attaches them to a Hub
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a Handler. A nil checkOrigin accepts any origin.
func NewHandler(hub *Hub, checkOrigin func(r *http.Request) bool, logger *slog.Logger) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		h.logger.Warn("upgrade failed", slog.String("error", err.Error()))
		return
	}

	if err := h.hub.Attach(conn); err != nil {
		h.logger.Warn("connection rejected", slog.String("error", err.Error()))
	}
}
