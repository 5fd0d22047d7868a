package handler

import (
	"net/http"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api/response"
)

// ConnectionCounter reports open player connections
type ConnectionCounter interface {
	ClientCount() int
}

// Health handles GET /api/v1/health
func Health(counter ConnectionCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{
			Status:      "ok",
			Connections: counter.ClientCount(),
		})
	}
}
