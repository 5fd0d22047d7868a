package middleware

import (
	"log/slog"
	"net/http"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api/apierr"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics become a JSON INTERNAL_ERROR response unless the request was
// already upgraded to a websocket.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
