package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the WebSocket route mounted at /ws
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(authMiddleware).Get("/", h.WebSocket)

	return r
}
