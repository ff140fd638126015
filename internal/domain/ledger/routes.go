package ledger

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns points routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/balance", h.GetBalance)
	r.Get("/history", h.GetHistory)
	r.Get("/leaderboard", h.GetLeaderboard)

	return r
}
