package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns auth routes mounted at /auth
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(authMiddleware).Get("/me", h.Me)

	return r
}
