package quest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/campusquest-api/internal/middleware"
)

// Routes returns quest routes mounted at /quests
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireInstructor())
		r.Put("/{id}", h.Update)
		r.Post("/{id}/approve", h.Approve)
		r.Get("/{id}/completions", h.Completions)
	})

	return r
}

// CourseRoutes returns quest routes nested under /courses/{courseID}/quests
func (h *Handler) CourseRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.ListByCourse)
	r.With(middleware.RequireInstructor()).Post("/", h.Create)

	return r
}
