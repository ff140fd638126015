package reward

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/campusquest-api/internal/middleware"
)

// Routes returns reward routes mounted at /rewards
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireInstructor())
		r.Put("/{id}", h.Update)
		r.Post("/{id}/icon", h.UploadIcon)
	})

	return r
}

// CourseRoutes returns reward routes nested under /courses/{courseID}/rewards
func (h *Handler) CourseRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.ListByCourse)
	r.With(middleware.RequireInstructor()).Post("/", h.Create)

	return r
}
