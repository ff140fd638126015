package course

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/campusquest-api/internal/middleware"
)

// Routes returns course routes mounted at /courses. subresources, when
// non-nil, is called with the /{courseID} subtree so callers can mount
// nested resources (rewards, quests, redemptions) under a course.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, subresources func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.With(middleware.RequireInstructor()).Post("/", h.Create)
	r.With(middleware.RequireStudent()).Post("/join", h.Join)

	r.Route("/{courseID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.With(middleware.RequireInstructor()).Get("/students", h.Roster)
		if subresources != nil {
			subresources(r)
		}
	})

	return r
}
