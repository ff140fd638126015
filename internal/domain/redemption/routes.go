package redemption

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/campusquest-api/internal/middleware"
)

// Routes returns redemption routes mounted at /redemptions
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireInstructor())
		r.Post("/{id}/fulfill", h.Fulfill)
		r.Post("/{id}/reject", h.Reject)
	})

	return r
}

// PurchaseRoutes returns the purchase endpoint mounted at /purchases
func (h *Handler) PurchaseRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.With(middleware.RequireStudent()).Post("/", h.Purchase)

	return r
}

// CourseRoutes returns redemption routes nested under /courses/{courseID}/redemptions
func (h *Handler) CourseRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.With(middleware.RequireStudent()).Get("/", h.ListByCourse)

	return r
}
