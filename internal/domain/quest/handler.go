package quest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/campusquest-api/internal/middleware"
	"github.com/campusquest/campusquest-api/internal/pkg/response"
	"github.com/campusquest/campusquest-api/internal/pkg/validator"
)

// Handler handles quest HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates quest handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListByCourse handles GET /courses/{courseID}/quests
func (h *Handler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	quests, err := h.service.ListByCourse(r.Context(), courseID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*Response, len(quests))
	for i, q := range quests {
		items[i] = toResponse(q)
	}
	response.OK(w, items)
}

// Create handles POST /courses/{courseID}/quests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	instructorID := middleware.GetUserID(r.Context())
	q, err := h.service.Create(r.Context(), instructorID, courseID, req.Name, req.Description, req.Points, req.DueAt)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, toResponse(q))
}

// Update handles PUT /quests/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid quest ID")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	instructorID := middleware.GetUserID(r.Context())
	q, err := h.service.Update(r.Context(), instructorID, id, req.Name, req.Description, req.Points, req.Active, req.DueAt)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, toResponse(q))
}

// Approve handles POST /quests/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid quest ID")
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	instructorID := middleware.GetUserID(r.Context())
	completion, err := h.service.Approve(r.Context(), instructorID, id, req.StudentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, completion)
}

// Completions handles GET /quests/{id}/completions
func (h *Handler) Completions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid quest ID")
		return
	}

	instructorID := middleware.GetUserID(r.Context())
	completions, err := h.service.Completions(r.Context(), instructorID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, completions)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Quest not found")
	case errors.Is(err, ErrNotInstructor):
		response.Forbidden(w, "Only the course instructor can manage quests")
	case errors.Is(err, ErrNonPositive):
		response.BadRequest(w, "Quest points must be positive")
	case errors.Is(err, ErrInactive):
		response.Conflict(w, "QUEST_INACTIVE", "Quest is no longer active")
	case errors.Is(err, ErrExpired):
		response.Conflict(w, "QUEST_EXPIRED", "Quest is past its due date")
	case errors.Is(err, ErrAlreadyCompleted):
		response.Conflict(w, "ALREADY_COMPLETED", "Student has already completed this quest")
	default:
		response.InternalError(w)
	}
}
