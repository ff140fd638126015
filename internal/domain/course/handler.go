package course

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

// Handler handles course HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates course handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /courses
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
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
	c, err := h.service.Create(r.Context(), instructorID, req.Title)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, c)
}

// List handles GET /courses. Instructors see the courses they run,
// students the courses they joined.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var courses []*Course
	var err error
	if middleware.GetRole(ctx) == "instructor" {
		courses, err = h.service.ListForInstructor(ctx, middleware.GetUserID(ctx))
	} else {
		courses, err = h.service.ListForStudent(ctx, middleware.GetStudentID(ctx))
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, courses)
}

// Get handles GET /courses/{courseID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, c)
}

// Join handles POST /courses/join
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	studentID := middleware.GetStudentID(r.Context())
	c, err := h.service.Join(r.Context(), studentID, req.JoinCode)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, c)
}

// Roster handles GET /courses/{courseID}/students
func (h *Handler) Roster(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	instructorID := middleware.GetUserID(r.Context())
	students, err := h.service.Roster(r.Context(), instructorID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, students)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Course not found")
	case errors.Is(err, ErrInvalidJoinCode):
		response.NotFound(w, "No course with that join code")
	case errors.Is(err, ErrAlreadyEnrolled):
		response.Conflict(w, "ALREADY_ENROLLED", "Student is already enrolled in this course")
	case errors.Is(err, ErrNotInstructor):
		response.Forbidden(w, "Only the course instructor can view the roster")
	default:
		response.InternalError(w)
	}
}
