package reward

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/campusquest-api/internal/middleware"
	"github.com/campusquest/campusquest-api/internal/pkg/imaging"
	"github.com/campusquest/campusquest-api/internal/pkg/response"
	"github.com/campusquest/campusquest-api/internal/pkg/validator"
)

// Handler handles reward HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates reward handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListByCourse handles GET /courses/{courseID}/rewards
func (h *Handler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	rewards, err := h.service.ListAvailable(r.Context(), courseID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*Response, len(rewards))
	for i, rw := range rewards {
		items[i] = ResponseFromAvailable(rw)
	}

	response.OK(w, items)
}

// Create handles POST /courses/{courseID}/rewards
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
	rw, err := h.service.Create(r.Context(), instructorID, courseID, req.Name, req.Cost, req.QuantityLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, ResponseFromEntity(rw))
}

// Update handles PUT /rewards/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid reward ID")
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
	rw, err := h.service.Update(r.Context(), instructorID, id, req.Name, req.Cost, req.QuantityLimit, req.Active)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, ResponseFromEntity(rw))
}

// UploadIcon handles POST /rewards/{id}/icon (multipart)
func (h *Handler) UploadIcon(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid reward ID")
		return
	}

	if err := r.ParseMultipartForm(imaging.MaxFileSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("icon")
	if err != nil {
		response.BadRequest(w, "Missing icon file")
		return
	}
	defer file.Close()

	instructorID := middleware.GetUserID(r.Context())
	url, err := h.service.UploadIcon(r.Context(), instructorID, id, header.Filename, file)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, map[string]string{"image_url": url})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Reward not found")
	case errors.Is(err, ErrNegativeCost):
		response.BadRequest(w, "Reward cost must not be negative")
	case errors.Is(err, ErrNotInstructor):
		response.Forbidden(w, "Only the course instructor can manage rewards")
	case errors.Is(err, ErrInvalidImage):
		response.BadRequest(w, "Invalid reward image")
	default:
		response.InternalError(w)
	}
}
