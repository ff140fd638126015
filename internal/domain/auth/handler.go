package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campusquest/campusquest-api/internal/middleware"
	"github.com/campusquest/campusquest-api/internal/pkg/response"
	"github.com/campusquest/campusquest-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	u, token, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, &TokenResponse{AccessToken: token, User: u})
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	u, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, &TokenResponse{AccessToken: token, User: u})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, u)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmailTaken):
		response.Conflict(w, "EMAIL_TAKEN", "Email is already registered")
	case errors.Is(err, ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	default:
		response.InternalError(w)
	}
}
