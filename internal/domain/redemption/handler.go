package redemption

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campusquest/campusquest-api/internal/middleware"
	"github.com/campusquest/campusquest-api/internal/pkg/response"
	"github.com/campusquest/campusquest-api/internal/pkg/validator"
)

// Handler handles redemption HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates redemption handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Purchase handles POST /purchases
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	studentID := middleware.GetStudentID(r.Context())
	result, err := h.service.Purchase(r.Context(), studentID, req.RewardID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, toPurchaseResponse(result))
}

// ListByCourse handles GET /courses/{courseID}/redemptions
func (h *Handler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid course ID")
		return
	}

	studentID := middleware.GetStudentID(r.Context())
	rows, err := h.service.ListByCourse(r.Context(), studentID, courseID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, toGroupedResponses(rows))
}

// Fulfill handles POST /redemptions/{id}/fulfill
func (h *Handler) Fulfill(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, StatusFulfilled)
}

// Reject handles POST /redemptions/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, StatusRejected)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, target Status) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid redemption ID")
		return
	}

	instructorID := middleware.GetUserID(r.Context())

	var rd *Redemption
	if target == StatusFulfilled {
		rd, err = h.service.Fulfill(r.Context(), instructorID, id)
	} else {
		rd, err = h.service.Reject(r.Context(), instructorID, id)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, toRedemptionResponse(rd))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRewardUnavailable):
		response.Conflict(w, "REWARD_UNAVAILABLE", "Reward is inactive, unknown or sold out")
	case errors.Is(err, ErrInsufficientPoints):
		response.Conflict(w, "INSUFFICIENT_POINTS", "Not enough points for this reward")
	case errors.Is(err, ErrTransactionFailed):
		response.Conflict(w, "TRANSACTION_FAILED", "Purchase could not be completed, please retry")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Redemption not found")
	case errors.Is(err, ErrAlreadyResolved):
		response.Conflict(w, "ALREADY_RESOLVED", "Redemption has already been fulfilled or rejected")
	case errors.Is(err, ErrNotInstructor):
		response.Forbidden(w, "Only the course instructor can resolve redemptions")
	default:
		response.InternalError(w)
	}
}
