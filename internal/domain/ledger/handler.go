package ledger

import (
	"net/http"
	"strconv"

	"github.com/campusquest/campusquest-api/internal/middleware"
	"github.com/campusquest/campusquest-api/internal/pkg/response"
)

// Handler handles points HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates ledger handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetBalance handles GET /points/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetStudentID(r.Context())

	balance, err := h.service.Balance(r.Context(), studentID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, &BalanceResponse{StudentID: studentID, Balance: balance})
}

// GetHistory handles GET /points/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetStudentID(r.Context())

	entries, err := h.service.History(r.Context(), studentID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		items[i] = EntryResponseFromEntity(e)
	}

	response.OK(w, items)
}

// GetLeaderboard handles GET /points/leaderboard
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, rows)
}
