package ledger

import (
	"time"

	"github.com/google/uuid"
)

// BalanceResponse for GET /points/balance
type BalanceResponse struct {
	StudentID string `json:"student_id"`
	Balance   int64  `json:"balance"`
}

// EntryResponse represents a ledger entry in API
type EntryResponse struct {
	ID           uuid.UUID `json:"id"`
	PointsDelta  int64     `json:"points_delta"`
	Description  string    `json:"description"`
	RedemptionID *string   `json:"redemption_id,omitempty"`
	QuestID      *int64    `json:"quest_id,omitempty"`
	CreatedAt    string    `json:"created_at"`
}

// EntryResponseFromEntity converts entry to response
func EntryResponseFromEntity(e *Entry) *EntryResponse {
	resp := &EntryResponse{
		ID:          e.ID,
		PointsDelta: e.PointsDelta,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if e.RedemptionID.Valid {
		id := e.RedemptionID.UUID.String()
		resp.RedemptionID = &id
	}
	if e.QuestID.Valid {
		questID := e.QuestID.Int64
		resp.QuestID = &questID
	}
	return resp
}
