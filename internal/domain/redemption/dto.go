package redemption

import "github.com/google/uuid"

// PurchaseRequest is the body of POST /purchases
type PurchaseRequest struct {
	RewardID int64 `json:"reward_id" validate:"required,min=1"`
}

// PurchaseResponse is returned on a successful purchase
type PurchaseResponse struct {
	RedemptionID  uuid.UUID `json:"redemption_id"`
	LedgerEntryID uuid.UUID `json:"ledger_entry_id"`
	RewardID      int64     `json:"reward_id"`
	Cost          int64     `json:"cost"`
	Balance       int64     `json:"balance"`
}

// RedemptionResponse is the instructor-facing view of a single redemption
type RedemptionResponse struct {
	ID         uuid.UUID `json:"id"`
	StudentID  string    `json:"student_id"`
	RewardID   int64     `json:"reward_id"`
	Status     Status    `json:"status"`
	RedeemedAt string    `json:"redeemed_at"`
}

// GroupedResponse is one row of a student's per-course redemption summary
type GroupedResponse struct {
	RewardID   int64  `json:"reward_id"`
	RewardName string `json:"reward_name"`
	Status     Status `json:"status"`
	Quantity   int64  `json:"quantity"`
}

func toPurchaseResponse(r *PurchaseResult) *PurchaseResponse {
	return &PurchaseResponse{
		RedemptionID:  r.RedemptionID,
		LedgerEntryID: r.LedgerEntryID,
		RewardID:      r.RewardID,
		Cost:          r.Cost,
		Balance:       r.Balance,
	}
}

func toRedemptionResponse(r *Redemption) *RedemptionResponse {
	return &RedemptionResponse{
		ID:         r.ID,
		StudentID:  r.StudentID,
		RewardID:   r.RewardID,
		Status:     r.Status,
		RedeemedAt: r.RedeemedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toGroupedResponses(rows []GroupedRow) []GroupedResponse {
	out := make([]GroupedResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, GroupedResponse{
			RewardID:   row.RewardID,
			RewardName: row.RewardName,
			Status:     row.Status,
			Quantity:   row.Quantity,
		})
	}
	return out
}
