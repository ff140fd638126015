package redemption

import (
	"time"

	"github.com/google/uuid"
)

// Status of a redemption. It starts at pending and is advanced only by an
// instructor; the purchase path never moves it past creation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// Terminal reports whether no further transitions are allowed
func (s Status) Terminal() bool {
	return s == StatusFulfilled || s == StatusRejected
}

// Redemption is a record of a student claiming one unit of a reward.
// It is created atomically with its balancing ledger entry.
type Redemption struct {
	ID         uuid.UUID `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	RewardID   int64     `db:"reward_id" json:"reward_id"`
	Status     Status    `db:"status" json:"status"`
	RedeemedAt time.Time `db:"redeemed_at" json:"redeemed_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PurchaseResult is returned on a committed purchase
type PurchaseResult struct {
	RedemptionID  uuid.UUID
	LedgerEntryID uuid.UUID
	RewardID      int64
	Cost          int64
	Balance       int64 // balance after the debit
}

// GroupedRow is one line of a student's redemption history for a course,
// grouped by (reward, status).
type GroupedRow struct {
	RewardID   int64  `db:"reward_id" json:"reward_id"`
	RewardName string `db:"reward_name" json:"reward_name"`
	Status     Status `db:"status" json:"status"`
	Quantity   int64  `db:"quantity" json:"quantity"`
}
