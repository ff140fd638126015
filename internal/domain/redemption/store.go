package redemption

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusquest/campusquest-api/internal/domain/ledger"
)

// ReservedReward is a reward row read under an exclusive per-reward lock.
// While the enclosing transaction is open no other transaction can observe
// or consume the same stock unit.
type ReservedReward struct {
	ID            int64
	CourseID      int64
	Name          string
	Cost          int64
	Active        bool
	QuantityLimit *int64 // nil = unlimited
	Redeemed      int64  // non-rejected redemptions at lock time
}

// Available reports whether one unit can be claimed right now
func (r *ReservedReward) Available() bool {
	if !r.Active {
		return false
	}
	if r.QuantityLimit != nil && *r.QuantityLimit-r.Redeemed <= 0 {
		return false
	}
	return true
}

// Tx is a scoped transaction over the redemption and ledger stores.
// It is acquired from Store.Begin and must be closed on every exit path
// via Commit or Rollback. Lock order is fixed: reward first, student
// second; a transaction takes at most one of each, so no cycle can form.
type Tx interface {
	// ReserveReward locks the reward row and returns it with its current
	// non-rejected redemption count. Returns (nil, nil) when no such
	// reward exists.
	ReserveReward(ctx context.Context, rewardID int64) (*ReservedReward, error)

	// StudentBalance locks the student's ledger key and returns the sum of
	// committed entries as seen inside this transaction.
	StudentBalance(ctx context.Context, studentID string) (int64, error)

	InsertRedemption(ctx context.Context, r *Redemption) error
	InsertLedgerEntry(ctx context.Context, e *ledger.Entry) error

	// RedemptionForUpdate locks a redemption and its reward for a status
	// transition. Returns (nil, nil, nil) when the redemption is missing.
	RedemptionForUpdate(ctx context.Context, id uuid.UUID) (*Redemption, *ReservedReward, error)
	UpdateRedemptionStatus(ctx context.Context, id uuid.UUID, status Status) error

	// SpendEntry returns the balancing debit entry for a redemption.
	// Every redemption has exactly one; a missing entry is an invariant
	// violation.
	SpendEntry(ctx context.Context, redemptionID uuid.UUID) (*ledger.Entry, error)

	Commit() error
	Rollback() error
}

// Store is the durable backend for redemptions and their ledger writes.
// Postgres in production; an in-memory implementation backs tests.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	// GroupedByCourse is the read side: a student's redemptions for a
	// course, grouped by (reward, status). Never writes.
	GroupedByCourse(ctx context.Context, studentID string, courseID int64) ([]GroupedRow, error)
}
