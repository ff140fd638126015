package reward

import (
	"database/sql"
	"time"
)

// Reward is one instructor-defined item students can redeem points for
type Reward struct {
	ID            int64         `db:"id" json:"id"`
	CourseID      int64         `db:"course_id" json:"course_id"`
	Name          string        `db:"name" json:"name"`
	Cost          int64         `db:"cost" json:"cost"`
	QuantityLimit sql.NullInt64 `db:"quantity_limit" json:"-"`
	Active        bool          `db:"active" json:"active"`
	ImageURL      string        `db:"image_url" json:"image_url"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// Limited reports whether the reward has finite stock
func (r *Reward) Limited() bool {
	return r.QuantityLimit.Valid
}

// AvailableReward is a reward joined with its live remaining stock.
// RemainingStock is nil for unlimited rewards.
type AvailableReward struct {
	Reward
	Redeemed int64 `db:"redeemed"`
}

// RemainingStock returns quantity_limit minus non-rejected redemptions,
// floored at zero. Nil when the reward is unlimited.
func (a *AvailableReward) RemainingStock() *int64 {
	if !a.QuantityLimit.Valid {
		return nil
	}
	remaining := a.QuantityLimit.Int64 - a.Redeemed
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}
