package ledger

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable signed point movement for a student.
// Rows are append-only: corrections are new offsetting entries, never updates.
type Entry struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	StudentID    string        `db:"student_id" json:"student_id"`
	PointsDelta  int64         `db:"points_delta" json:"points_delta"`
	RedemptionID uuid.NullUUID `db:"redemption_id" json:"-"`
	QuestID      sql.NullInt64 `db:"quest_id" json:"-"`
	Description  string        `db:"description" json:"description"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// IsSpend reports whether the entry is a debit tied to a redemption
func (e *Entry) IsSpend() bool {
	return e.PointsDelta < 0 && e.RedemptionID.Valid
}

// LeaderboardRow is one student's total earned points
type LeaderboardRow struct {
	StudentID   string `db:"student_id" json:"student_id"`
	TotalEarned int64  `db:"total_earned" json:"total_earned"`
}
