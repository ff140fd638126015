package quest

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Quest is a point-earning task inside a course. Instructors approve
// completions; each approval credits the quest's points to the student
// exactly once.
type Quest struct {
	ID          int64        `db:"id" json:"id"`
	CourseID    int64        `db:"course_id" json:"course_id"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description"`
	Points      int64        `db:"points" json:"points"`
	Active      bool         `db:"active" json:"active"`
	DueAt       sql.NullTime `db:"due_at" json:"-"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// Expired reports whether the quest's due date has passed
func (q *Quest) Expired(now time.Time) bool {
	return q.DueAt.Valid && now.After(q.DueAt.Time)
}

// Completion records an approved quest for a student. The (quest, student)
// pair is unique; it is the idempotency key for awarding points.
type Completion struct {
	QuestID     int64     `db:"quest_id" json:"quest_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	ApprovedBy  uuid.UUID `db:"approved_by" json:"approved_by"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
