package ledger

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository defines ledger data access
type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	Balance(ctx context.Context, studentID string) (int64, error)
	ListByStudent(ctx context.Context, studentID string) ([]*Entry, error)
	TopEarners(ctx context.Context, limit int) ([]LeaderboardRow, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates ledger repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO ledger_entries (id, student_id, points_delta, redemption_id, quest_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.StudentID,
		entry.PointsDelta,
		entry.RedemptionID,
		entry.QuestID,
		entry.Description,
		entry.CreatedAt,
	)
	return err
}

func (r *repository) Balance(ctx context.Context, studentID string) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `
		SELECT COALESCE(SUM(points_delta), 0)
		FROM ledger_entries
		WHERE student_id = $1
	`, studentID)
	return balance, err
}

func (r *repository) ListByStudent(ctx context.Context, studentID string) ([]*Entry, error) {
	query := `
		SELECT id, student_id, points_delta, redemption_id, quest_id, description, created_at
		FROM ledger_entries
		WHERE student_id = $1
		ORDER BY created_at DESC
	`
	var entries []*Entry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) TopEarners(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	query := `
		SELECT student_id, SUM(points_delta) FILTER (WHERE points_delta > 0) AS total_earned
		FROM ledger_entries
		GROUP BY student_id
		HAVING SUM(points_delta) FILTER (WHERE points_delta > 0) > 0
		ORDER BY total_earned DESC
		LIMIT $1
	`
	rows := []LeaderboardRow{}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
