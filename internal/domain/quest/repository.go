package quest

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines quest data access
type Repository interface {
	Create(ctx context.Context, q *Quest) error
	GetByID(ctx context.Context, id int64) (*Quest, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*Quest, error)
	Update(ctx context.Context, q *Quest) error
	InsertCompletion(ctx context.Context, c *Completion) error
	DeleteCompletion(ctx context.Context, questID int64, studentID string) error
	ListCompletions(ctx context.Context, questID int64) ([]Completion, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates quest repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, q *Quest) error {
	query := `
		INSERT INTO quests (course_id, name, description, points, active, due_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.db.GetContext(ctx, &q.ID, query,
		q.CourseID, q.Name, q.Description, q.Points, q.Active, q.DueAt, q.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Quest, error) {
	var q Quest
	err := r.db.GetContext(ctx, &q, `
		SELECT id, course_id, name, description, points, active, due_at, created_at
		FROM quests
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) ListByCourse(ctx context.Context, courseID int64) ([]*Quest, error) {
	var quests []*Quest
	err := r.db.SelectContext(ctx, &quests, `
		SELECT id, course_id, name, description, points, active, due_at, created_at
		FROM quests
		WHERE course_id = $1
		ORDER BY created_at DESC
	`, courseID)
	if err != nil {
		return nil, err
	}
	return quests, nil
}

func (r *repository) Update(ctx context.Context, q *Quest) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE quests
		SET name = $2, description = $3, points = $4, active = $5, due_at = $6
		WHERE id = $1
	`, q.ID, q.Name, q.Description, q.Points, q.Active, q.DueAt)
	return err
}

func (r *repository) InsertCompletion(ctx context.Context, c *Completion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quest_completions (quest_id, student_id, approved_by, completed_at)
		VALUES ($1, $2, $3, $4)
	`, c.QuestID, c.StudentID, c.ApprovedBy, c.CompletedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrAlreadyCompleted
	}
	return err
}

func (r *repository) DeleteCompletion(ctx context.Context, questID int64, studentID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM quest_completions
		WHERE quest_id = $1 AND student_id = $2
	`, questID, studentID)
	return err
}

func (r *repository) ListCompletions(ctx context.Context, questID int64) ([]Completion, error) {
	rows := []Completion{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT quest_id, student_id, approved_by, completed_at
		FROM quest_completions
		WHERE quest_id = $1
		ORDER BY completed_at
	`, questID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
