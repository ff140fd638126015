package course

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/google/uuid"
)

// Repository defines course data access
type Repository interface {
	Create(ctx context.Context, c *Course) error
	GetByID(ctx context.Context, id int64) (*Course, error)
	GetByJoinCode(ctx context.Context, code string) (*Course, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*Course, error)
	ListByStudent(ctx context.Context, studentID string) ([]*Course, error)
	Enroll(ctx context.Context, courseID int64, studentID string) error
	IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error)
	ListStudents(ctx context.Context, courseID int64) ([]Enrollment, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates course repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Course) error {
	query := `
		INSERT INTO courses (title, join_code, instructor_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.db.GetContext(ctx, &c.ID, query, c.Title, c.JoinCode, c.InstructorID, c.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Course, error) {
	var c Course
	err := r.db.GetContext(ctx, &c, `
		SELECT id, title, join_code, instructor_id, created_at
		FROM courses
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByJoinCode(ctx context.Context, code string) (*Course, error) {
	var c Course
	err := r.db.GetContext(ctx, &c, `
		SELECT id, title, join_code, instructor_id, created_at
		FROM courses
		WHERE join_code = $1
	`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*Course, error) {
	var courses []*Course
	err := r.db.SelectContext(ctx, &courses, `
		SELECT id, title, join_code, instructor_id, created_at
		FROM courses
		WHERE instructor_id = $1
		ORDER BY created_at DESC
	`, instructorID)
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repository) ListByStudent(ctx context.Context, studentID string) ([]*Course, error) {
	var courses []*Course
	err := r.db.SelectContext(ctx, &courses, `
		SELECT c.id, c.title, c.join_code, c.instructor_id, c.created_at
		FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.student_id = $1
		ORDER BY e.enrolled_at DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repository) Enroll(ctx context.Context, courseID int64, studentID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (course_id, student_id)
		VALUES ($1, $2)
	`, courseID, studentID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrAlreadyEnrolled
	}
	return err
}

func (r *repository) IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error) {
	var enrolled bool
	err := r.db.GetContext(ctx, &enrolled, `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE course_id = $1 AND student_id = $2
		)
	`, courseID, studentID)
	return enrolled, err
}

func (r *repository) ListStudents(ctx context.Context, courseID int64) ([]Enrollment, error) {
	rows := []Enrollment{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT course_id, student_id, enrolled_at
		FROM enrollments
		WHERE course_id = $1
		ORDER BY enrolled_at
	`, courseID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
