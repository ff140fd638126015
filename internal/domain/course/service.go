package course

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Join codes skip ambiguous characters (0/O, 1/I/L)
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const joinCodeLength = 6

// Service implements course business logic
type Service struct {
	repo Repository
}

// NewService creates course service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create opens a new course owned by the instructor, with a fresh join code
func (s *Service) Create(ctx context.Context, instructorID uuid.UUID, title string) (*Course, error) {
	code, err := generateJoinCode()
	if err != nil {
		return nil, err
	}
	c := &Course{
		Title:        title,
		JoinCode:     code,
		InstructorID: instructorID,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a course by id
func (s *Service) Get(ctx context.Context, id int64) (*Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// ListForInstructor returns the courses the instructor runs
func (s *Service) ListForInstructor(ctx context.Context, instructorID uuid.UUID) ([]*Course, error) {
	return s.repo.ListByInstructor(ctx, instructorID)
}

// ListForStudent returns the courses the student is enrolled in
func (s *Service) ListForStudent(ctx context.Context, studentID string) ([]*Course, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// Join enrolls a student via a course join code
func (s *Service) Join(ctx context.Context, studentID, code string) (*Course, error) {
	c, err := s.repo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrInvalidJoinCode
	}
	if err := s.repo.Enroll(ctx, c.ID, studentID); err != nil {
		return nil, err
	}
	return c, nil
}

// IsInstructor reports whether the user owns the course. Used by the
// reward, quest and redemption services for authorization.
func (s *Service) IsInstructor(ctx context.Context, courseID int64, userID uuid.UUID) (bool, error) {
	c, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}
	return c.InstructorID == userID, nil
}

// IsEnrolled reports whether the student is enrolled in the course
func (s *Service) IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error) {
	return s.repo.IsEnrolled(ctx, courseID, studentID)
}

// Roster returns the course's enrolled students, instructor only
func (s *Service) Roster(ctx context.Context, instructorID uuid.UUID, courseID int64) ([]Enrollment, error) {
	ok, err := s.IsInstructor(ctx, courseID, instructorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInstructor
	}
	return s.repo.ListStudents(ctx, courseID)
}

func generateJoinCode() (string, error) {
	code := make([]byte, joinCodeLength)
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
