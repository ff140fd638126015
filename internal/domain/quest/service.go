package quest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/campusquest/campusquest-api/internal/domain/ledger"
	"github.com/campusquest/campusquest-api/internal/pkg/events"
)

// CourseOwnership checks whether a user is the instructor of a course
type CourseOwnership interface {
	IsInstructor(ctx context.Context, courseID int64, userID uuid.UUID) (bool, error)
}

// Awarder credits earned points to a student's ledger. Satisfied by
// ledger.Service.
type Awarder interface {
	Credit(ctx context.Context, studentID string, points int64, questID *int64, description string) (*ledger.Entry, error)
}

// Notifier pushes real-time events to a student's connected game client
type Notifier interface {
	NotifyStudent(studentID string, event string, payload any)
}

// CompletedEvent is published when an instructor approves a completion
type CompletedEvent struct {
	QuestID   int64  `json:"quest_id"`
	CourseID  int64  `json:"course_id"`
	StudentID string `json:"student_id"`
	Points    int64  `json:"points"`
}

// Service implements quest business logic
type Service struct {
	repo      Repository
	courses   CourseOwnership
	awarder   Awarder
	publisher events.Publisher
	notifier  Notifier
}

// NewService creates quest service. publisher and notifier may be nil.
func NewService(repo Repository, courses CourseOwnership, awarder Awarder, publisher events.Publisher, notifier Notifier) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		repo:      repo,
		courses:   courses,
		awarder:   awarder,
		publisher: publisher,
		notifier:  notifier,
	}
}

// Create adds a quest to a course, instructor only
func (s *Service) Create(ctx context.Context, instructorID uuid.UUID, courseID int64, name, description string, points int64, dueAt *time.Time) (*Quest, error) {
	if points <= 0 {
		return nil, ErrNonPositive
	}
	if err := s.requireInstructor(ctx, courseID, instructorID); err != nil {
		return nil, err
	}

	q := &Quest{
		CourseID:    courseID,
		Name:        name,
		Description: description,
		Points:      points,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if dueAt != nil {
		q.DueAt = sql.NullTime{Time: *dueAt, Valid: true}
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ListByCourse returns a course's quests
func (s *Service) ListByCourse(ctx context.Context, courseID int64) ([]*Quest, error) {
	return s.repo.ListByCourse(ctx, courseID)
}

// Update edits a quest, instructor only. Changing a quest's points never
// touches already-awarded entries.
func (s *Service) Update(ctx context.Context, instructorID uuid.UUID, id int64, name, description string, points int64, active bool, dueAt *time.Time) (*Quest, error) {
	if points <= 0 {
		return nil, ErrNonPositive
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNotFound
	}
	if err := s.requireInstructor(ctx, q.CourseID, instructorID); err != nil {
		return nil, err
	}

	q.Name = name
	q.Description = description
	q.Points = points
	q.Active = active
	q.DueAt = sql.NullTime{}
	if dueAt != nil {
		q.DueAt = sql.NullTime{Time: *dueAt, Valid: true}
	}
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Approve records a student's completion and credits the quest's points.
// The (quest, student) pair can be approved at most once; a second
// approval returns ErrAlreadyCompleted and awards nothing.
func (s *Service) Approve(ctx context.Context, instructorID uuid.UUID, questID int64, studentID string) (*Completion, error) {
	q, err := s.repo.GetByID(ctx, questID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNotFound
	}
	if err := s.requireInstructor(ctx, q.CourseID, instructorID); err != nil {
		return nil, err
	}
	if !q.Active {
		return nil, ErrInactive
	}
	if q.Expired(time.Now()) {
		return nil, ErrExpired
	}

	completion := &Completion{
		QuestID:     questID,
		StudentID:   studentID,
		ApprovedBy:  instructorID,
		CompletedAt: time.Now(),
	}
	// The unique completion row is the award guard: if this insert
	// succeeds the credit has not happened yet.
	if err := s.repo.InsertCompletion(ctx, completion); err != nil {
		return nil, err
	}

	if _, err := s.awarder.Credit(ctx, studentID, q.Points, &q.ID, fmt.Sprintf("Completed %s", q.Name)); err != nil {
		// Undo the guard row so a retried approval can still award; without
		// this the student would be marked complete but never credited.
		if delErr := s.repo.DeleteCompletion(ctx, questID, studentID); delErr != nil {
			log.Error().Err(delErr).Int64("quest_id", questID).Str("student_id", studentID).
				Msg("Failed to roll back completion after credit error")
		}
		return nil, err
	}

	event := &CompletedEvent{QuestID: q.ID, CourseID: q.CourseID, StudentID: studentID, Points: q.Points}
	if err := s.publisher.Publish(ctx, "quest.completed", event); err != nil {
		log.Warn().Err(err).Int64("quest_id", q.ID).Msg("Failed to publish event")
	}
	if s.notifier != nil {
		s.notifier.NotifyStudent(studentID, "quest.completed", event)
	}

	return completion, nil
}

// Completions returns a quest's approved completions, instructor only
func (s *Service) Completions(ctx context.Context, instructorID uuid.UUID, questID int64) ([]Completion, error) {
	q, err := s.repo.GetByID(ctx, questID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNotFound
	}
	if err := s.requireInstructor(ctx, q.CourseID, instructorID); err != nil {
		return nil, err
	}
	return s.repo.ListCompletions(ctx, questID)
}

func (s *Service) requireInstructor(ctx context.Context, courseID int64, userID uuid.UUID) error {
	ok, err := s.courses.IsInstructor(ctx, courseID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInstructor
	}
	return nil
}
