package reward

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/campusquest/campusquest-api/internal/pkg/imaging"
	"github.com/campusquest/campusquest-api/internal/pkg/storage"
)

// CourseOwnership checks whether a user is the instructor of a course
type CourseOwnership interface {
	IsInstructor(ctx context.Context, courseID int64, userID uuid.UUID) (bool, error)
}

// Service manages the reward catalog. It never touches stock or the ledger;
// those are mutated only inside the redemption transaction.
type Service struct {
	repo      Repository
	courses   CourseOwnership
	store     storage.Storage
	processor *imaging.Processor
}

// NewService creates reward service
func NewService(repo Repository, courses CourseOwnership, store storage.Storage, processor *imaging.Processor) *Service {
	return &Service{repo: repo, courses: courses, store: store, processor: processor}
}

// Create adds a reward to a course's catalog
func (s *Service) Create(ctx context.Context, instructorID uuid.UUID, courseID int64, name string, cost int64, quantityLimit *int64) (*Reward, error) {
	if cost < 0 {
		return nil, ErrNegativeCost
	}
	if err := s.requireInstructor(ctx, courseID, instructorID); err != nil {
		return nil, err
	}

	rw := &Reward{
		CourseID:  courseID,
		Name:      name,
		Cost:      cost,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if quantityLimit != nil {
		rw.QuantityLimit = sql.NullInt64{Int64: *quantityLimit, Valid: true}
	}

	if err := s.repo.Create(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

// Update modifies a reward. A nil quantityLimit makes the reward unlimited.
func (s *Service) Update(ctx context.Context, instructorID uuid.UUID, id int64, name string, cost int64, quantityLimit *int64, active bool) (*Reward, error) {
	if cost < 0 {
		return nil, ErrNegativeCost
	}

	rw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rw == nil {
		return nil, ErrNotFound
	}
	if err := s.requireInstructor(ctx, rw.CourseID, instructorID); err != nil {
		return nil, err
	}

	rw.Name = name
	rw.Cost = cost
	rw.Active = active
	rw.QuantityLimit = sql.NullInt64{}
	if quantityLimit != nil {
		rw.QuantityLimit = sql.NullInt64{Int64: *quantityLimit, Valid: true}
	}

	if err := s.repo.Update(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

// ListAvailable returns a course's rewards with live remaining stock
func (s *Service) ListAvailable(ctx context.Context, courseID int64) ([]*AvailableReward, error) {
	return s.repo.ListByCourse(ctx, courseID)
}

// UploadIcon resizes and stores a reward icon, then records its public URL
func (s *Service) UploadIcon(ctx context.Context, instructorID uuid.UUID, id int64, filename string, file io.Reader) (string, error) {
	if !imaging.ValidateType(filename) {
		return "", ErrInvalidImage
	}

	rw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if rw == nil {
		return "", ErrNotFound
	}
	if err := s.requireInstructor(ctx, rw.CourseID, instructorID); err != nil {
		return "", err
	}

	icon, err := s.processor.Process(file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	key := fmt.Sprintf("rewards/%d/icon-%s", id, uuid.New().String())
	if err := s.store.Save(ctx, key, bytes.NewReader(icon.Data), icon.ContentType); err != nil {
		return "", err
	}

	url := s.store.GetURL(key)
	if err := s.repo.SetImageURL(ctx, id, url); err != nil {
		return "", err
	}
	return url, nil
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
