package redemption

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/campusquest/campusquest-api/internal/domain/ledger"
	"github.com/campusquest/campusquest-api/internal/domain/reward"
	"github.com/campusquest/campusquest-api/internal/pkg/events"
)

// BalanceReader provides a cheap unlocked balance read for the optimistic
// pre-check. Satisfied by ledger.Service.
type BalanceReader interface {
	Balance(ctx context.Context, studentID string) (int64, error)
}

// RewardCatalog provides an unlocked reward read for the optimistic
// pre-check. Satisfied by reward.Repository.
type RewardCatalog interface {
	GetByID(ctx context.Context, id int64) (*reward.Reward, error)
}

// CourseOwnership checks whether a user is the instructor of a course
type CourseOwnership interface {
	IsInstructor(ctx context.Context, courseID int64, userID uuid.UUID) (bool, error)
}

// Notifier pushes real-time events to a student's connected game client
type Notifier interface {
	NotifyStudent(studentID string, event string, payload any)
}

// PurchaseEvent is published when a redemption is created
type PurchaseEvent struct {
	RedemptionID uuid.UUID `json:"redemption_id"`
	StudentID    string    `json:"student_id"`
	RewardID     int64     `json:"reward_id"`
	Cost         int64     `json:"cost"`
	Balance      int64     `json:"balance"`
}

// StatusEvent is published when an instructor resolves a redemption
type StatusEvent struct {
	RedemptionID uuid.UUID `json:"redemption_id"`
	StudentID    string    `json:"student_id"`
	RewardID     int64     `json:"reward_id"`
	Status       Status    `json:"status"`
	Refunded     int64     `json:"refunded,omitempty"`
}

// Service is the redemption transaction manager: the only writer of spend
// ledger entries and redemption rows, and the read side of redemption
// history. All stock and balance decisions are made under the store's
// transactional locks.
type Service struct {
	store      Store
	balances   BalanceReader
	catalog    RewardCatalog
	courses    CourseOwnership
	publisher  events.Publisher
	notifier   Notifier
	maxRetries int
}

// NewService creates redemption service. balances, catalog, publisher and
// notifier may be nil; the pre-check and event fan-out degrade gracefully.
func NewService(store Store, balances BalanceReader, catalog RewardCatalog, courses CourseOwnership, publisher events.Publisher, notifier Notifier, maxRetries int) *Service {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		store:      store,
		balances:   balances,
		catalog:    catalog,
		courses:    courses,
		publisher:  publisher,
		notifier:   notifier,
		maxRetries: maxRetries,
	}
}

// Purchase debits the student's balance and creates a pending redemption
// plus its balancing ledger entry as one atomic unit.
//
// ErrRewardUnavailable and ErrInsufficientPoints are expected outcomes;
// they leave no trace in the store and are never retried here. Transient
// storage conflicts are retried with backoff before surfacing as
// ErrTransactionFailed.
func (s *Service) Purchase(ctx context.Context, studentID string, rewardID int64) (*PurchaseResult, error) {
	// Optimistic pre-check: cheap unlocked reads to short-circuit requests
	// that cannot possibly succeed. Advisory only; the final decision is
	// re-made under locks inside the transaction.
	if s.catalog != nil && s.balances != nil {
		if rw, err := s.catalog.GetByID(ctx, rewardID); err == nil {
			if rw == nil || !rw.Active {
				return nil, ErrRewardUnavailable
			}
			if balance, err := s.balances.Balance(ctx, studentID); err == nil && balance < rw.Cost {
				return nil, ErrInsufficientPoints
			}
		}
	}

	var result *PurchaseResult
	backoff := retry.WithMaxRetries(uint64(s.maxRetries), retry.NewExponential(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := s.attemptPurchase(ctx, studentID, rewardID)
		if err != nil {
			if IsSerializationFailure(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if IsSerializationFailure(err) {
			log.Warn().Err(err).Str("student_id", studentID).Int64("reward_id", rewardID).
				Msg("Purchase retries exhausted")
			return nil, ErrTransactionFailed
		}
		return nil, err
	}

	s.publish(ctx, "redemption.created", &PurchaseEvent{
		RedemptionID: result.RedemptionID,
		StudentID:    studentID,
		RewardID:     result.RewardID,
		Cost:         result.Cost,
		Balance:      result.Balance,
	})
	if s.notifier != nil {
		s.notifier.NotifyStudent(studentID, "redemption.created", result)
	}
	return result, nil
}

func (s *Service) attemptPurchase(ctx context.Context, studentID string, rewardID int64) (*PurchaseResult, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			// Releases the reservation on every failure path
			_ = tx.Rollback()
		}
	}()

	// Reward lock first, student balance second. Fixed order, at most one
	// of each; no deadlock cycle can form.
	rw, err := tx.ReserveReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if rw == nil || !rw.Available() {
		return nil, ErrRewardUnavailable
	}
	if rw.Cost < 0 {
		log.Error().Int64("reward_id", rewardID).Int64("cost", rw.Cost).
			Msg("Reward has negative cost, refusing to commit")
		return nil, ErrInternal
	}

	balance, err := tx.StudentBalance(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if balance < rw.Cost {
		return nil, ErrInsufficientPoints
	}

	now := time.Now()
	rd := &Redemption{
		ID:         uuid.New(),
		StudentID:  studentID,
		RewardID:   rewardID,
		Status:     StatusPending,
		RedeemedAt: now,
		UpdatedAt:  now,
	}
	entry := &ledger.Entry{
		ID:           uuid.New(),
		StudentID:    studentID,
		PointsDelta:  -rw.Cost,
		RedemptionID: uuid.NullUUID{UUID: rd.ID, Valid: true},
		Description:  fmt.Sprintf("Redeemed %s", rw.Name),
		CreatedAt:    now,
	}

	if err := tx.InsertRedemption(ctx, rd); err != nil {
		return nil, err
	}
	if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
		return nil, err
	}

	// A cancelled caller aborts cleanly here; past Commit the operation
	// stands regardless of the caller.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &PurchaseResult{
		RedemptionID:  rd.ID,
		LedgerEntryID: entry.ID,
		RewardID:      rewardID,
		Cost:          rw.Cost,
		Balance:       balance - rw.Cost,
	}, nil
}

// ListByCourse returns a student's redemptions for a course, grouped by
// (reward, status). Pure read.
func (s *Service) ListByCourse(ctx context.Context, studentID string, courseID int64) ([]GroupedRow, error) {
	return s.store.GroupedByCourse(ctx, studentID, courseID)
}

// Fulfill marks a pending redemption as handed out
func (s *Service) Fulfill(ctx context.Context, instructorID, id uuid.UUID) (*Redemption, error) {
	return s.resolve(ctx, instructorID, id, StatusFulfilled)
}

// Reject refuses a pending redemption. The stock unit is released and the
// original debit is reversed by a new offsetting refund entry; the
// original entry is never touched.
func (s *Service) Reject(ctx context.Context, instructorID, id uuid.UUID) (*Redemption, error) {
	return s.resolve(ctx, instructorID, id, StatusRejected)
}

func (s *Service) resolve(ctx context.Context, instructorID, id uuid.UUID, target Status) (*Redemption, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rd, rw, err := tx.RedemptionForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if rd == nil {
		return nil, ErrNotFound
	}

	if s.courses != nil {
		ok, err := s.courses.IsInstructor(ctx, rw.CourseID, instructorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotInstructor
		}
	}

	if rd.Status.Terminal() {
		return nil, ErrAlreadyResolved
	}

	if err := tx.UpdateRedemptionStatus(ctx, id, target); err != nil {
		return nil, err
	}

	var refunded int64
	if target == StatusRejected {
		spend, err := tx.SpendEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		if spend == nil {
			log.Error().Str("redemption_id", id.String()).
				Msg("Redemption has no balancing debit entry, refusing to commit")
			return nil, ErrInternal
		}
		if spend.PointsDelta < 0 {
			refunded = -spend.PointsDelta
			refund := &ledger.Entry{
				ID:           uuid.New(),
				StudentID:    rd.StudentID,
				PointsDelta:  refunded,
				RedemptionID: uuid.NullUUID{UUID: id, Valid: true},
				Description:  fmt.Sprintf("Refund for rejected redemption of %s", rw.Name),
				CreatedAt:    time.Now(),
			}
			if err := tx.InsertLedgerEntry(ctx, refund); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	rd.Status = target
	s.publish(ctx, "redemption.updated", &StatusEvent{
		RedemptionID: id,
		StudentID:    rd.StudentID,
		RewardID:     rd.RewardID,
		Status:       target,
		Refunded:     refunded,
	})
	if s.notifier != nil {
		s.notifier.NotifyStudent(rd.StudentID, "redemption.updated", rd)
	}
	return rd, nil
}

func (s *Service) publish(ctx context.Context, eventType string, event any) {
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
