package redemption

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusquest/campusquest-api/internal/domain/ledger"
	"github.com/campusquest/campusquest-api/internal/pkg/lock"
)

// CatalogReward is a reward definition seeded into the in-memory store
type CatalogReward struct {
	ID            int64
	CourseID      int64
	Name          string
	Cost          int64
	Active        bool
	QuantityLimit *int64
}

// MemoryStore implements Store in process memory. Per-reward and
// per-student exclusivity comes from a keyed mutex manager; writes are
// staged on the transaction and applied on commit, so an abort leaves no
// partial state. Used by tests and local single-node mode.
type MemoryStore struct {
	mu    sync.RWMutex
	locks *lock.Manager

	rewards     map[int64]*CatalogReward
	redemptions map[uuid.UUID]*Redemption
	entries     []*ledger.Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:       lock.NewManager(),
		rewards:     make(map[int64]*CatalogReward),
		redemptions: make(map[uuid.UUID]*Redemption),
	}
}

// AddReward seeds a reward definition
func (s *MemoryStore) AddReward(rw CatalogReward) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards[rw.ID] = &rw
}

// Credit appends a committed earn entry, outside any transaction
func (s *MemoryStore) Credit(studentID string, points int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &ledger.Entry{
		ID:          uuid.New(),
		StudentID:   studentID,
		PointsDelta: points,
		CreatedAt:   time.Now(),
	})
}

// Balance sums a student's committed entries
func (s *MemoryStore) Balance(studentID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked(studentID)
}

func (s *MemoryStore) balanceLocked(studentID string) int64 {
	var sum int64
	for _, e := range s.entries {
		if e.StudentID == studentID {
			sum += e.PointsDelta
		}
	}
	return sum
}

// Counts returns committed redemption and entry counts, for tests
func (s *MemoryStore) Counts() (redemptions, entries int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.redemptions), len(s.entries)
}

func (s *MemoryStore) countRedeemedLocked(rewardID int64) int64 {
	var n int64
	for _, rd := range s.redemptions {
		if rd.RewardID == rewardID && rd.Status != StatusRejected {
			n++
		}
	}
	return n
}

func (s *MemoryStore) Begin(_ context.Context) (Tx, error) {
	return &memTx{store: s}, nil
}

func (s *MemoryStore) GroupedByCourse(_ context.Context, studentID string, courseID int64) ([]GroupedRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		rewardID int64
		status   Status
	}
	counts := make(map[key]int64)
	for _, rd := range s.redemptions {
		if rd.StudentID != studentID {
			continue
		}
		rw, ok := s.rewards[rd.RewardID]
		if !ok || rw.CourseID != courseID {
			continue
		}
		counts[key{rd.RewardID, rd.Status}]++
	}

	rows := make([]GroupedRow, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, GroupedRow{
			RewardID:   k.rewardID,
			RewardName: s.rewards[k.rewardID].Name,
			Status:     k.status,
			Quantity:   n,
		})
	}
	return rows, nil
}

type statusChange struct {
	id     uuid.UUID
	status Status
}

type memTx struct {
	store *MemoryStore
	held  []*sync.Mutex
	done  bool

	stagedRedemptions []*Redemption
	stagedEntries     []*ledger.Entry
	stagedStatus      []statusChange
}

func (t *memTx) acquire(key string) {
	mu := t.store.locks.Get(key)
	mu.Lock()
	t.held = append(t.held, mu)
}

func (t *memTx) ReserveReward(_ context.Context, rewardID int64) (*ReservedReward, error) {
	t.acquire(fmt.Sprintf("reward:%d", rewardID))

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	rw, ok := t.store.rewards[rewardID]
	if !ok {
		return nil, nil
	}
	reserved := &ReservedReward{
		ID:       rw.ID,
		CourseID: rw.CourseID,
		Name:     rw.Name,
		Cost:     rw.Cost,
		Active:   rw.Active,
		Redeemed: t.store.countRedeemedLocked(rewardID),
	}
	if rw.QuantityLimit != nil {
		limit := *rw.QuantityLimit
		reserved.QuantityLimit = &limit
	}
	return reserved, nil
}

func (t *memTx) StudentBalance(_ context.Context, studentID string) (int64, error) {
	t.acquire("student:" + studentID)

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.balanceLocked(studentID), nil
}

func (t *memTx) InsertRedemption(_ context.Context, r *Redemption) error {
	copied := *r
	t.stagedRedemptions = append(t.stagedRedemptions, &copied)
	return nil
}

func (t *memTx) InsertLedgerEntry(_ context.Context, e *ledger.Entry) error {
	copied := *e
	t.stagedEntries = append(t.stagedEntries, &copied)
	return nil
}

func (t *memTx) RedemptionForUpdate(ctx context.Context, id uuid.UUID) (*Redemption, *ReservedReward, error) {
	t.store.mu.RLock()
	rd, ok := t.store.redemptions[id]
	var rewardID int64
	if ok {
		rewardID = rd.RewardID
	}
	t.store.mu.RUnlock()

	if !ok {
		return nil, nil, nil
	}

	reserved, err := t.ReserveReward(ctx, rewardID)
	if err != nil {
		return nil, nil, err
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	copied := *t.store.redemptions[id]
	return &copied, reserved, nil
}

func (t *memTx) UpdateRedemptionStatus(_ context.Context, id uuid.UUID, status Status) error {
	t.stagedStatus = append(t.stagedStatus, statusChange{id: id, status: status})
	return nil
}

func (t *memTx) SpendEntry(_ context.Context, redemptionID uuid.UUID) (*ledger.Entry, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	for _, e := range t.store.entries {
		if e.RedemptionID.Valid && e.RedemptionID.UUID == redemptionID && e.PointsDelta <= 0 {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true

	t.store.mu.Lock()
	for _, r := range t.stagedRedemptions {
		t.store.redemptions[r.ID] = r
	}
	t.store.entries = append(t.store.entries, t.stagedEntries...)
	for _, c := range t.stagedStatus {
		if rd, ok := t.store.redemptions[c.id]; ok {
			rd.Status = c.status
			rd.UpdatedAt = time.Now()
		}
	}
	t.store.mu.Unlock()

	t.release()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true

	t.stagedRedemptions = nil
	t.stagedEntries = nil
	t.stagedStatus = nil

	t.release()
	return nil
}

func (t *memTx) release() {
	// Unlock in reverse acquisition order
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}
