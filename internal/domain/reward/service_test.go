package reward

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
)

type repoStub struct {
	rewards map[int64]*Reward
	nextID  int64
}

func newRepoStub() *repoStub {
	return &repoStub{rewards: make(map[int64]*Reward), nextID: 1}
}

func (r *repoStub) Create(_ context.Context, rw *Reward) error {
	rw.ID = r.nextID
	r.nextID++
	copied := *rw
	r.rewards[rw.ID] = &copied
	return nil
}

func (r *repoStub) GetByID(_ context.Context, id int64) (*Reward, error) {
	rw, ok := r.rewards[id]
	if !ok {
		return nil, nil
	}
	copied := *rw
	return &copied, nil
}

func (r *repoStub) ListByCourse(_ context.Context, courseID int64) ([]*AvailableReward, error) {
	var out []*AvailableReward
	for _, rw := range r.rewards {
		if rw.CourseID == courseID {
			out = append(out, &AvailableReward{Reward: *rw})
		}
	}
	return out, nil
}

func (r *repoStub) Update(_ context.Context, rw *Reward) error {
	copied := *rw
	r.rewards[rw.ID] = &copied
	return nil
}

func (r *repoStub) SetImageURL(_ context.Context, id int64, imageURL string) error {
	r.rewards[id].ImageURL = imageURL
	return nil
}

type ownershipStub struct{ owner uuid.UUID }

func (o *ownershipStub) IsInstructor(_ context.Context, _ int64, userID uuid.UUID) (bool, error) {
	return userID == o.owner, nil
}

func TestCreateRejectsNegativeCost(t *testing.T) {
	owner := uuid.New()
	svc := NewService(newRepoStub(), &ownershipStub{owner: owner}, nil, nil)

	if _, err := svc.Create(context.Background(), owner, 1, "Sticker", -1, nil); err != ErrNegativeCost {
		t.Fatalf("expected ErrNegativeCost, got %v", err)
	}
}

func TestCreateRequiresCourseInstructor(t *testing.T) {
	svc := NewService(newRepoStub(), &ownershipStub{owner: uuid.New()}, nil, nil)

	if _, err := svc.Create(context.Background(), uuid.New(), 1, "Sticker", 10, nil); err != ErrNotInstructor {
		t.Fatalf("expected ErrNotInstructor, got %v", err)
	}
}

func TestUpdateClearsQuantityLimit(t *testing.T) {
	owner := uuid.New()
	repo := newRepoStub()
	svc := NewService(repo, &ownershipStub{owner: owner}, nil, nil)

	limit := int64(5)
	rw, err := svc.Create(context.Background(), owner, 1, "Sticker", 10, &limit)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !rw.Limited() {
		t.Fatal("expected limited reward")
	}

	updated, err := svc.Update(context.Background(), owner, rw.ID, "Sticker", 10, nil, true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Limited() {
		t.Fatal("expected unlimited reward after clearing limit")
	}
}

func TestRemainingStockFloorsAtZero(t *testing.T) {
	a := &AvailableReward{
		Reward:   Reward{QuantityLimit: sql.NullInt64{Int64: 2, Valid: true}},
		Redeemed: 5,
	}
	remaining := a.RemainingStock()
	if remaining == nil || *remaining != 0 {
		t.Fatalf("expected remaining 0, got %v", remaining)
	}

	unlimited := &AvailableReward{Redeemed: 5}
	if unlimited.RemainingStock() != nil {
		t.Fatal("expected nil remaining for unlimited reward")
	}
}
