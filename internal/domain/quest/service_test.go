package quest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusquest/campusquest-api/internal/domain/ledger"
)

type repoStub struct {
	Repository
	quests      map[int64]*Quest
	completions map[string]bool
}

func newRepoStub() *repoStub {
	return &repoStub{
		quests:      make(map[int64]*Quest),
		completions: make(map[string]bool),
	}
}

func (r *repoStub) Create(_ context.Context, q *Quest) error {
	q.ID = int64(len(r.quests) + 1)
	r.quests[q.ID] = q
	return nil
}

func (r *repoStub) GetByID(_ context.Context, id int64) (*Quest, error) {
	return r.quests[id], nil
}

func (r *repoStub) InsertCompletion(_ context.Context, c *Completion) error {
	key := fmt.Sprintf("%d/%s", c.QuestID, c.StudentID)
	if r.completions[key] {
		return ErrAlreadyCompleted
	}
	r.completions[key] = true
	return nil
}

func (r *repoStub) DeleteCompletion(_ context.Context, questID int64, studentID string) error {
	delete(r.completions, fmt.Sprintf("%d/%s", questID, studentID))
	return nil
}

type awarderStub struct {
	credited []int64
	failures int
}

func (a *awarderStub) Credit(_ context.Context, _ string, points int64, _ *int64, _ string) (*ledger.Entry, error) {
	if a.failures > 0 {
		a.failures--
		return nil, errors.New("ledger unavailable")
	}
	a.credited = append(a.credited, points)
	return &ledger.Entry{PointsDelta: points}, nil
}

type ownershipStub struct {
	owner uuid.UUID
}

func (o *ownershipStub) IsInstructor(_ context.Context, _ int64, userID uuid.UUID) (bool, error) {
	return userID == o.owner, nil
}

func TestApprove_AwardsOnce(t *testing.T) {
	owner := uuid.New()
	repo := newRepoStub()
	repo.quests[1] = &Quest{ID: 1, CourseID: 10, Name: "Read chapter 3", Points: 40, Active: true}
	awarder := &awarderStub{}
	svc := NewService(repo, &ownershipStub{owner: owner}, awarder, nil, nil)

	completion, err := svc.Approve(context.Background(), owner, 1, "alice@uni.edu")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if completion.ApprovedBy != owner {
		t.Errorf("ApprovedBy = %v, want %v", completion.ApprovedBy, owner)
	}
	if len(awarder.credited) != 1 || awarder.credited[0] != 40 {
		t.Errorf("credited = %v, want [40]", awarder.credited)
	}

	_, err = svc.Approve(context.Background(), owner, 1, "alice@uni.edu")
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second Approve() error = %v, want ErrAlreadyCompleted", err)
	}
	if len(awarder.credited) != 1 {
		t.Errorf("credited %d times after duplicate approval, want 1", len(awarder.credited))
	}
}

func TestApprove_RetriesAfterCreditFailure(t *testing.T) {
	owner := uuid.New()
	repo := newRepoStub()
	repo.quests[1] = &Quest{ID: 1, CourseID: 10, Name: "Lab report", Points: 25, Active: true}
	awarder := &awarderStub{failures: 1}
	svc := NewService(repo, &ownershipStub{owner: owner}, awarder, nil, nil)

	_, err := svc.Approve(context.Background(), owner, 1, "alice@uni.edu")
	if err == nil {
		t.Fatal("Approve() with failing ledger returned nil error")
	}
	if len(repo.completions) != 0 {
		t.Fatalf("completion row kept after credit failure: %v", repo.completions)
	}
	if len(awarder.credited) != 0 {
		t.Fatalf("credited = %v after failed approval, want none", awarder.credited)
	}

	completion, err := svc.Approve(context.Background(), owner, 1, "alice@uni.edu")
	if err != nil {
		t.Fatalf("retried Approve() error = %v", err)
	}
	if completion == nil {
		t.Fatal("retried Approve() returned nil completion")
	}
	if len(awarder.credited) != 1 || awarder.credited[0] != 25 {
		t.Errorf("credited = %v, want [25]", awarder.credited)
	}
}

func TestApprove_Guards(t *testing.T) {
	owner := uuid.New()
	repo := newRepoStub()
	repo.quests[1] = &Quest{ID: 1, CourseID: 10, Name: "Inactive", Points: 10, Active: false}
	repo.quests[2] = &Quest{
		ID: 2, CourseID: 10, Name: "Expired", Points: 10, Active: true,
		DueAt: sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true},
	}
	repo.quests[3] = &Quest{ID: 3, CourseID: 10, Name: "Open", Points: 10, Active: true}
	awarder := &awarderStub{}
	svc := NewService(repo, &ownershipStub{owner: owner}, awarder, nil, nil)

	ctx := context.Background()
	if _, err := svc.Approve(ctx, owner, 1, "alice@uni.edu"); !errors.Is(err, ErrInactive) {
		t.Errorf("Approve(inactive) error = %v, want ErrInactive", err)
	}
	if _, err := svc.Approve(ctx, owner, 2, "alice@uni.edu"); !errors.Is(err, ErrExpired) {
		t.Errorf("Approve(expired) error = %v, want ErrExpired", err)
	}
	if _, err := svc.Approve(ctx, owner, 99, "alice@uni.edu"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Approve(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Approve(ctx, uuid.New(), 3, "alice@uni.edu"); !errors.Is(err, ErrNotInstructor) {
		t.Errorf("Approve(stranger) error = %v, want ErrNotInstructor", err)
	}
	if len(awarder.credited) != 0 {
		t.Errorf("credited = %v, want none", awarder.credited)
	}
}

func TestCreate_RejectsNonPositivePoints(t *testing.T) {
	owner := uuid.New()
	svc := NewService(newRepoStub(), &ownershipStub{owner: owner}, &awarderStub{}, nil, nil)

	if _, err := svc.Create(context.Background(), owner, 10, "Free points", "", 0, nil); !errors.Is(err, ErrNonPositive) {
		t.Errorf("Create(points=0) error = %v, want ErrNonPositive", err)
	}
	if _, err := svc.Create(context.Background(), owner, 10, "Negative", "", -5, nil); !errors.Is(err, ErrNonPositive) {
		t.Errorf("Create(points=-5) error = %v, want ErrNonPositive", err)
	}
}
