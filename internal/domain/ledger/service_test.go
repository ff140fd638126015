package ledger

import (
	"context"
	"testing"
)

type repoStub struct {
	entries []*Entry
	top     []LeaderboardRow
}

func (r *repoStub) Insert(_ context.Context, entry *Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *repoStub) Balance(_ context.Context, studentID string) (int64, error) {
	var sum int64
	for _, e := range r.entries {
		if e.StudentID == studentID {
			sum += e.PointsDelta
		}
	}
	return sum, nil
}

func (r *repoStub) ListByStudent(_ context.Context, studentID string) ([]*Entry, error) {
	var out []*Entry
	for _, e := range r.entries {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *repoStub) TopEarners(context.Context, int) ([]LeaderboardRow, error) {
	return r.top, nil
}

func TestCreditUpdatesBalance(t *testing.T) {
	repo := &repoStub{}
	svc := NewService(repo, nil)

	if _, err := svc.Credit(context.Background(), "ada@campus.edu", 30, nil, "quest reward"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.Credit(context.Background(), "ada@campus.edu", 70, nil, "quest reward"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	balance, err := svc.Balance(context.Background(), "ada@campus.edu")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if balance != 100 {
		t.Fatalf("expected balance 100, got %d", balance)
	}
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(&repoStub{}, nil)

	if _, err := svc.Credit(context.Background(), "ada@campus.edu", 0, nil, ""); err != ErrNonPositiveCredit {
		t.Fatalf("expected ErrNonPositiveCredit, got %v", err)
	}
	if _, err := svc.Credit(context.Background(), "ada@campus.edu", -5, nil, ""); err != ErrNonPositiveCredit {
		t.Fatalf("expected ErrNonPositiveCredit, got %v", err)
	}
}

func TestBalanceIsIdempotentRead(t *testing.T) {
	repo := &repoStub{}
	svc := NewService(repo, nil)

	if _, err := svc.Credit(context.Background(), "ada@campus.edu", 42, nil, ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	first, _ := svc.Balance(context.Background(), "ada@campus.edu")
	second, _ := svc.Balance(context.Background(), "ada@campus.edu")
	if first != second {
		t.Fatalf("expected identical reads, got %d then %d", first, second)
	}
}

func TestLeaderboardWithoutRedis(t *testing.T) {
	repo := &repoStub{top: []LeaderboardRow{{StudentID: "ada@campus.edu", TotalEarned: 100}}}
	svc := NewService(repo, nil)

	rows, err := svc.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 || rows[0].StudentID != "ada@campus.edu" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
