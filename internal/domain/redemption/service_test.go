package redemption

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func testInstructorID() uuid.UUID {
	return uuid.MustParse("00000000-0000-0000-0000-000000000001")
}

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

type capturePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturePublisher) Publish(_ context.Context, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func limit(n int64) *int64 { return &n }

func newTestService(store *MemoryStore) *Service {
	return NewService(store, nil, nil, nil, nil, nil, 3)
}

func TestPurchase_HappyPath(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Homework pass", Cost: 30, Active: true, QuantityLimit: limit(5)})
	store.Credit("alice@uni.edu", 100)

	pub := &capturePublisher{}
	svc := NewService(store, nil, nil, nil, pub, nil, 3)

	result, err := svc.Purchase(context.Background(), "alice@uni.edu", 1)
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}
	if result.Cost != 30 {
		t.Errorf("result.Cost = %d, want 30", result.Cost)
	}
	if result.Balance != 70 {
		t.Errorf("result.Balance = %d, want 70", result.Balance)
	}
	if got := store.Balance("alice@uni.edu"); got != 70 {
		t.Errorf("stored balance = %d, want 70", got)
	}

	redemptions, entries := store.Counts()
	if redemptions != 1 {
		t.Errorf("redemptions = %d, want 1", redemptions)
	}
	if entries != 2 {
		t.Errorf("entries = %d, want 2 (credit + spend)", entries)
	}

	if len(pub.events) != 1 || pub.events[0] != "redemption.created" {
		t.Errorf("published events = %v, want [redemption.created]", pub.events)
	}
}

func TestPurchase_InsufficientPoints(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Homework pass", Cost: 30, Active: true})
	store.Credit("alice@uni.edu", 10)

	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), "alice@uni.edu", 1)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("Purchase() error = %v, want ErrInsufficientPoints", err)
	}

	// A refused purchase leaves no trace
	redemptions, entries := store.Counts()
	if redemptions != 0 || entries != 1 {
		t.Errorf("counts = (%d, %d), want (0, 1)", redemptions, entries)
	}
	if got := store.Balance("alice@uni.edu"); got != 10 {
		t.Errorf("balance = %d, want 10", got)
	}
}

func TestPurchase_ExactBalance(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Sticker", Cost: 25, Active: true})
	store.Credit("alice@uni.edu", 25)

	svc := newTestService(store)

	result, err := svc.Purchase(context.Background(), "alice@uni.edu", 1)
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}
	if result.Balance != 0 {
		t.Errorf("result.Balance = %d, want 0", result.Balance)
	}
}

func TestPurchase_ZeroCostReward(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Participation badge", Cost: 0, Active: true})

	svc := newTestService(store)

	result, err := svc.Purchase(context.Background(), "broke@uni.edu", 1)
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}
	if result.Balance != 0 {
		t.Errorf("result.Balance = %d, want 0", result.Balance)
	}
	redemptions, entries := store.Counts()
	if redemptions != 1 || entries != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", redemptions, entries)
	}
}

func TestPurchase_UnknownReward(t *testing.T) {
	store := NewMemoryStore()
	store.Credit("alice@uni.edu", 100)

	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), "alice@uni.edu", 999)
	if !errors.Is(err, ErrRewardUnavailable) {
		t.Fatalf("Purchase() error = %v, want ErrRewardUnavailable", err)
	}
}

func TestPurchase_InactiveReward(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Retired", Cost: 5, Active: false})
	store.Credit("alice@uni.edu", 100)

	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), "alice@uni.edu", 1)
	if !errors.Is(err, ErrRewardUnavailable) {
		t.Fatalf("Purchase() error = %v, want ErrRewardUnavailable", err)
	}
}

func TestPurchase_SoldOut(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Front seat", Cost: 10, Active: true, QuantityLimit: limit(1)})
	store.Credit("alice@uni.edu", 100)
	store.Credit("bob@uni.edu", 100)

	svc := newTestService(store)

	if _, err := svc.Purchase(context.Background(), "alice@uni.edu", 1); err != nil {
		t.Fatalf("first Purchase() error = %v", err)
	}
	_, err := svc.Purchase(context.Background(), "bob@uni.edu", 1)
	if !errors.Is(err, ErrRewardUnavailable) {
		t.Fatalf("second Purchase() error = %v, want ErrRewardUnavailable", err)
	}
	if got := store.Balance("bob@uni.edu"); got != 100 {
		t.Errorf("bob's balance = %d, want 100", got)
	}
}

func TestPurchase_LastUnitRace(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Front seat", Cost: 10, Active: true, QuantityLimit: limit(1)})
	store.Credit("alice@uni.edu", 100)
	store.Credit("bob@uni.edu", 100)

	svc := newTestService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, student := range []string{"alice@uni.edu", "bob@uni.edu"} {
		wg.Add(1)
		go func(i int, student string) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(context.Background(), student, 1)
		}(i, student)
	}
	wg.Wait()

	var successes, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrRewardUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || unavailable != 1 {
		t.Fatalf("got %d successes and %d unavailable, want exactly 1 of each", successes, unavailable)
	}

	redemptions, _ := store.Counts()
	if redemptions != 1 {
		t.Errorf("redemptions = %d, want 1", redemptions)
	}
}

func TestPurchase_NoOversellUnderContention(t *testing.T) {
	const stock = 5
	const buyers = 2 * stock

	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Pizza slice", Cost: 10, Active: true, QuantityLimit: limit(stock)})

	students := make([]string, buyers)
	for i := range students {
		students[i] = fmt.Sprintf("student%d@uni.edu", i)
		store.Credit(students[i], 100)
	}

	svc := newTestService(store)

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i, student := range students {
		wg.Add(1)
		go func(i int, student string) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(context.Background(), student, 1)
		}(i, student)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrRewardUnavailable):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != stock {
		t.Fatalf("successes = %d, want exactly %d", successes, stock)
	}

	redemptions, entries := store.Counts()
	if redemptions != stock {
		t.Errorf("redemptions = %d, want %d", redemptions, stock)
	}
	if entries != buyers+stock {
		t.Errorf("entries = %d, want %d credits + %d spends", entries, buyers, stock)
	}
}

func TestPurchase_NoNegativeBalanceUnderContention(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Snack", Cost: 30, Active: true})
	store.Credit("alice@uni.edu", 70)

	svc := newTestService(store)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(context.Background(), "alice@uni.edu", 1)
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInsufficientPoints):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// 70 points buys exactly two 30-point rewards
	if successes != 2 {
		t.Fatalf("successes = %d, want 2", successes)
	}
	if got := store.Balance("alice@uni.edu"); got != 10 {
		t.Errorf("balance = %d, want 10", got)
	}
}

func TestFulfill(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Homework pass", Cost: 30, Active: true})
	store.Credit("alice@uni.edu", 100)

	svc := newTestService(store)

	result, err := svc.Purchase(context.Background(), "alice@uni.edu", 1)
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}

	rd, err := svc.Fulfill(context.Background(), testInstructorID(), result.RedemptionID)
	if err != nil {
		t.Fatalf("Fulfill() error = %v", err)
	}
	if rd.Status != StatusFulfilled {
		t.Errorf("status = %q, want %q", rd.Status, StatusFulfilled)
	}
	// Fulfilling does not move points
	if got := store.Balance("alice@uni.edu"); got != 70 {
		t.Errorf("balance = %d, want 70", got)
	}

	if _, err := svc.Fulfill(context.Background(), testInstructorID(), result.RedemptionID); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("second Fulfill() error = %v, want ErrAlreadyResolved", err)
	}
}

func TestReject_RefundsAndReleasesStock(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Front seat", Cost: 30, Active: true, QuantityLimit: limit(1)})
	store.Credit("alice@uni.edu", 100)
	store.Credit("bob@uni.edu", 100)

	svc := newTestService(store)

	result, err := svc.Purchase(context.Background(), "alice@uni.edu", 1)
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}

	rd, err := svc.Reject(context.Background(), testInstructorID(), result.RedemptionID)
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rd.Status != StatusRejected {
		t.Errorf("status = %q, want %q", rd.Status, StatusRejected)
	}

	// The debit is reversed by a fresh refund entry, never by editing
	// history: credit + spend + refund for alice, credit for bob.
	if got := store.Balance("alice@uni.edu"); got != 100 {
		t.Errorf("alice's balance = %d, want 100", got)
	}
	_, entries := store.Counts()
	if entries != 4 {
		t.Errorf("entries = %d, want 4", entries)
	}

	// The rejected unit goes back on the shelf
	if _, err := svc.Purchase(context.Background(), "bob@uni.edu", 1); err != nil {
		t.Errorf("Purchase() after reject error = %v, want success", err)
	}
}

func TestResolve_UnknownRedemption(t *testing.T) {
	store := NewMemoryStore()
	svc := newTestService(store)

	_, err := svc.Fulfill(context.Background(), testInstructorID(), newUUID(t))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Fulfill() error = %v, want ErrNotFound", err)
	}
}

func TestListByCourse_Grouping(t *testing.T) {
	store := NewMemoryStore()
	store.AddReward(CatalogReward{ID: 1, CourseID: 10, Name: "Homework pass", Cost: 10, Active: true})
	store.AddReward(CatalogReward{ID: 2, CourseID: 10, Name: "Sticker", Cost: 5, Active: true})
	store.AddReward(CatalogReward{ID: 3, CourseID: 99, Name: "Other course", Cost: 5, Active: true})
	store.Credit("alice@uni.edu", 100)

	svc := newTestService(store)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := svc.Purchase(ctx, "alice@uni.edu", 1); err != nil {
			t.Fatalf("Purchase(1) error = %v", err)
		}
	}
	if _, err := svc.Purchase(ctx, "alice@uni.edu", 2); err != nil {
		t.Fatalf("Purchase(2) error = %v", err)
	}
	if _, err := svc.Purchase(ctx, "alice@uni.edu", 3); err != nil {
		t.Fatalf("Purchase(3) error = %v", err)
	}

	rows, err := svc.ListByCourse(ctx, "alice@uni.edu", 10)
	if err != nil {
		t.Fatalf("ListByCourse() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	byReward := make(map[int64]GroupedRow)
	for _, row := range rows {
		byReward[row.RewardID] = row
	}
	if row := byReward[1]; row.Quantity != 2 || row.Status != StatusPending {
		t.Errorf("reward 1 row = %+v, want quantity 2 pending", row)
	}
	if row := byReward[2]; row.Quantity != 1 {
		t.Errorf("reward 2 row = %+v, want quantity 1", row)
	}
}
