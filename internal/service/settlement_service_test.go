package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pelada/matchday/internal/models"
	"github.com/pelada/matchday/internal/storage/sqlite"
)

func approvePlayers(t *testing.T, store *sqlite.SQLiteStore, matchID string, users ...string) {
	t.Helper()
	ctx := context.Background()
	for _, u := range users {
		if _, _, err := store.UpsertAdmission(ctx, matchID, u); err != nil {
			t.Fatalf("UpsertAdmission(%s) failed: %v", u, err)
		}
		if _, err := store.ApproveAdmission(ctx, matchID, u, true); err != nil {
			t.Fatalf("ApproveAdmission(%s) failed: %v", u, err)
		}
	}
}

func TestSetExpenseSplitsEqually(t *testing.T) {
	store := newTestStore(t)
	svc := NewSettlementService(store, NewLocks())
	ctx := context.Background()
	match := newTestMatch(t, store, 10)
	approvePlayers(t, store, match.ID, "p1", "p2", "p3", "p4", "p5")

	// $500.00 over 5 players
	if _, err := svc.SetExpense(ctx, match.ID, 50000, "organizer"); err != nil {
		t.Fatalf("SetExpense failed: %v", err)
	}

	payments, err := svc.ListPayments(ctx, match.ID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(payments) != 5 {
		t.Fatalf("payments = %d, want 5", len(payments))
	}

	var sum int64
	for _, p := range payments {
		if p.Status != models.PaymentPending {
			t.Errorf("%s status = %s, want pending", p.UserID, p.Status)
		}
		if p.AmountCents != 10000 {
			t.Errorf("%s amount = %d, want 10000", p.UserID, p.AmountCents)
		}
		sum += p.AmountCents
	}
	if sum != 50000 {
		t.Errorf("sum = %d, want 50000", sum)
	}
}

func TestShareRoundingDriftStaysSmall(t *testing.T) {
	store := newTestStore(t)
	svc := NewSettlementService(store, NewLocks())
	ctx := context.Background()
	match := newTestMatch(t, store, 10)
	approvePlayers(t, store, match.ID, "p1", "p2", "p3")

	// $100.00 over 3 players: share rounds to 33.33
	if _, err := svc.SetExpense(ctx, match.ID, 10000, "organizer"); err != nil {
		t.Fatalf("SetExpense failed: %v", err)
	}

	payments, err := svc.ListPayments(ctx, match.ID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}

	var sum int64
	for _, p := range payments {
		if p.AmountCents != 3333 {
			t.Errorf("%s amount = %d, want 3333", p.UserID, p.AmountCents)
		}
		sum += p.AmountCents
	}

	drift := 10000 - sum
	if drift < -5 || drift > 5 {
		t.Errorf("drift = %d cents, want within 5", drift)
	}
}

func TestRecomputePreservesPaidStatus(t *testing.T) {
	store := newTestStore(t)
	svc := NewSettlementService(store, NewLocks())
	ctx := context.Background()
	match := newTestMatch(t, store, 10)
	approvePlayers(t, store, match.ID, "p1", "p2")

	if _, err := svc.SetExpense(ctx, match.ID, 20000, "organizer"); err != nil {
		t.Fatalf("SetExpense failed: %v", err)
	}

	payments, err := svc.ListPayments(ctx, match.ID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	paid, err := svc.TogglePayment(ctx, payments[0].ID, "organizer")
	if err != nil {
		t.Fatalf("TogglePayment failed: %v", err)
	}
	if paid.Status != models.PaymentPaid || paid.PaidAt == 0 {
		t.Fatalf("toggle result = %+v, want paid with timestamp", paid)
	}

	// Cost change reprices but never un-pays
	if _, err := svc.SetExpense(ctx, match.ID, 30000, "organizer"); err != nil {
		t.Fatalf("SetExpense update failed: %v", err)
	}

	got, err := store.GetPayment(ctx, paid.ID)
	if err != nil {
		t.Fatalf("GetPayment failed: %v", err)
	}
	if got.Status != models.PaymentPaid {
		t.Errorf("status = %s, want paid preserved", got.Status)
	}
	if got.AmountCents != 15000 {
		t.Errorf("amount = %d, want repriced to 15000", got.AmountCents)
	}
}

func TestRecomputePrunesDeclinedPlayers(t *testing.T) {
	store := newTestStore(t)
	locks := NewLocks()
	admissions := NewAdmissionService(store, locks)
	settlement := NewSettlementService(store, locks)
	ctx := context.Background()
	match := newTestMatch(t, store, 10)
	approvePlayers(t, store, match.ID, "p1", "p2", "p3")

	if _, err := settlement.SetExpense(ctx, match.ID, 30000, "organizer"); err != nil {
		t.Fatalf("SetExpense failed: %v", err)
	}

	if _, err := admissions.Decline(ctx, match.ID, "p2"); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if err := settlement.RecomputePayments(ctx, match.ID); err != nil {
		t.Fatalf("RecomputePayments failed: %v", err)
	}

	payments, err := settlement.ListPayments(ctx, match.ID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("payments = %d, want 2 after pruning", len(payments))
	}
	for _, p := range payments {
		if p.UserID == "p2" {
			t.Error("p2's payment should have been pruned")
		}
		if p.AmountCents != 15000 {
			t.Errorf("%s amount = %d, want 15000", p.UserID, p.AmountCents)
		}
	}
}

func TestRecomputeWithoutExpenseFails(t *testing.T) {
	store := newTestStore(t)
	svc := NewSettlementService(store, NewLocks())
	ctx := context.Background()
	match := newTestMatch(t, store, 10)
	approvePlayers(t, store, match.ID, "p1")

	err := svc.RecomputePayments(ctx, match.ID)
	if !errors.Is(err, models.ErrNoExpenseDefined) {
		t.Errorf("error = %v, want ErrNoExpenseDefined", err)
	}

	payments, err := svc.ListPayments(ctx, match.ID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("payments = %d, want no writes without an expense", len(payments))
	}
}

func TestSettlementAuthorization(t *testing.T) {
	store := newTestStore(t)
	svc := NewSettlementService(store, NewLocks())
	ctx := context.Background()
	match := newTestMatch(t, store, 10)
	approvePlayers(t, store, match.ID, "p1")

	if _, err := svc.SetExpense(ctx, match.ID, 10000, "intruder"); !errors.Is(err, models.ErrNotAuthorized) {
		t.Errorf("SetExpense error = %v, want ErrNotAuthorized", err)
	}

	if _, err := svc.SetExpense(ctx, match.ID, 10000, "organizer"); err != nil {
		t.Fatalf("SetExpense failed: %v", err)
	}
	payments, err := svc.ListPayments(ctx, match.ID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}

	if _, err := svc.TogglePayment(ctx, payments[0].ID, "p1"); !errors.Is(err, models.ErrNotAuthorized) {
		t.Errorf("TogglePayment error = %v, want ErrNotAuthorized", err)
	}
}

func TestConcurrentTogglesNeverLoseAFlip(t *testing.T) {
	store := newTestStore(t)
	svc := NewSettlementService(store, NewLocks())
	ctx := context.Background()
	match := newTestMatch(t, store, 10)
	approvePlayers(t, store, match.ID, "p1")

	if _, err := svc.SetExpense(ctx, match.ID, 10000, "organizer"); err != nil {
		t.Fatalf("SetExpense failed: %v", err)
	}
	payments, err := svc.ListPayments(ctx, match.ID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	paymentID := payments[0].ID

	// Two togglers racing: every toggle must observe the other's flip, so
	// an even total always lands back on pending, and none may surface a
	// raw driver error
	const rounds = 50
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if _, err := svc.TogglePayment(ctx, paymentID, "organizer"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("TogglePayment failed: %v", err)
	}

	got, err := store.GetPayment(ctx, paymentID)
	if err != nil {
		t.Fatalf("GetPayment failed: %v", err)
	}
	if got.Status != models.PaymentPending {
		t.Errorf("status = %s after an even number of toggles, want pending", got.Status)
	}
	if got.PaidAt != 0 {
		t.Errorf("PaidAt = %d, want cleared", got.PaidAt)
	}
}

func TestTogglePaymentFlipsBack(t *testing.T) {
	store := newTestStore(t)
	svc := NewSettlementService(store, NewLocks())
	ctx := context.Background()
	match := newTestMatch(t, store, 10)
	approvePlayers(t, store, match.ID, "p1")

	if _, err := svc.SetExpense(ctx, match.ID, 10000, "organizer"); err != nil {
		t.Fatalf("SetExpense failed: %v", err)
	}
	payments, err := svc.ListPayments(ctx, match.ID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}

	paid, err := svc.TogglePayment(ctx, payments[0].ID, "organizer")
	if err != nil {
		t.Fatalf("TogglePayment failed: %v", err)
	}
	if paid.Status != models.PaymentPaid {
		t.Fatalf("status = %s, want paid", paid.Status)
	}

	pending, err := svc.TogglePayment(ctx, payments[0].ID, "organizer")
	if err != nil {
		t.Fatalf("TogglePayment back failed: %v", err)
	}
	if pending.Status != models.PaymentPending {
		t.Errorf("status = %s, want pending", pending.Status)
	}
	if pending.PaidAt != 0 {
		t.Errorf("PaidAt = %d, want cleared", pending.PaidAt)
	}
}
