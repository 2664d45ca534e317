package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pelada/matchday/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "matchday-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createTestMatch(t *testing.T, store *SQLiteStore, capacity int) *models.Match {
	t.Helper()

	match := &models.Match{
		OrganizerID: "organizer",
		ScheduledAt: 1700000000,
		Location:    "Pitch 3",
		Capacity:    capacity,
	}
	if err := store.CreateMatch(context.Background(), match); err != nil {
		t.Fatalf("CreateMatch failed: %v", err)
	}
	return match
}

func TestMatchStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateMatch generates ID and defaults", func(t *testing.T) {
		match := createTestMatch(t, store, 10)

		if match.ID == "" {
			t.Error("Expected match ID to be generated")
		}
		if match.Status != models.MatchScheduled {
			t.Errorf("Status = %s, want scheduled", match.Status)
		}
		if match.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetMatch retrieves the match", func(t *testing.T) {
		created := createTestMatch(t, store, 14)

		got, err := store.GetMatch(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetMatch failed: %v", err)
		}
		if got.Capacity != 14 {
			t.Errorf("Capacity = %d, want 14", got.Capacity)
		}
		if got.Location != "Pitch 3" {
			t.Errorf("Location = %s, want Pitch 3", got.Location)
		}
	})

	t.Run("GetMatch returns not found for unknown ID", func(t *testing.T) {
		_, err := store.GetMatch(ctx, "nope")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestProfileStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("UpsertProfile creates then updates", func(t *testing.T) {
		p := &models.Profile{
			Name:         "Ana",
			Email:        "ana@example.com",
			PasswordHash: "hash",
			Position:     models.PositionGoalkeeper,
			SkillRating:  4.5,
		}
		if err := store.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}
		if p.ID == "" {
			t.Fatal("Expected profile ID to be generated")
		}

		p.Position = models.PositionForward
		p.SkillRating = 3.0
		if err := store.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile update failed: %v", err)
		}

		got, err := store.GetProfile(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if got.Position != models.PositionForward {
			t.Errorf("Position = %s, want forward", got.Position)
		}
		if got.SkillRating != 3.0 {
			t.Errorf("SkillRating = %v, want 3.0", got.SkillRating)
		}
	})

	t.Run("GetProfileByEmail returns nil for unknown email", func(t *testing.T) {
		got, err := store.GetProfileByEmail(ctx, "missing@example.com")
		if err != nil {
			t.Fatalf("GetProfileByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil profile, got %+v", got)
		}
	})
}

func TestAdmissionStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("UpsertAdmission is idempotent", func(t *testing.T) {
		match := createTestMatch(t, store, 10)

		rec, created, err := store.UpsertAdmission(ctx, match.ID, "p1")
		if err != nil {
			t.Fatalf("UpsertAdmission failed: %v", err)
		}
		if !created {
			t.Error("expected first upsert to create")
		}
		if rec.Status != models.AdmissionRequested {
			t.Errorf("Status = %s, want requested", rec.Status)
		}

		again, created, err := store.UpsertAdmission(ctx, match.ID, "p1")
		if err != nil {
			t.Fatalf("UpsertAdmission failed: %v", err)
		}
		if created {
			t.Error("expected second upsert to be a no-op")
		}
		if again.RequestedAt != rec.RequestedAt {
			t.Errorf("RequestedAt changed: %d != %d", again.RequestedAt, rec.RequestedAt)
		}

		all, err := store.ListAdmissions(ctx, match.ID)
		if err != nil {
			t.Fatalf("ListAdmissions failed: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("records = %d, want 1", len(all))
		}
	})

	t.Run("UpsertAdmission rejects unknown match", func(t *testing.T) {
		_, _, err := store.UpsertAdmission(ctx, "ghost", "p1")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ApproveAdmission consumes capacity then waitlists", func(t *testing.T) {
		match := createTestMatch(t, store, 2)
		for _, u := range []string{"p1", "p2", "p3"} {
			if _, _, err := store.UpsertAdmission(ctx, match.ID, u); err != nil {
				t.Fatalf("UpsertAdmission failed: %v", err)
			}
		}

		for _, u := range []string{"p1", "p2"} {
			out, err := store.ApproveAdmission(ctx, match.ID, u, true)
			if err != nil {
				t.Fatalf("ApproveAdmission(%s) failed: %v", u, err)
			}
			if out.Downgraded {
				t.Errorf("ApproveAdmission(%s) downgraded unexpectedly", u)
			}
		}

		out, err := store.ApproveAdmission(ctx, match.ID, "p3", true)
		if err != nil {
			t.Fatalf("ApproveAdmission(p3) failed: %v", err)
		}
		if !out.Downgraded {
			t.Error("expected p3 to be downgraded to waitlist")
		}
		if out.Record.Status != models.AdmissionWaitlist {
			t.Errorf("p3 status = %s, want waitlist", out.Record.Status)
		}

		approved, err := store.ListApproved(ctx, match.ID)
		if err != nil {
			t.Fatalf("ListApproved failed: %v", err)
		}
		if len(approved) != 2 {
			t.Errorf("approved = %d, want 2", len(approved))
		}
	})

	t.Run("ApproveAdmission without waitlist fails when full", func(t *testing.T) {
		match := createTestMatch(t, store, 1)
		for _, u := range []string{"p1", "p2"} {
			if _, _, err := store.UpsertAdmission(ctx, match.ID, u); err != nil {
				t.Fatalf("UpsertAdmission failed: %v", err)
			}
		}
		if _, err := store.ApproveAdmission(ctx, match.ID, "p1", true); err != nil {
			t.Fatalf("ApproveAdmission(p1) failed: %v", err)
		}

		_, err := store.ApproveAdmission(ctx, match.ID, "p2", false)
		if !errors.Is(err, models.ErrCapacityExceeded) {
			t.Errorf("error = %v, want ErrCapacityExceeded", err)
		}
	})

	t.Run("ApproveAdmission rejects declined records", func(t *testing.T) {
		match := createTestMatch(t, store, 5)
		if _, _, err := store.UpsertAdmission(ctx, match.ID, "p1"); err != nil {
			t.Fatalf("UpsertAdmission failed: %v", err)
		}
		if _, err := store.DeclineAdmission(ctx, match.ID, "p1"); err != nil {
			t.Fatalf("DeclineAdmission failed: %v", err)
		}

		_, err := store.ApproveAdmission(ctx, match.ID, "p1", true)
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("DeclineAdmission rejects double decline", func(t *testing.T) {
		match := createTestMatch(t, store, 5)
		if _, _, err := store.UpsertAdmission(ctx, match.ID, "p1"); err != nil {
			t.Fatalf("UpsertAdmission failed: %v", err)
		}
		if _, err := store.DeclineAdmission(ctx, match.ID, "p1"); err != nil {
			t.Fatalf("DeclineAdmission failed: %v", err)
		}

		_, err := store.DeclineAdmission(ctx, match.ID, "p1")
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("CancelAdmission promotes the oldest waitlisted player", func(t *testing.T) {
		match := createTestMatch(t, store, 2)
		for _, u := range []string{"p1", "p2", "p3", "p4"} {
			if _, _, err := store.UpsertAdmission(ctx, match.ID, u); err != nil {
				t.Fatalf("UpsertAdmission failed: %v", err)
			}
		}
		for _, u := range []string{"p1", "p2", "p3", "p4"} {
			if _, err := store.ApproveAdmission(ctx, match.ID, u, true); err != nil {
				t.Fatalf("ApproveAdmission(%s) failed: %v", u, err)
			}
		}
		// p3 and p4 are waitlisted, p3 is older

		promoted, err := store.CancelAdmission(ctx, match.ID, "p1")
		if err != nil {
			t.Fatalf("CancelAdmission failed: %v", err)
		}
		if promoted != "p3" {
			t.Errorf("promoted = %s, want p3", promoted)
		}

		p1, err := store.GetAdmission(ctx, match.ID, "p1")
		if err != nil {
			t.Fatalf("GetAdmission failed: %v", err)
		}
		if p1.Status != models.AdmissionDeclined {
			t.Errorf("p1 status = %s, want declined", p1.Status)
		}

		approved, err := store.ListApproved(ctx, match.ID)
		if err != nil {
			t.Fatalf("ListApproved failed: %v", err)
		}
		if len(approved) != 2 {
			t.Errorf("approved = %d, want 2", len(approved))
		}
	})

	t.Run("CancelAdmission with empty waitlist promotes nobody", func(t *testing.T) {
		match := createTestMatch(t, store, 2)
		if _, _, err := store.UpsertAdmission(ctx, match.ID, "p1"); err != nil {
			t.Fatalf("UpsertAdmission failed: %v", err)
		}
		if _, err := store.ApproveAdmission(ctx, match.ID, "p1", true); err != nil {
			t.Fatalf("ApproveAdmission failed: %v", err)
		}

		promoted, err := store.CancelAdmission(ctx, match.ID, "p1")
		if err != nil {
			t.Fatalf("CancelAdmission failed: %v", err)
		}
		if promoted != "" {
			t.Errorf("promoted = %s, want empty", promoted)
		}
	})

	t.Run("CancelAdmission rejects non-approved records", func(t *testing.T) {
		match := createTestMatch(t, store, 2)
		if _, _, err := store.UpsertAdmission(ctx, match.ID, "p1"); err != nil {
			t.Fatalf("UpsertAdmission failed: %v", err)
		}

		_, err := store.CancelAdmission(ctx, match.ID, "p1")
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestTeamStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedProfile := func(id string, pos models.Position) {
		t.Helper()
		p := &models.Profile{
			ID:           id,
			Name:         "Player " + id,
			Email:        id + "@example.com",
			PasswordHash: "hash",
			Position:     pos,
			SkillRating:  3,
		}
		if err := store.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}
	}

	t.Run("ReplaceTeams writes a fresh pair", func(t *testing.T) {
		match := createTestMatch(t, store, 10)
		for _, id := range []string{"a", "b", "c", "d"} {
			seedProfile(id, models.PositionMidfielder)
			if _, _, err := store.UpsertAdmission(ctx, match.ID, id); err != nil {
				t.Fatalf("UpsertAdmission failed: %v", err)
			}
			if _, err := store.ApproveAdmission(ctx, match.ID, id, true); err != nil {
				t.Fatalf("ApproveAdmission failed: %v", err)
			}
		}

		if err := store.ReplaceTeams(ctx, match.ID, []string{"a", "b"}, []string{"c", "d"}); err != nil {
			t.Fatalf("ReplaceTeams failed: %v", err)
		}

		sheets, err := store.GetTeams(ctx, match.ID)
		if err != nil {
			t.Fatalf("GetTeams failed: %v", err)
		}
		if len(sheets) != 2 {
			t.Fatalf("teams = %d, want 2", len(sheets))
		}
		if sheets[0].Team.Number != 1 || sheets[1].Team.Number != 2 {
			t.Errorf("team numbers = %d/%d, want 1/2", sheets[0].Team.Number, sheets[1].Team.Number)
		}
		if len(sheets[0].Players) != 2 || len(sheets[1].Players) != 2 {
			t.Errorf("player counts = %d/%d, want 2/2", len(sheets[0].Players), len(sheets[1].Players))
		}

		// Regenerating replaces, never accumulates
		if err := store.ReplaceTeams(ctx, match.ID, []string{"a", "c"}, []string{"b", "d"}); err != nil {
			t.Fatalf("ReplaceTeams second run failed: %v", err)
		}
		sheets, err = store.GetTeams(ctx, match.ID)
		if err != nil {
			t.Fatalf("GetTeams failed: %v", err)
		}
		if len(sheets) != 2 {
			t.Fatalf("teams after regen = %d, want 2", len(sheets))
		}
		if sheets[0].Players[1].ID != "c" {
			t.Errorf("team1 second player = %s, want c", sheets[0].Players[1].ID)
		}
	})

	t.Run("ReplaceTeams stamps team numbers on admissions", func(t *testing.T) {
		match := createTestMatch(t, store, 10)
		for _, id := range []string{"x", "y"} {
			seedProfile(id, models.PositionMidfielder)
			if _, _, err := store.UpsertAdmission(ctx, match.ID, id); err != nil {
				t.Fatalf("UpsertAdmission failed: %v", err)
			}
			if _, err := store.ApproveAdmission(ctx, match.ID, id, true); err != nil {
				t.Fatalf("ApproveAdmission failed: %v", err)
			}
		}

		if err := store.ReplaceTeams(ctx, match.ID, []string{"x"}, []string{"y"}); err != nil {
			t.Fatalf("ReplaceTeams failed: %v", err)
		}

		rec, err := store.GetAdmission(ctx, match.ID, "y")
		if err != nil {
			t.Fatalf("GetAdmission failed: %v", err)
		}
		if rec.TeamNumber != 2 {
			t.Errorf("y team number = %d, want 2", rec.TeamNumber)
		}
	})
}

func TestSettlementStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("UpsertExpense overwrites the singleton row", func(t *testing.T) {
		match := createTestMatch(t, store, 10)

		if err := store.UpsertExpense(ctx, &models.Expense{MatchID: match.ID, TotalCents: 50000, SetBy: "organizer"}); err != nil {
			t.Fatalf("UpsertExpense failed: %v", err)
		}
		if err := store.UpsertExpense(ctx, &models.Expense{MatchID: match.ID, TotalCents: 60000, SetBy: "organizer"}); err != nil {
			t.Fatalf("UpsertExpense overwrite failed: %v", err)
		}

		got, err := store.GetExpense(ctx, match.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.TotalCents != 60000 {
			t.Errorf("TotalCents = %d, want 60000", got.TotalCents)
		}
	})

	t.Run("GetExpense reports missing expense", func(t *testing.T) {
		match := createTestMatch(t, store, 10)
		_, err := store.GetExpense(ctx, match.ID)
		if !errors.Is(err, models.ErrNoExpenseDefined) {
			t.Errorf("error = %v, want ErrNoExpenseDefined", err)
		}
	})

	t.Run("ReconcilePayments creates, reprices and prunes", func(t *testing.T) {
		match := createTestMatch(t, store, 10)

		if err := store.ReconcilePayments(ctx, match.ID, 10000, []string{"p1", "p2"}); err != nil {
			t.Fatalf("ReconcilePayments failed: %v", err)
		}

		payments, err := store.ListPayments(ctx, match.ID)
		if err != nil {
			t.Fatalf("ListPayments failed: %v", err)
		}
		if len(payments) != 2 {
			t.Fatalf("payments = %d, want 2", len(payments))
		}
		for _, p := range payments {
			if p.Status != models.PaymentPending {
				t.Errorf("%s status = %s, want pending", p.UserID, p.Status)
			}
			if p.AmountCents != 10000 {
				t.Errorf("%s amount = %d, want 10000", p.UserID, p.AmountCents)
			}
		}

		// Mark p1 paid, then reconcile with a new share and without p2
		if err := store.SetPaymentStatus(ctx, payments[0].ID, models.PaymentPaid, 1700000100); err != nil {
			t.Fatalf("SetPaymentStatus failed: %v", err)
		}
		if err := store.ReconcilePayments(ctx, match.ID, 15000, []string{"p1", "p3"}); err != nil {
			t.Fatalf("ReconcilePayments second run failed: %v", err)
		}

		payments, err = store.ListPayments(ctx, match.ID)
		if err != nil {
			t.Fatalf("ListPayments failed: %v", err)
		}
		if len(payments) != 2 {
			t.Fatalf("payments after reconcile = %d, want 2", len(payments))
		}

		byUser := map[string]models.PaymentRecord{}
		for _, p := range payments {
			byUser[p.UserID] = p
		}
		if _, gone := byUser["p2"]; gone {
			t.Error("expected p2's payment to be pruned")
		}
		p1 := byUser["p1"]
		if p1.Status != models.PaymentPaid {
			t.Errorf("p1 status = %s, want paid preserved", p1.Status)
		}
		if p1.PaidAt != 1700000100 {
			t.Errorf("p1 PaidAt = %d, want preserved", p1.PaidAt)
		}
		if p1.AmountCents != 15000 {
			t.Errorf("p1 amount = %d, want repriced to 15000", p1.AmountCents)
		}
		p3 := byUser["p3"]
		if p3.Status != models.PaymentPending {
			t.Errorf("p3 status = %s, want pending", p3.Status)
		}
	})

	t.Run("SetPaymentStatus reports unknown payment", func(t *testing.T) {
		err := store.SetPaymentStatus(ctx, "ghost", models.PaymentPaid, 1)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestConcurrentWritersQueue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	match := createTestMatch(t, store, 50)

	// Each goroutine writes through its own pooled connection; the busy
	// timeout has to make them queue rather than surface SQLITE_BUSY
	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("p%d", i)
			if _, _, err := store.UpsertAdmission(ctx, match.ID, userID); err != nil {
				errs <- err
				return
			}
			if _, err := store.ApproveAdmission(ctx, match.ID, userID, true); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent write failed: %v", err)
	}

	recs, err := store.ListApproved(ctx, match.ID)
	if err != nil {
		t.Fatalf("ListApproved failed: %v", err)
	}
	if len(recs) != writers {
		t.Errorf("approved = %d, want %d", len(recs), writers)
	}
}
