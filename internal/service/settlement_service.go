package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pelada/matchday/internal/metrics"
	"github.com/pelada/matchday/internal/models"
	"github.com/pelada/matchday/internal/storage"
)

// SettlementService keeps the per-player payment ledger consistent with the
// approved roster and the organizer-declared total cost. Payment rows are
// derived data: reconciliation creates, reprices and prunes them, preserving
// paid status across cost changes. Summed shares may drift from the total by
// a few cents; the remainder is not redistributed.
type SettlementService struct {
	store storage.Store
	locks *Locks
}

// NewSettlementService creates a new SettlementService with the given storage
// backend and the engine's shared per-match locks.
func NewSettlementService(store storage.Store, locks *Locks) *SettlementService {
	return &SettlementService{store: store, locks: locks}
}

// SetExpense upserts the match's total cost and reconciles the ledger.
// Only the match organizer may set the expense.
func (s *SettlementService) SetExpense(ctx context.Context, matchID string, totalCents int64, actorID string) (*models.Expense, error) {
	if matchID == "" || actorID == "" {
		return nil, fmt.Errorf("match and actor id required: %w", models.ErrValidation)
	}
	if totalCents < 0 {
		return nil, fmt.Errorf("total must not be negative: %w", models.ErrValidation)
	}

	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.OrganizerID != actorID {
		return nil, fmt.Errorf("only the organizer may set the expense: %w", models.ErrNotAuthorized)
	}

	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	expense := &models.Expense{
		MatchID:    matchID,
		TotalCents: totalCents,
		SetBy:      actorID,
		SetAt:      time.Now().Unix(),
	}
	if err := s.store.UpsertExpense(ctx, expense); err != nil {
		slog.Error("SetExpense failed", "match_id", matchID, "error", err)
		return nil, err
	}

	if err := s.reconcile(ctx, matchID); err != nil {
		return nil, err
	}

	slog.Info("Expense set", "match_id", matchID, "total_cents", totalCents, "set_by", actorID)
	return expense, nil
}

// GetExpense returns the match's expense, or ErrNoExpenseDefined.
func (s *SettlementService) GetExpense(ctx context.Context, matchID string) (*models.Expense, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match id required: %w", models.ErrValidation)
	}
	return s.store.GetExpense(ctx, matchID)
}

// RecomputePayments reconciles the ledger against the current approved
// roster. The surrounding application calls this after every approval,
// decline or cancellation. Without an expense it fails with
// ErrNoExpenseDefined and writes nothing.
func (s *SettlementService) RecomputePayments(ctx context.Context, matchID string) error {
	if matchID == "" {
		return fmt.Errorf("match id required: %w", models.ErrValidation)
	}

	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	return s.reconcile(ctx, matchID)
}

// reconcile computes equal shares and syncs the payment rows.
// Callers hold the match lock.
func (s *SettlementService) reconcile(ctx context.Context, matchID string) error {
	expense, err := s.store.GetExpense(ctx, matchID)
	if err != nil {
		return err
	}

	roster, err := s.store.ListApproved(ctx, matchID)
	if err != nil {
		return err
	}

	userIDs := make([]string, len(roster))
	for i, rec := range roster {
		userIDs[i] = rec.UserID
	}

	// Share is rounded to the cent; the summed drift stays under one cent
	// per player and is accepted rather than redistributed
	var share int64
	if len(userIDs) > 0 {
		share = int64(math.Round(float64(expense.TotalCents) / float64(len(userIDs))))
	}

	if err := s.store.ReconcilePayments(ctx, matchID, share, userIDs); err != nil {
		slog.Error("Payment reconciliation failed", "match_id", matchID, "error", err)
		return err
	}

	metrics.PaymentReconciliations.Inc()
	slog.Info("Payments reconciled",
		"match_id", matchID,
		"players", len(userIDs),
		"share_cents", share,
	)
	return nil
}

// ListPayments returns the match's payment ledger.
func (s *SettlementService) ListPayments(ctx context.Context, matchID string) ([]models.PaymentRecord, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match id required: %w", models.ErrValidation)
	}
	return s.store.ListPayments(ctx, matchID)
}

// TogglePayment flips one payment between pending and paid, stamping or
// clearing PaidAt. Only the match organizer may toggle.
func (s *SettlementService) TogglePayment(ctx context.Context, paymentID, actorID string) (*models.PaymentRecord, error) {
	if paymentID == "" || actorID == "" {
		return nil, fmt.Errorf("payment and actor id required: %w", models.ErrValidation)
	}

	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	match, err := s.store.GetMatch(ctx, payment.MatchID)
	if err != nil {
		return nil, err
	}
	if match.OrganizerID != actorID {
		return nil, fmt.Errorf("only the organizer may toggle payments: %w", models.ErrNotAuthorized)
	}

	lock := s.locks.get(payment.MatchID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: a toggle that committed between the read
	// above and here must flip us the other way, not get overwritten.
	payment, err = s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	status := models.PaymentPaid
	var paidAt int64
	if payment.Status == models.PaymentPaid {
		status = models.PaymentPending
	} else {
		paidAt = time.Now().Unix()
	}

	if err := s.store.SetPaymentStatus(ctx, paymentID, status, paidAt); err != nil {
		slog.Error("TogglePayment failed", "payment_id", paymentID, "error", err)
		return nil, err
	}

	payment.Status = status
	payment.PaidAt = paidAt
	slog.Info("Payment toggled", "payment_id", paymentID, "status", status, "actor_id", actorID)
	return payment, nil
}
