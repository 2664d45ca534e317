package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pelada/matchday/internal/models"
)

// UpsertExpense creates or overwrites the match's singleton expense row.
func (s *SQLiteStore) UpsertExpense(ctx context.Context, expense *models.Expense) error {
	if expense.SetAt == 0 {
		expense.SetAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (match_id, total_cents, set_by, set_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(match_id) DO UPDATE SET
		     total_cents = excluded.total_cents,
		     set_by = excluded.set_by,
		     set_at = excluded.set_at`,
		expense.MatchID, expense.TotalCents, expense.SetBy, expense.SetAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert expense: %w", err)
	}

	return nil
}

// GetExpense retrieves the match's expense.
func (s *SQLiteStore) GetExpense(ctx context.Context, matchID string) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		"SELECT match_id, total_cents, set_by, set_at FROM expenses WHERE match_id = ?",
		matchID,
	).Scan(&expense.MatchID, &expense.TotalCents, &expense.SetBy, &expense.SetAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense for match %s: %w", matchID, models.ErrNoExpenseDefined)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// ReconcilePayments brings payment rows in line with the approved roster in
// one transaction: existing rows get the new share (status and paid_at
// preserved), missing rows are created pending, and rows for users no longer
// approved are deleted.
func (s *SQLiteStore) ReconcilePayments(ctx context.Context, matchID string, shareCents int64, userIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Prune rows for players who dropped off the roster
	if len(userIDs) == 0 {
		_, err = tx.ExecContext(ctx, "DELETE FROM payment_records WHERE match_id = ?", matchID)
	} else {
		query := "DELETE FROM payment_records WHERE match_id = ? AND user_id NOT IN (?" +
			repeatPlaceholder(len(userIDs)-1) + ")"
		args := make([]interface{}, 0, len(userIDs)+1)
		args = append(args, matchID)
		for _, id := range userIDs {
			args = append(args, id)
		}
		_, err = tx.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("failed to prune payments: %w", err)
	}

	// Upsert shares; the conflict branch deliberately leaves status and
	// paid_at untouched so a cost change never un-pays anyone
	for _, userID := range userIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO payment_records (id, match_id, user_id, amount_cents, status, paid_at)
			 VALUES (?, ?, ?, ?, ?, 0)
			 ON CONFLICT(match_id, user_id) DO UPDATE SET
			     amount_cents = excluded.amount_cents`,
			uuid.New().String(), matchID, userID, shareCents, models.PaymentPending,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListPayments returns the match's payment records ordered by creation.
func (s *SQLiteStore) ListPayments(ctx context.Context, matchID string) ([]models.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, match_id, user_id, amount_cents, status, paid_at
		 FROM payment_records WHERE match_id = ? ORDER BY rowid`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.PaymentRecord
	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(&p.ID, &p.MatchID, &p.UserID, &p.AmountCents, &p.Status, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// GetPayment retrieves a payment record by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	p := &models.PaymentRecord{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, match_id, user_id, amount_cents, status, paid_at
		 FROM payment_records WHERE id = ?`,
		paymentID,
	).Scan(&p.ID, &p.MatchID, &p.UserID, &p.AmountCents, &p.Status, &p.PaidAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment %s: %w", paymentID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// SetPaymentStatus updates one payment's status and paid_at.
func (s *SQLiteStore) SetPaymentStatus(ctx context.Context, paymentID string, status models.PaymentStatus, paidAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE payment_records SET status = ?, paid_at = ? WHERE id = ?",
		status, paidAt, paymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("payment %s: %w", paymentID, models.ErrNotFound)
	}

	return nil
}
