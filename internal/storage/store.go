// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/pelada/matchday/internal/models"
)

// ApproveOutcome reports how an approval landed: either a capacity slot was
// taken, or the match was full and the record was downgraded to the waitlist.
type ApproveOutcome struct {
	Record     models.AdmissionRecord
	Downgraded bool
}

// Store defines the interface for match engine storage.
// The multi-row operations (approval with capacity check, cancellation with
// waitlist promotion, team replacement, payment reconciliation) are atomic:
// a reader never observes them half-applied. This abstraction allows swapping
// storage backends (SQLite, PostgreSQL, etc.) without changing the services.
type Store interface {
	// CreateMatch persists a new match, generating ID and CreatedAt.
	CreateMatch(ctx context.Context, match *models.Match) error

	// GetMatch retrieves a match by ID.
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)

	// UpsertProfile creates or updates a user profile.
	UpsertProfile(ctx context.Context, profile *models.Profile) error

	// GetProfile retrieves a profile by user ID.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	// GetProfileByEmail retrieves a profile by email.
	// Returns nil (no error) when no account exists for the email.
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)

	// UpsertAdmission creates an admission record in the requested state
	// if none exists, or returns the existing record unchanged.
	// The bool result is true when a new record was created.
	UpsertAdmission(ctx context.Context, matchID, userID string) (models.AdmissionRecord, bool, error)

	// GetAdmission retrieves one admission record.
	GetAdmission(ctx context.Context, matchID, userID string) (models.AdmissionRecord, error)

	// ApproveAdmission transitions a requested or waitlisted record to
	// approved, checking count(approved) < capacity in the same
	// transaction as the write. When the match is full and allowWaitlist
	// is true the record lands on the waitlist instead; when
	// allowWaitlist is false the call fails with ErrCapacityExceeded.
	ApproveAdmission(ctx context.Context, matchID, userID string, allowWaitlist bool) (ApproveOutcome, error)

	// DeclineAdmission transitions a record to declined from any state
	// except declined itself.
	DeclineAdmission(ctx context.Context, matchID, userID string) (models.AdmissionRecord, error)

	// CancelAdmission withdraws an approved player: the record becomes
	// declined and, in the same transaction, the oldest waitlisted record
	// for the match (if any) is promoted to approved. The returned user ID
	// is the promoted player's, or "" when no promotion happened.
	CancelAdmission(ctx context.Context, matchID, userID string) (promotedUserID string, err error)

	// ListApproved returns approved records for a match ordered by
	// RequestedAt ascending.
	ListApproved(ctx context.Context, matchID string) ([]models.AdmissionRecord, error)

	// ListAdmissions returns all admission records for a match ordered by
	// RequestedAt ascending.
	ListAdmissions(ctx context.Context, matchID string) ([]models.AdmissionRecord, error)

	// ReplaceTeams atomically deletes the match's teams and memberships
	// and writes the given pair. A failure rolls back to the prior
	// assignment.
	ReplaceTeams(ctx context.Context, matchID string, team1, team2 []string) error

	// GetTeams returns the match's current teams with resolved player
	// profiles, ordered by team number.
	GetTeams(ctx context.Context, matchID string) ([]models.TeamSheet, error)

	// UpsertExpense creates or overwrites the match's expense row.
	UpsertExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves the match's expense.
	GetExpense(ctx context.Context, matchID string) (*models.Expense, error)

	// ReconcilePayments brings payment rows in line with the approved
	// roster in one transaction: existing rows get the new share amount
	// (status and PaidAt preserved), missing rows are created pending,
	// and rows for users not in userIDs are deleted.
	ReconcilePayments(ctx context.Context, matchID string, shareCents int64, userIDs []string) error

	// ListPayments returns the match's payment records.
	ListPayments(ctx context.Context, matchID string) ([]models.PaymentRecord, error)

	// GetPayment retrieves a payment record by ID.
	GetPayment(ctx context.Context, paymentID string) (*models.PaymentRecord, error)

	// SetPaymentStatus updates one payment's status and PaidAt.
	SetPaymentStatus(ctx context.Context, paymentID string, status models.PaymentStatus, paidAt int64) error

	// Close releases any resources held by the store.
	Close() error
}
