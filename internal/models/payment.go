package models

// PaymentStatus is the state of one player's cost share.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentRecord is one approved player's share of a match expense.
// Rows are derived data owned by the settlement engine: reconciliation
// updates amounts (preserving status), creates rows for newly approved
// players and deletes rows for players no longer approved. The only
// external mutation is the organizer's pending/paid toggle.
type PaymentRecord struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// MatchID and UserID identify whose share of which match this is.
	MatchID string
	UserID  string

	// AmountCents is this player's computed share in cents.
	AmountCents int64

	// Status is pending or paid.
	Status PaymentStatus

	// PaidAt is the Unix timestamp of the paid toggle, 0 while pending.
	PaidAt int64
}
