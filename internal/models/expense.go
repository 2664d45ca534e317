package models

// Expense is the organizer-declared total cost of a match.
// At most one row exists per match; setting it again overwrites the amount.
type Expense struct {
	// MatchID identifies the match (one expense per match).
	MatchID string

	// TotalCents is the total cost in cents.
	TotalCents int64

	// SetBy is the user who last set the amount.
	SetBy string

	// SetAt is the Unix timestamp of the last update.
	SetAt int64
}
