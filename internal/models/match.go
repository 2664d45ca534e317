package models

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchFinished  MatchStatus = "finished"
	MatchCanceled  MatchStatus = "canceled"
)

// Match represents a scheduled pickup game.
// The admission, team and settlement engines treat it as read-only input:
// capacity bounds approvals and OrganizerID gates the money operations.
type Match struct {
	// ID is the unique identifier for the match (UUID format).
	ID string

	// GroupID is the recurring group this match belongs to.
	GroupID string

	// OrganizerID is the user who opened the match. Only the organizer
	// may set the expense or toggle payment status.
	OrganizerID string

	// ScheduledAt is the Unix timestamp of kickoff.
	ScheduledAt int64

	// Location is a free-form venue description.
	Location string

	// Capacity is the maximum number of approved players (>= 1).
	Capacity int

	// Status is the match lifecycle state.
	Status MatchStatus

	// CreatedAt is the Unix timestamp when the match was created.
	CreatedAt int64
}
