package models

// AdmissionStatus is the state of one player's entry request for a match.
type AdmissionStatus string

const (
	AdmissionRequested AdmissionStatus = "requested"
	AdmissionApproved  AdmissionStatus = "approved"
	AdmissionDeclined  AdmissionStatus = "declined"
	AdmissionWaitlist  AdmissionStatus = "waitlist"
)

// Valid reports whether s is one of the known admission states.
func (s AdmissionStatus) Valid() bool {
	switch s {
	case AdmissionRequested, AdmissionApproved, AdmissionDeclined, AdmissionWaitlist:
		return true
	}
	return false
}

// CanApprove reports whether a record in state s may transition into
// approved (or waitlist, when the match is full).
func (s AdmissionStatus) CanApprove() bool {
	return s == AdmissionRequested || s == AdmissionWaitlist
}

// CanDecline reports whether a record in state s may transition into declined.
// Declining an already-declined record is an invalid transition.
func (s AdmissionStatus) CanDecline() bool {
	return s != AdmissionDeclined
}

// AdmissionRecord tracks one player's entry state for one match.
// There is at most one record per (match, user); re-requesting returns the
// existing record unchanged. Records are never deleted, only transitioned.
type AdmissionRecord struct {
	// MatchID and UserID form the composite key.
	MatchID string
	UserID  string

	// Status is the current admission state.
	Status AdmissionStatus

	// RequestedAt is the Unix timestamp of the first request.
	// It orders the waitlist: promotion on cancellation is FIFO.
	RequestedAt int64

	// TeamNumber is 1 or 2 once the player has been placed by team
	// generation, 0 otherwise. Written only by the team engine.
	TeamNumber int
}
