package models

// Position is a player's preferred field position.
type Position string

const (
	PositionGoalkeeper Position = "goalkeeper"
	PositionDefender   Position = "defender"
	PositionFullback   Position = "fullback"
	PositionMidfielder Position = "midfielder"
	PositionForward    Position = "forward"
)

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionFullback, PositionMidfielder, PositionForward:
		return true
	}
	return false
}

// Profile is a player's registered account and football profile.
// Position and SkillRating feed the team balancer; the engines never
// write profiles.
type Profile struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name shown on rosters and team sheets.
	Name string

	// Email is the login identity (unique).
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Position is the player's preferred position.
	Position Position

	// SkillRating is a self- or organizer-assessed rating, 0.0 to 5.0.
	SkillRating float64

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}
