package models

// Team is one side of a generated two-team split.
// Teams are ephemeral: every generation deletes the match's previous teams
// and memberships and writes a fresh pair in one transaction.
type Team struct {
	// ID is the unique identifier for the team (UUID format).
	ID string

	// MatchID is the match this team belongs to.
	MatchID string

	// Number is 1 or 2.
	Number int

	// CreatedAt is the Unix timestamp of the generation that produced it.
	CreatedAt int64
}

// TeamMembership places one approved player on one team.
// After a successful generation every approved player has exactly one
// membership row.
type TeamMembership struct {
	TeamID string
	UserID string
}

// TeamSheet is a read model: one team with its players' profiles resolved,
// as consumed by the team-generator screen.
type TeamSheet struct {
	Team    Team
	Players []Profile
}
