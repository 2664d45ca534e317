// Package balancer implements the two-team split of an approved roster.
//
// Goalkeepers are shuffled and dealt alternately so each side gets a keeper
// when two are available. Outfielders are shuffled, then stable-sorted by
// rating descending (the shuffle breaks ties between equal ratings) and dealt
// in a period-4 snake: team 1 takes indexes 0 and 3 of every group of four.
// A plain alternating deal would hand team 1 the stronger player of every
// consecutive pair; the snake evens out cumulative skill.
package balancer

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/pelada/matchday/internal/models"
)

// Player is one approved roster entry with the profile fields the split needs.
type Player struct {
	UserID   string
	Name     string
	Position models.Position
	Rating   float64
}

// Split divides players into two teams. The rng drives the shuffles; callers
// pass a seeded source so tests can pin the outcome. Split never mutates the
// input slice.
func Split(players []Player, rng *rand.Rand) (team1, team2 []Player, err error) {
	if len(players) < 2 {
		return nil, nil, fmt.Errorf("got %d players: %w", len(players), models.ErrMinimumPlayersNotMet)
	}

	var keepers, outfield []Player
	for _, p := range players {
		if p.Position == models.PositionGoalkeeper {
			keepers = append(keepers, p)
		} else {
			outfield = append(outfield, p)
		}
	}

	// Each keeper goes to the currently smaller side, ties to team 1
	rng.Shuffle(len(keepers), func(i, j int) {
		keepers[i], keepers[j] = keepers[j], keepers[i]
	})
	for _, k := range keepers {
		if len(team1) <= len(team2) {
			team1 = append(team1, k)
		} else {
			team2 = append(team2, k)
		}
	}

	// Shuffle first so equal ratings land in random order, then the stable
	// sort keeps that order within ties
	rng.Shuffle(len(outfield), func(i, j int) {
		outfield[i], outfield[j] = outfield[j], outfield[i]
	})
	sort.SliceStable(outfield, func(i, j int) bool {
		return outfield[i].Rating > outfield[j].Rating
	})

	for i, p := range outfield {
		if i%4 == 0 || i%4 == 3 {
			team1 = append(team1, p)
		} else {
			team2 = append(team2, p)
		}
	}

	return team1, team2, nil
}

// UserIDs extracts the user IDs of a team in assignment order.
func UserIDs(team []Player) []string {
	ids := make([]string, len(team))
	for i, p := range team {
		ids[i] = p.UserID
	}
	return ids
}
