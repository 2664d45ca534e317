package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pelada/matchday/internal/models"
)

// ReplaceTeams atomically swaps the match's team assignment for the given
// pair. Delete and recreate happen in one transaction: a failure anywhere
// rolls back and the prior assignment stays observable.
func (s *SQLiteStore) ReplaceTeams(ctx context.Context, matchID string, team1, team2 []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM team_memberships WHERE team_id IN (SELECT id FROM teams WHERE match_id = ?)",
		matchID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM teams WHERE match_id = ?", matchID)
	if err != nil {
		return fmt.Errorf("failed to delete teams: %w", err)
	}

	now := time.Now().Unix()
	sides := []struct {
		number  int
		members []string
	}{{1, team1}, {2, team2}}

	for _, side := range sides {
		number, members := side.number, side.members
		teamID := uuid.New().String()
		_, err = tx.ExecContext(ctx,
			"INSERT INTO teams (id, match_id, number, created_at) VALUES (?, ?, ?, ?)",
			teamID, matchID, number, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert team %d: %w", number, err)
		}

		for _, userID := range members {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO team_memberships (team_id, user_id) VALUES (?, ?)",
				teamID, userID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert membership: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				"UPDATE admission_records SET team_number = ? WHERE match_id = ? AND user_id = ?",
				number, matchID, userID,
			)
			if err != nil {
				return fmt.Errorf("failed to set team number: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetTeams returns the match's current teams with resolved player profiles,
// ordered by team number.
func (s *SQLiteStore) GetTeams(ctx context.Context, matchID string) ([]models.TeamSheet, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, match_id, number, created_at FROM teams WHERE match_id = ? ORDER BY number",
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	defer rows.Close()

	var sheets []models.TeamSheet
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.MatchID, &team.Number, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		sheets = append(sheets, models.TeamSheet{Team: team})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}

	for i := range sheets {
		members, err := s.teamMembers(ctx, sheets[i].Team.ID)
		if err != nil {
			return nil, err
		}

		profiles, err := s.getProfilesByIDs(ctx, members)
		if err != nil {
			return nil, err
		}

		// Keep membership insert order on the sheet. A member without a
		// profile row still gets a placeholder entry so the sheet always
		// covers the memberships.
		for _, userID := range members {
			if p, ok := profiles[userID]; ok {
				sheets[i].Players = append(sheets[i].Players, *p)
			} else {
				sheets[i].Players = append(sheets[i].Players, models.Profile{ID: userID})
			}
		}
	}

	return sheets, nil
}

func (s *SQLiteStore) teamMembers(ctx context.Context, teamID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM team_memberships WHERE team_id = ? ORDER BY rowid",
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get memberships: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	return members, nil
}
