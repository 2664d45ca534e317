package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pelada/matchday/internal/balancer"
	"github.com/pelada/matchday/internal/metrics"
	"github.com/pelada/matchday/internal/models"
	"github.com/pelada/matchday/internal/storage"
)

// TeamService generates and serves the two-team split of a match's approved
// roster. Generation is destructive on purpose: every call replaces the
// previous assignment, and the randomized input means repeated calls produce
// different splits, so it only ever runs on an explicit user action.
type TeamService struct {
	store  storage.Store
	locks  *Locks
	newRng func() *rand.Rand
}

// NewTeamService creates a new TeamService with the given storage backend and
// the engine's shared per-match locks.
func NewTeamService(store storage.Store, locks *Locks) *TeamService {
	return &TeamService{
		store: store,
		locks: locks,
		newRng: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// GenerateTeams splits the approved roster into two teams and persists the
// pair atomically, replacing any previous assignment. The roster is read under
// the match lock, so a concurrent approval cannot slip between the read and
// the write.
func (s *TeamService) GenerateTeams(ctx context.Context, matchID string) ([]models.TeamSheet, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match id required: %w", models.ErrValidation)
	}

	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	roster, err := s.store.ListApproved(ctx, matchID)
	if err != nil {
		slog.Error("GenerateTeams failed to read roster", "match_id", matchID, "error", err)
		return nil, err
	}

	players, err := s.rosterPlayers(ctx, roster)
	if err != nil {
		slog.Error("GenerateTeams failed to resolve profiles", "match_id", matchID, "error", err)
		return nil, err
	}

	team1, team2, err := balancer.Split(players, s.newRng())
	if err != nil {
		metrics.TeamGenerations.WithLabelValues("rejected").Inc()
		slog.Warn("GenerateTeams rejected", "match_id", matchID, "players", len(players), "error", err)
		return nil, err
	}

	if err := s.store.ReplaceTeams(ctx, matchID, balancer.UserIDs(team1), balancer.UserIDs(team2)); err != nil {
		metrics.TeamGenerations.WithLabelValues("error").Inc()
		slog.Error("GenerateTeams failed to persist", "match_id", matchID, "error", err)
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	metrics.TeamGenerations.WithLabelValues("ok").Inc()
	slog.Info("Teams generated",
		"match_id", matchID,
		"team1_size", len(team1),
		"team2_size", len(team2),
	)

	return s.store.GetTeams(ctx, matchID)
}

// GetTeams returns the match's current team assignment.
func (s *TeamService) GetTeams(ctx context.Context, matchID string) ([]models.TeamSheet, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match id required: %w", models.ErrValidation)
	}
	return s.store.GetTeams(ctx, matchID)
}

// rosterPlayers joins admission records with their profiles. A missing
// profile falls back to an outfielder with rating zero rather than blocking
// the whole generation.
func (s *TeamService) rosterPlayers(ctx context.Context, roster []models.AdmissionRecord) ([]balancer.Player, error) {
	players := make([]balancer.Player, 0, len(roster))
	for _, rec := range roster {
		p := balancer.Player{UserID: rec.UserID, Position: models.PositionMidfielder}

		profile, err := s.store.GetProfile(ctx, rec.UserID)
		switch {
		case err == nil:
			p.Name = profile.Name
			p.Position = profile.Position
			p.Rating = profile.SkillRating
		case errors.Is(err, models.ErrNotFound):
			// keep the outfielder defaults
		default:
			return nil, err
		}

		players = append(players, p)
	}
	return players, nil
}
