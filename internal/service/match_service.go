package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pelada/matchday/internal/models"
	"github.com/pelada/matchday/internal/storage"
)

// MatchService creates and serves match metadata. The engine treats matches
// as read-only input once created.
type MatchService struct {
	store storage.Store
}

// NewMatchService creates a new MatchService with the given storage backend.
func NewMatchService(store storage.Store) *MatchService {
	return &MatchService{store: store}
}

// CreateMatch opens a new match owned by the organizer.
func (s *MatchService) CreateMatch(ctx context.Context, match *models.Match) (*models.Match, error) {
	if match.OrganizerID == "" {
		return nil, fmt.Errorf("organizer id required: %w", models.ErrValidation)
	}
	if match.Capacity < 1 {
		return nil, fmt.Errorf("capacity must be at least 1: %w", models.ErrValidation)
	}
	if match.Status != "" && match.Status != models.MatchScheduled {
		return nil, fmt.Errorf("new matches must be scheduled: %w", models.ErrValidation)
	}

	if err := s.store.CreateMatch(ctx, match); err != nil {
		slog.Error("CreateMatch failed", "error", err)
		return nil, err
	}

	slog.Info("Match created",
		"match_id", match.ID,
		"organizer_id", match.OrganizerID,
		"capacity", match.Capacity,
	)
	return match, nil
}

// GetMatch retrieves a match by ID.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match id required: %w", models.ErrValidation)
	}
	return s.store.GetMatch(ctx, matchID)
}

// UpdateProfile sets a player's name, position and skill rating.
func (s *MatchService) UpdateProfile(ctx context.Context, userID, name string, position models.Position, rating float64) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required: %w", models.ErrValidation)
	}
	if !position.Valid() {
		return nil, fmt.Errorf("unknown position %q: %w", position, models.ErrValidation)
	}
	if rating < 0 || rating > 5 {
		return nil, fmt.Errorf("skill rating must be between 0 and 5: %w", models.ErrValidation)
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		profile.Name = name
	}
	profile.Position = position
	profile.SkillRating = rating

	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		slog.Error("UpdateProfile failed", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Profile updated", "user_id", userID, "position", position, "rating", rating)
	return profile, nil
}

// GetProfile retrieves a player's profile.
func (s *MatchService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required: %w", models.ErrValidation)
	}
	return s.store.GetProfile(ctx, userID)
}
