package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pelada/matchday/internal/metrics"
	"github.com/pelada/matchday/internal/models"
	"github.com/pelada/matchday/internal/storage"
)

// AdmissionService owns per-match, per-player admission state. It enforces the
// capacity invariant (approved count never exceeds capacity) and FIFO waitlist
// promotion when an approved player withdraws.
type AdmissionService struct {
	store storage.Store
	locks *Locks
}

// NewAdmissionService creates a new AdmissionService with the given storage
// backend and the engine's shared per-match locks.
func NewAdmissionService(store storage.Store, locks *Locks) *AdmissionService {
	return &AdmissionService{store: store, locks: locks}
}

// RequestEntry records a player's request to join a match. Re-requesting is a
// no-op: whatever state the existing record is in, it is returned unchanged.
func (s *AdmissionService) RequestEntry(ctx context.Context, matchID, userID string) (models.AdmissionRecord, error) {
	if matchID == "" || userID == "" {
		return models.AdmissionRecord{}, fmt.Errorf("match and user id required: %w", models.ErrValidation)
	}

	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	rec, created, err := s.store.UpsertAdmission(ctx, matchID, userID)
	if err != nil {
		slog.Error("RequestEntry failed", "match_id", matchID, "user_id", userID, "error", err)
		return models.AdmissionRecord{}, err
	}

	if created {
		metrics.AdmissionTransitions.WithLabelValues("requested").Inc()
		slog.Info("Entry requested", "match_id", matchID, "user_id", userID)
	} else {
		slog.Info("Entry re-requested, no-op", "match_id", matchID, "user_id", userID, "status", rec.Status)
	}

	return rec, nil
}

// Approve admits a requested or waitlisted player. When the match is full and
// allowWaitlist is true, the record lands on the waitlist instead and the
// outcome reports the downgrade so the UI can tell the requester; with
// allowWaitlist false a full match fails with ErrCapacityExceeded.
func (s *AdmissionService) Approve(ctx context.Context, matchID, userID string, allowWaitlist bool) (storage.ApproveOutcome, error) {
	if matchID == "" || userID == "" {
		return storage.ApproveOutcome{}, fmt.Errorf("match and user id required: %w", models.ErrValidation)
	}

	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	out, err := s.store.ApproveAdmission(ctx, matchID, userID, allowWaitlist)
	if err != nil {
		slog.Error("Approve failed", "match_id", matchID, "user_id", userID, "error", err)
		return out, err
	}

	if out.Downgraded {
		metrics.AdmissionTransitions.WithLabelValues("waitlisted").Inc()
		slog.Info("Match full, player waitlisted", "match_id", matchID, "user_id", userID)
	} else {
		metrics.AdmissionTransitions.WithLabelValues("approved").Inc()
		slog.Info("Player approved", "match_id", matchID, "user_id", userID)
	}

	return out, nil
}

// Decline rejects a player's request from any state except declined.
func (s *AdmissionService) Decline(ctx context.Context, matchID, userID string) (models.AdmissionRecord, error) {
	if matchID == "" || userID == "" {
		return models.AdmissionRecord{}, fmt.Errorf("match and user id required: %w", models.ErrValidation)
	}

	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.store.DeclineAdmission(ctx, matchID, userID)
	if err != nil {
		slog.Error("Decline failed", "match_id", matchID, "user_id", userID, "error", err)
		return rec, err
	}

	metrics.AdmissionTransitions.WithLabelValues("declined").Inc()
	slog.Info("Player declined", "match_id", matchID, "user_id", userID)
	return rec, nil
}

// Cancel withdraws an approved player and promotes the oldest waitlisted
// request into the freed slot. The promoted user's id is returned ("" when the
// waitlist was empty).
func (s *AdmissionService) Cancel(ctx context.Context, matchID, userID string) (string, error) {
	if matchID == "" || userID == "" {
		return "", fmt.Errorf("match and user id required: %w", models.ErrValidation)
	}

	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	promoted, err := s.store.CancelAdmission(ctx, matchID, userID)
	if err != nil {
		slog.Error("Cancel failed", "match_id", matchID, "user_id", userID, "error", err)
		return "", err
	}

	metrics.AdmissionTransitions.WithLabelValues("canceled").Inc()
	if promoted != "" {
		metrics.AdmissionTransitions.WithLabelValues("promoted").Inc()
	}
	slog.Info("Player canceled", "match_id", matchID, "user_id", userID, "promoted_user_id", promoted)
	return promoted, nil
}

// ListApproved returns the approved roster ordered by request time.
func (s *AdmissionService) ListApproved(ctx context.Context, matchID string) ([]models.AdmissionRecord, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match id required: %w", models.ErrValidation)
	}
	return s.store.ListApproved(ctx, matchID)
}

// ListAdmissions returns every admission record for the match, for the
// approval-management screen.
func (s *AdmissionService) ListAdmissions(ctx context.Context, matchID string) ([]models.AdmissionRecord, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match id required: %w", models.ErrValidation)
	}
	return s.store.ListAdmissions(ctx, matchID)
}
