package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pelada/matchday/internal/models"
	"github.com/pelada/matchday/internal/storage"
)

// UpsertAdmission creates a requested-state record if none exists, or returns
// the existing record unchanged. The bool result is true on creation.
func (s *SQLiteStore) UpsertAdmission(ctx context.Context, matchID, userID string) (models.AdmissionRecord, bool, error) {
	// Verify the match exists before touching admission rows
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM matches WHERE id = ?", matchID).Scan(&one)
	if err == sql.ErrNoRows {
		return models.AdmissionRecord{}, false, fmt.Errorf("match %s: %w", matchID, models.ErrNotFound)
	}
	if err != nil {
		return models.AdmissionRecord{}, false, fmt.Errorf("failed to check match existence: %w", err)
	}

	// ON CONFLICT DO NOTHING makes re-requesting a no-op, not a duplicate
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO admission_records (match_id, user_id, status, requested_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(match_id, user_id) DO NOTHING`,
		matchID, userID, models.AdmissionRequested, time.Now().Unix(),
	)
	if err != nil {
		return models.AdmissionRecord{}, false, fmt.Errorf("failed to insert admission: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return models.AdmissionRecord{}, false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	rec, err := s.GetAdmission(ctx, matchID, userID)
	if err != nil {
		return models.AdmissionRecord{}, false, err
	}

	return rec, inserted > 0, nil
}

// GetAdmission retrieves one admission record.
func (s *SQLiteStore) GetAdmission(ctx context.Context, matchID, userID string) (models.AdmissionRecord, error) {
	var rec models.AdmissionRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT match_id, user_id, status, requested_at, team_number
		 FROM admission_records WHERE match_id = ? AND user_id = ?`,
		matchID, userID,
	).Scan(&rec.MatchID, &rec.UserID, &rec.Status, &rec.RequestedAt, &rec.TeamNumber)
	if err == sql.ErrNoRows {
		return rec, fmt.Errorf("admission for user %s in match %s: %w", userID, matchID, models.ErrNotFound)
	}
	if err != nil {
		return rec, fmt.Errorf("failed to get admission: %w", err)
	}

	return rec, nil
}

// ApproveAdmission transitions a requested or waitlisted record to approved.
// The capacity check and the status write share one transaction, so two
// racing approvals on the same match cannot both consume the last slot.
func (s *SQLiteStore) ApproveAdmission(ctx context.Context, matchID, userID string, allowWaitlist bool) (storage.ApproveOutcome, error) {
	var out storage.ApproveOutcome

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	err = tx.QueryRowContext(ctx, "SELECT capacity FROM matches WHERE id = ?", matchID).Scan(&capacity)
	if err == sql.ErrNoRows {
		return out, fmt.Errorf("match %s: %w", matchID, models.ErrNotFound)
	}
	if err != nil {
		return out, fmt.Errorf("failed to get match capacity: %w", err)
	}

	rec, err := getAdmissionTx(ctx, tx, matchID, userID)
	if err != nil {
		return out, err
	}
	if !rec.Status.CanApprove() {
		return out, fmt.Errorf("approve from %s: %w", rec.Status, models.ErrInvalidTransition)
	}

	var approved int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM admission_records WHERE match_id = ? AND status = ?",
		matchID, models.AdmissionApproved,
	).Scan(&approved)
	if err != nil {
		return out, fmt.Errorf("failed to count approved: %w", err)
	}

	next := models.AdmissionApproved
	if approved >= capacity {
		if !allowWaitlist {
			return out, fmt.Errorf("match %s is full (%d/%d): %w", matchID, approved, capacity, models.ErrCapacityExceeded)
		}
		next = models.AdmissionWaitlist
		out.Downgraded = true
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE admission_records SET status = ?
		 WHERE match_id = ? AND user_id = ? AND status IN (?, ?)`,
		next, matchID, userID, models.AdmissionRequested, models.AdmissionWaitlist,
	)
	if err != nil {
		return out, fmt.Errorf("failed to update admission: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return out, fmt.Errorf("failed to read rows affected: %w", err)
	} else if n == 0 {
		// Record changed state between our read and write
		return out, fmt.Errorf("admission for user %s moved concurrently: %w", userID, models.ErrConflict)
	}

	if err := tx.Commit(); err != nil {
		return out, fmt.Errorf("failed to commit transaction: %w", err)
	}

	rec.Status = next
	out.Record = rec
	return out, nil
}

// DeclineAdmission transitions a record to declined from any state except
// declined itself.
func (s *SQLiteStore) DeclineAdmission(ctx context.Context, matchID, userID string) (models.AdmissionRecord, error) {
	rec, err := s.GetAdmission(ctx, matchID, userID)
	if err != nil {
		return rec, err
	}
	if !rec.Status.CanDecline() {
		return rec, fmt.Errorf("decline from %s: %w", rec.Status, models.ErrInvalidTransition)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE admission_records SET status = ? WHERE match_id = ? AND user_id = ?",
		models.AdmissionDeclined, matchID, userID,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to decline admission: %w", err)
	}

	rec.Status = models.AdmissionDeclined
	return rec, nil
}

// CancelAdmission withdraws an approved player and promotes the oldest
// waitlisted record, both in one transaction. The freed slot guarantees the
// promotion cannot overrun capacity.
func (s *SQLiteStore) CancelAdmission(ctx context.Context, matchID, userID string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rec, err := getAdmissionTx(ctx, tx, matchID, userID)
	if err != nil {
		return "", err
	}
	if rec.Status != models.AdmissionApproved {
		return "", fmt.Errorf("cancel from %s: %w", rec.Status, models.ErrInvalidTransition)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE admission_records SET status = ? WHERE match_id = ? AND user_id = ?",
		models.AdmissionDeclined, matchID, userID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to cancel admission: %w", err)
	}

	// FIFO promotion: oldest waitlisted request takes the freed slot.
	// rowid breaks ties between same-second requests in insert order.
	var promoted string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM admission_records
		 WHERE match_id = ? AND status = ?
		 ORDER BY requested_at ASC, rowid ASC LIMIT 1`,
		matchID, models.AdmissionWaitlist,
	).Scan(&promoted)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to find waitlist head: %w", err)
	}

	if promoted != "" {
		_, err = tx.ExecContext(ctx,
			"UPDATE admission_records SET status = ? WHERE match_id = ? AND user_id = ?",
			models.AdmissionApproved, matchID, promoted,
		)
		if err != nil {
			return "", fmt.Errorf("failed to promote from waitlist: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return promoted, nil
}

// ListApproved returns approved records ordered by requested_at ascending.
func (s *SQLiteStore) ListApproved(ctx context.Context, matchID string) ([]models.AdmissionRecord, error) {
	return s.listAdmissions(ctx, matchID, string(models.AdmissionApproved))
}

// ListAdmissions returns all admission records for a match ordered by
// requested_at ascending.
func (s *SQLiteStore) ListAdmissions(ctx context.Context, matchID string) ([]models.AdmissionRecord, error) {
	return s.listAdmissions(ctx, matchID, "")
}

func (s *SQLiteStore) listAdmissions(ctx context.Context, matchID, status string) ([]models.AdmissionRecord, error) {
	query := `SELECT match_id, user_id, status, requested_at, team_number
	          FROM admission_records WHERE match_id = ?`
	args := []interface{}{matchID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY requested_at ASC, rowid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	defer rows.Close()

	var records []models.AdmissionRecord
	for rows.Next() {
		var rec models.AdmissionRecord
		if err := rows.Scan(&rec.MatchID, &rec.UserID, &rec.Status, &rec.RequestedAt, &rec.TeamNumber); err != nil {
			return nil, fmt.Errorf("failed to scan admission: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admissions: %w", err)
	}

	return records, nil
}

func getAdmissionTx(ctx context.Context, tx *sql.Tx, matchID, userID string) (models.AdmissionRecord, error) {
	var rec models.AdmissionRecord
	err := tx.QueryRowContext(ctx,
		`SELECT match_id, user_id, status, requested_at, team_number
		 FROM admission_records WHERE match_id = ? AND user_id = ?`,
		matchID, userID,
	).Scan(&rec.MatchID, &rec.UserID, &rec.Status, &rec.RequestedAt, &rec.TeamNumber)
	if err == sql.ErrNoRows {
		return rec, fmt.Errorf("admission for user %s in match %s: %w", userID, matchID, models.ErrNotFound)
	}
	if err != nil {
		return rec, fmt.Errorf("failed to get admission: %w", err)
	}

	return rec, nil
}
