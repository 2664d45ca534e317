// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/pelada/matchday/internal/models"
	"github.com/pelada/matchday/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go on the DSN so every pooled connection gets them, not just
	// the one db.Exec happens to borrow. busy_timeout makes writers queue
	// instead of failing immediately when the file is busy; _txlock makes
	// transactions take the write lock up front.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateMatch persists a new match to the database.
func (s *SQLiteStore) CreateMatch(ctx context.Context, match *models.Match) error {
	// Generate ID if not set
	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	if match.CreatedAt == 0 {
		match.CreatedAt = time.Now().Unix()
	}
	if match.Status == "" {
		match.Status = models.MatchScheduled
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (id, group_id, organizer_id, scheduled_at, location, capacity, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		match.ID, match.GroupID, match.OrganizerID, match.ScheduledAt,
		match.Location, match.Capacity, match.Status, match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	return nil
}

// GetMatch retrieves a match by ID.
func (s *SQLiteStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match := &models.Match{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, organizer_id, scheduled_at, location, capacity, status, created_at
		 FROM matches WHERE id = ?`,
		matchID,
	).Scan(&match.ID, &match.GroupID, &match.OrganizerID, &match.ScheduledAt,
		&match.Location, &match.Capacity, &match.Status, &match.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("match %s: %w", matchID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

// UpsertProfile creates or updates a user profile.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.CreatedAt == 0 {
		profile.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, email, password_hash, position, skill_rating, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name = excluded.name,
		     position = excluded.position,
		     skill_rating = excluded.skill_rating`,
		profile.ID, profile.Name, profile.Email, profile.PasswordHash,
		profile.Position, profile.SkillRating, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

// GetProfile retrieves a profile by user ID.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, position, skill_rating, created_at
		 FROM profiles WHERE id = ?`,
		userID,
	).Scan(&profile.ID, &profile.Name, &profile.Email, &profile.PasswordHash,
		&profile.Position, &profile.SkillRating, &profile.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// GetProfileByEmail retrieves a profile by email.
// Returns nil without error when no account exists for the email.
func (s *SQLiteStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, position, skill_rating, created_at
		 FROM profiles WHERE email = ?`,
		email,
	).Scan(&profile.ID, &profile.Name, &profile.Email, &profile.PasswordHash,
		&profile.Position, &profile.SkillRating, &profile.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // account not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}

	return profile, nil
}

// getProfilesByIDs retrieves multiple profiles keyed by user ID.
// Missing users are omitted from the result.
func (s *SQLiteStore) getProfilesByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error) {
	if len(ids) == 0 {
		return make(map[string]*models.Profile), nil
	}

	query := `
		SELECT id, name, email, password_hash, position, skill_rating, created_at
		FROM profiles
		WHERE id IN (?` + repeatPlaceholder(len(ids)-1) + `)`

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles by IDs: %w", err)
	}
	defer rows.Close()

	profiles := make(map[string]*models.Profile)
	for rows.Next() {
		profile := &models.Profile{}
		if err := rows.Scan(&profile.ID, &profile.Name, &profile.Email, &profile.PasswordHash,
			&profile.Position, &profile.SkillRating, &profile.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles[profile.ID] = profile
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += ", ?"
	}
	return result
}
