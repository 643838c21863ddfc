package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

// ProfileStorage implements interfaces.ProfileStorage using SQLite
type ProfileStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewProfileStorage creates a new profile storage instance
func NewProfileStorage(db *SQLiteDB, logger arbor.ILogger) *ProfileStorage {
	return &ProfileStorage{db: db, logger: logger}
}

const profileColumns = `id, name, location, keywords, distance, time_filter,
	refresh_interval, enabled, last_scraped_at, created_at, updated_at`

// UpsertProfile inserts a profile or updates an existing one matched by
// name. Returns the stored profile with its assigned ID.
func (s *ProfileStorage) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if profile.Name == "" {
		return nil, fmt.Errorf("profile name is required")
	}
	if profile.Distance <= 0 {
		profile.Distance = 25
	}
	if profile.TimeFilter == "" {
		profile.TimeFilter = "r7200"
	}
	if profile.RefreshInterval <= 0 {
		profile.RefreshInterval = 7200
	}
	if profile.RefreshInterval < models.MinRefreshIntervalSeconds {
		profile.RefreshInterval = models.MinRefreshIntervalSeconds
	}

	now := time.Now().UTC()

	var existingID int64
	err := s.db.DB().QueryRowContext(ctx,
		"SELECT id FROM profiles WHERE name = ?", profile.Name).Scan(&existingID)

	switch {
	case err == sql.ErrNoRows:
		result, err := s.db.DB().ExecContext(ctx, `
			INSERT INTO profiles (name, location, keywords, distance, time_filter,
				refresh_interval, enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			profile.Name, profile.Location, profile.Keywords, profile.Distance,
			profile.TimeFilter, profile.RefreshInterval, profile.Enabled,
			now.Format(time.RFC3339), now.Format(time.RFC3339))
		if err != nil {
			return nil, fmt.Errorf("failed to insert profile: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}
		s.logger.Info().Int64("profile_id", id).Str("name", profile.Name).Msg("Created profile")
		return s.GetProfile(ctx, id)

	case err != nil:
		return nil, fmt.Errorf("failed to look up profile: %w", err)

	default:
		_, err := s.db.DB().ExecContext(ctx, `
			UPDATE profiles SET location = ?, keywords = ?, distance = ?,
				time_filter = ?, refresh_interval = ?, enabled = ?, updated_at = ?
			WHERE id = ?`,
			profile.Location, profile.Keywords, profile.Distance,
			profile.TimeFilter, profile.RefreshInterval, profile.Enabled,
			now.Format(time.RFC3339), existingID)
		if err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		s.logger.Info().Int64("profile_id", existingID).Str("name", profile.Name).Msg("Updated profile")
		return s.GetProfile(ctx, existingID)
	}
}

// GetProfile retrieves a profile by ID, or nil if not found
func (s *ProfileStorage) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	row := s.db.DB().QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = ?", id)
	return scanProfile(row)
}

// GetProfileByName retrieves a profile by its unique name, or nil if not found
func (s *ProfileStorage) GetProfileByName(ctx context.Context, name string) (*models.Profile, error) {
	row := s.db.DB().QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE name = ?", name)
	return scanProfile(row)
}

// ListProfiles returns profiles in creation order
func (s *ProfileStorage) ListProfiles(ctx context.Context, enabledOnly bool) ([]*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles"
	if enabledOnly {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// SetProfileEnabled flips the enabled flag. The scheduler picks the change
// up on its next reload pass.
func (s *ProfileStorage) SetProfileEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := s.db.DB().ExecContext(ctx,
		"UPDATE profiles SET enabled = ?, updated_at = ? WHERE id = ?",
		enabled, nowISO(), id)
	if err != nil {
		return fmt.Errorf("failed to set profile enabled: %w", err)
	}
	s.logger.Info().Int64("profile_id", id).Bool("enabled", enabled).Msg("Profile enabled flag updated")
	return nil
}

// DeleteProfile disables the profile by default so its job history keeps a
// valid reference. Hard delete removes the row; jobs keep profile_id NULL
// via the foreign key.
func (s *ProfileStorage) DeleteProfile(ctx context.Context, id int64, hard bool) error {
	if hard {
		if _, err := s.db.DB().ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		s.logger.Info().Int64("profile_id", id).Msg("Hard deleted profile")
		return nil
	}
	return s.SetProfileEnabled(ctx, id, false)
}

// UpdateProfileLastRun stamps last_scraped_at with the current time
func (s *ProfileStorage) UpdateProfileLastRun(ctx context.Context, id int64) error {
	now := nowISO()
	_, err := s.db.DB().ExecContext(ctx,
		"UPDATE profiles SET last_scraped_at = ?, updated_at = ? WHERE id = ?",
		now, now, id)
	if err != nil {
		return fmt.Errorf("failed to update profile last run: %w", err)
	}
	return nil
}

// SeedDefaultProfile inserts the built-in default profile when the table is
// empty, so a fresh install starts scraping without any setup.
func (s *ProfileStorage) SeedDefaultProfile(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count profiles: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	seeded, err := s.UpsertProfile(ctx, models.DefaultProfile())
	if err != nil {
		return false, fmt.Errorf("failed to seed default profile: %w", err)
	}
	s.logger.Info().Int64("profile_id", seeded.ID).Msg("Seeded default profile")
	return true, nil
}

// scanProfile scans a profile row, returning nil for sql.ErrNoRows
func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		profile       models.Profile
		lastScrapedAt sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := row.Scan(&profile.ID, &profile.Name, &profile.Location, &profile.Keywords,
		&profile.Distance, &profile.TimeFilter, &profile.RefreshInterval,
		&profile.Enabled, &lastScrapedAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	profile.LastScrapedAt = lastScrapedAt.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		profile.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		profile.UpdatedAt = t
	}
	return &profile, nil
}
