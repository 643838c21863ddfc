package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

// ApplicationStorage implements interfaces.ApplicationStorage using SQLite
type ApplicationStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewApplicationStorage creates a new application storage instance
func NewApplicationStorage(db *SQLiteDB, logger arbor.ILogger) *ApplicationStorage {
	return &ApplicationStorage{db: db, logger: logger}
}

// MarkJobApplied records an application for a job, resetting the status to
// applied if one already exists. The job must be present in the cache.
func (s *ApplicationStorage) MarkJobApplied(ctx context.Context, jobID string, notes string) (*models.Application, error) {
	var exists int
	err := s.db.DB().QueryRowContext(ctx,
		"SELECT 1 FROM jobs WHERE job_id = ?", jobID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up job %s: %w", jobID, err)
	}

	now := nowISO()
	_, err = s.db.DB().ExecContext(ctx, `
		INSERT INTO applications (job_id, applied_at, status, notes, created_at, updated_at)
		VALUES (?, ?, 'applied', ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			applied_at = excluded.applied_at,
			status = 'applied',
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		jobID, now, notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark job %s applied: %w", jobID, err)
	}

	s.logger.Info().Str("job_id", jobID).Msg("Marked job as applied")
	return s.GetApplication(ctx, jobID)
}

// UpdateApplicationStatus moves an existing application to a new status
func (s *ApplicationStorage) UpdateApplicationStatus(ctx context.Context, jobID string, status models.ApplicationStatus, notes string) (*models.Application, error) {
	if !models.ValidApplicationStatus(status) {
		return nil, fmt.Errorf("invalid application status %q", status)
	}

	result, err := s.db.DB().ExecContext(ctx, `
		UPDATE applications SET status = ?, notes = ?, updated_at = ?
		WHERE job_id = ?`,
		string(status), notes, nowISO(), jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to update application for job %s: %w", jobID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("no application found for job %s", jobID)
	}

	s.logger.Info().Str("job_id", jobID).Str("status", string(status)).Msg("Updated application status")
	return s.GetApplication(ctx, jobID)
}

// GetApplication returns the application for a job, or nil if none exists
func (s *ApplicationStorage) GetApplication(ctx context.Context, jobID string) (*models.Application, error) {
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT a.id, a.job_id, a.applied_at, a.status, a.notes, a.created_at, a.updated_at,
			j.title, j.company, j.location
		FROM applications a
		JOIN jobs j ON a.job_id = j.job_id
		WHERE a.job_id = ?`, jobID)

	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return app, err
}

// ListApplications returns applications newest-first, optionally filtered
// by status
func (s *ApplicationStorage) ListApplications(ctx context.Context, status models.ApplicationStatus) ([]*models.Application, error) {
	query := `
		SELECT a.id, a.job_id, a.applied_at, a.status, a.notes, a.created_at, a.updated_at,
			j.title, j.company, j.location
		FROM applications a
		JOIN jobs j ON a.job_id = j.job_id`

	var params []interface{}
	if status != "" {
		query += " WHERE a.status = ?"
		params = append(params, string(status))
	}
	query += " ORDER BY a.applied_at DESC"

	rows, err := s.db.DB().QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app   models.Application
		notes sql.NullString
	)
	err := row.Scan(&app.ID, &app.JobID, &app.AppliedAt, &app.Status, &notes,
		&app.CreatedAt, &app.UpdatedAt, &app.Title, &app.Company, &app.Location)
	if err != nil {
		return nil, err
	}
	app.Notes = notes.String
	return &app, nil
}
