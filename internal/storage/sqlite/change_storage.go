package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

// ChangeStorage implements interfaces.ChangeStorage using SQLite
type ChangeStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewChangeStorage creates a new change log storage instance
func NewChangeStorage(db *SQLiteDB, logger arbor.ILogger) *ChangeStorage {
	return &ChangeStorage{db: db, logger: logger}
}

// RecordJobChange appends one field change to the audit log
func (s *ChangeStorage) RecordJobChange(ctx context.Context, change *models.JobChange) error {
	if change.ChangedAt == "" {
		change.ChangedAt = nowISO()
	}

	_, err := s.db.DB().ExecContext(ctx, `
		INSERT INTO job_changes (job_id, changed_at, field_name, old_value, new_value)
		VALUES (?, ?, ?, ?, ?)`,
		change.JobID, change.ChangedAt, change.FieldName, change.OldValue, change.NewValue)
	if err != nil {
		return fmt.Errorf("failed to record change for job %s: %w", change.JobID, err)
	}

	s.logger.Debug().Str("job_id", change.JobID).Str("field", change.FieldName).Msg("Recorded job change")
	return nil
}

// GetJobChanges returns recent changes newest-first, joined with job title
// and company. jobID narrows to a single job when non-empty.
func (s *ChangeStorage) GetJobChanges(ctx context.Context, jobID string, sinceHours int, limit int) ([]*models.JobChange, error) {
	if sinceHours <= 0 {
		sinceHours = 24
	}
	if limit <= 0 {
		limit = 100
	}
	cutoff := time.Now().UTC().Add(-time.Duration(sinceHours) * time.Hour).Format(time.RFC3339)

	query := `
		SELECT jc.id, jc.job_id, jc.changed_at, jc.field_name, jc.old_value, jc.new_value,
			j.title, j.company
		FROM job_changes jc
		JOIN jobs j ON jc.job_id = j.job_id
		WHERE jc.changed_at >= ?`
	params := []interface{}{cutoff}

	if jobID != "" {
		query += " AND jc.job_id = ?"
		params = append(params, jobID)
	}
	query += " ORDER BY jc.changed_at DESC LIMIT ?"
	params = append(params, limit)

	rows, err := s.db.DB().QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query job changes: %w", err)
	}
	defer rows.Close()

	var changes []*models.JobChange
	for rows.Next() {
		var c models.JobChange
		if err := rows.Scan(&c.ID, &c.JobID, &c.ChangedAt, &c.FieldName,
			&c.OldValue, &c.NewValue, &c.Title, &c.Company); err != nil {
			return nil, err
		}
		changes = append(changes, &c)
	}
	return changes, rows.Err()
}
