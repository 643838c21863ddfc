package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/common"
	"github.com/ternarybob/laboro/internal/models"
)

// newTestDB opens a throwaway database with the full schema applied
func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()

	db, err := NewSQLiteDB(arbor.NewLogger(), &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		CacheSizeMB:   16,
		WALMode:       true,
		BusyTimeoutMS: 5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// isoHoursAgo formats a UTC timestamp n hours in the past
func isoHoursAgo(hours int) string {
	return time.Now().UTC().Add(-time.Duration(hours) * time.Hour).Format(time.RFC3339)
}

// testJob builds a minimal persistable job record
func testJob(jobID, title, company string) *models.JobDetail {
	return &models.JobDetail{
		JobID:          jobID,
		Title:          title,
		Company:        company,
		Location:       "San Francisco, CA",
		PostedDate:     "2 days ago",
		PostedDateISO:  isoHoursAgo(48),
		RawDescription: "<p>Build distributed systems in Go.</p>",
		Source:         models.SourceGuestAPI,
	}
}

// seedJobs inserts jobs and fails the test on error
func seedJobs(t *testing.T, db *SQLiteDB, jobs ...*models.JobDetail) {
	t.Helper()
	storage := NewJobStorage(db, arbor.NewLogger())
	count, err := storage.UpsertJobs(context.Background(), jobs)
	require.NoError(t, err)
	require.Equal(t, len(jobs), count)
}
