package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

func TestMarkJobApplied(t *testing.T) {
	db := newTestDB(t)
	storage := NewApplicationStorage(db, arbor.NewLogger())
	ctx := context.Background()

	seedJobs(t, db, testJob("1", "ML Engineer", "Acme AI"))

	app, err := storage.MarkJobApplied(ctx, "1", "referred by a friend")
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.Equal(t, "1", app.JobID)
	assert.Equal(t, models.ApplicationApplied, app.Status)
	assert.Equal(t, "referred by a friend", app.Notes)
	assert.NotEmpty(t, app.AppliedAt)
	assert.Equal(t, "ML Engineer", app.Title)
	assert.Equal(t, "Acme AI", app.Company)
}

func TestMarkJobApplied_UnknownJob(t *testing.T) {
	db := newTestDB(t)
	storage := NewApplicationStorage(db, arbor.NewLogger())

	_, err := storage.MarkJobApplied(context.Background(), "missing", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMarkJobApplied_ReapplyResetsStatus(t *testing.T) {
	db := newTestDB(t)
	storage := NewApplicationStorage(db, arbor.NewLogger())
	ctx := context.Background()

	seedJobs(t, db, testJob("1", "Engineer", "Acme"))

	_, err := storage.MarkJobApplied(ctx, "1", "first attempt")
	require.NoError(t, err)
	_, err = storage.UpdateApplicationStatus(ctx, "1", models.ApplicationRejected, "")
	require.NoError(t, err)

	app, err := storage.MarkJobApplied(ctx, "1", "second attempt")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApplied, app.Status)
	assert.Equal(t, "second attempt", app.Notes)

	// Still one application row per job
	apps, err := storage.ListApplications(ctx, "")
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestUpdateApplicationStatus(t *testing.T) {
	db := newTestDB(t)
	storage := NewApplicationStorage(db, arbor.NewLogger())
	ctx := context.Background()

	seedJobs(t, db, testJob("1", "Engineer", "Acme"))
	_, err := storage.MarkJobApplied(ctx, "1", "")
	require.NoError(t, err)

	app, err := storage.UpdateApplicationStatus(ctx, "1", models.ApplicationInterviewing, "phone screen booked")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationInterviewing, app.Status)
	assert.Equal(t, "phone screen booked", app.Notes)
}

func TestUpdateApplicationStatus_Invalid(t *testing.T) {
	db := newTestDB(t)
	storage := NewApplicationStorage(db, arbor.NewLogger())
	ctx := context.Background()

	_, err := storage.UpdateApplicationStatus(ctx, "1", "bogus", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid application status")

	// not_applied is query-only
	_, err = storage.UpdateApplicationStatus(ctx, "1", models.ApplicationNotApplied, "")
	assert.Error(t, err)
}

func TestUpdateApplicationStatus_NoApplication(t *testing.T) {
	db := newTestDB(t)
	storage := NewApplicationStorage(db, arbor.NewLogger())

	seedJobs(t, db, testJob("1", "Engineer", "Acme"))

	_, err := storage.UpdateApplicationStatus(context.Background(), "1", models.ApplicationRejected, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no application found")
}

func TestGetApplication_NoneReturnsNil(t *testing.T) {
	db := newTestDB(t)
	storage := NewApplicationStorage(db, arbor.NewLogger())

	app, err := storage.GetApplication(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, app)
}

func TestListApplications_StatusFilter(t *testing.T) {
	db := newTestDB(t)
	storage := NewApplicationStorage(db, arbor.NewLogger())
	ctx := context.Background()

	seedJobs(t, db,
		testJob("1", "Engineer", "Acme"),
		testJob("2", "Engineer", "Acme"),
		testJob("3", "Engineer", "Acme"),
	)
	for _, id := range []string{"1", "2", "3"} {
		_, err := storage.MarkJobApplied(ctx, id, "")
		require.NoError(t, err)
	}
	_, err := storage.UpdateApplicationStatus(ctx, "2", models.ApplicationRejected, "")
	require.NoError(t, err)

	all, err := storage.ListApplications(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rejected, err := storage.ListApplications(ctx, models.ApplicationRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "2", rejected[0].JobID)
}
