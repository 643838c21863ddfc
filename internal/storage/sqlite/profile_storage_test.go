package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

func TestUpsertProfile_CreateAndUpdate(t *testing.T) {
	db := newTestDB(t)
	storage := NewProfileStorage(db, arbor.NewLogger())
	ctx := context.Background()

	created, err := storage.UpsertProfile(ctx, &models.Profile{
		Name:     "ml-sf",
		Location: "San Francisco, CA",
		Keywords: "ML Engineer",
		Enabled:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotZero(t, created.ID)

	// Defaults filled when omitted
	assert.Equal(t, 25, created.Distance)
	assert.Equal(t, "r7200", created.TimeFilter)
	assert.Equal(t, 7200, created.RefreshInterval)

	// Same name updates in place, ID is stable
	updated, err := storage.UpsertProfile(ctx, &models.Profile{
		Name:            "ml-sf",
		Location:        "Remote",
		Keywords:        "Staff ML Engineer",
		Distance:        50,
		RefreshInterval: 3600,
		Enabled:         false,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Remote", updated.Location)
	assert.Equal(t, 50, updated.Distance)
	assert.Equal(t, 3600, updated.RefreshInterval)
	assert.False(t, updated.Enabled)
}

func TestUpsertProfile_EnforcesRefreshFloor(t *testing.T) {
	db := newTestDB(t)
	storage := NewProfileStorage(db, arbor.NewLogger())
	ctx := context.Background()

	created, err := storage.UpsertProfile(ctx, &models.Profile{
		Name:            "eager",
		Location:        "NYC",
		Keywords:        "Go",
		RefreshInterval: 60,
		Enabled:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MinRefreshIntervalSeconds, created.RefreshInterval)

	// The floor itself passes through unchanged
	updated, err := storage.UpsertProfile(ctx, &models.Profile{
		Name:            "eager",
		Location:        "NYC",
		Keywords:        "Go",
		RefreshInterval: models.MinRefreshIntervalSeconds,
		Enabled:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MinRefreshIntervalSeconds, updated.RefreshInterval)
}

func TestUpsertProfile_RequiresName(t *testing.T) {
	db := newTestDB(t)
	storage := NewProfileStorage(db, arbor.NewLogger())

	_, err := storage.UpsertProfile(context.Background(), &models.Profile{Location: "NYC"})
	assert.Error(t, err)
}

func TestGetProfileByName(t *testing.T) {
	db := newTestDB(t)
	storage := NewProfileStorage(db, arbor.NewLogger())
	ctx := context.Background()

	_, err := storage.UpsertProfile(ctx, &models.Profile{Name: "alpha", Location: "NYC", Keywords: "Go", Enabled: true})
	require.NoError(t, err)

	got, err := storage.GetProfileByName(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alpha", got.Name)

	missing, err := storage.GetProfileByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListProfiles_EnabledOnly(t *testing.T) {
	db := newTestDB(t)
	storage := NewProfileStorage(db, arbor.NewLogger())
	ctx := context.Background()

	_, err := storage.UpsertProfile(ctx, &models.Profile{Name: "on", Location: "NYC", Keywords: "Go", Enabled: true})
	require.NoError(t, err)
	_, err = storage.UpsertProfile(ctx, &models.Profile{Name: "off", Location: "NYC", Keywords: "Go", Enabled: false})
	require.NoError(t, err)

	all, err := storage.ListProfiles(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	enabled, err := storage.ListProfiles(ctx, true)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "on", enabled[0].Name)
}

func TestDeleteProfile_SoftDisables(t *testing.T) {
	db := newTestDB(t)
	storage := NewProfileStorage(db, arbor.NewLogger())
	ctx := context.Background()

	p, err := storage.UpsertProfile(ctx, &models.Profile{Name: "alpha", Location: "NYC", Keywords: "Go", Enabled: true})
	require.NoError(t, err)

	require.NoError(t, storage.DeleteProfile(ctx, p.ID, false))

	got, err := storage.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Enabled)
}

func TestDeleteProfile_HardRemovesRowAndDetachesJobs(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	profiles := NewProfileStorage(db, logger)
	jobs := NewJobStorage(db, logger)
	ctx := context.Background()

	p, err := profiles.UpsertProfile(ctx, &models.Profile{Name: "alpha", Location: "NYC", Keywords: "Go", Enabled: true})
	require.NoError(t, err)

	job := testJob("1", "Engineer", "Acme")
	job.ProfileID = &p.ID
	seedJobs(t, db, job)

	require.NoError(t, profiles.DeleteProfile(ctx, p.ID, true))

	gone, err := profiles.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// ON DELETE SET NULL keeps the job with a detached profile reference
	got, err := jobs.GetJob(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.ProfileID)
}

func TestUpdateProfileLastRun(t *testing.T) {
	db := newTestDB(t)
	storage := NewProfileStorage(db, arbor.NewLogger())
	ctx := context.Background()

	p, err := storage.UpsertProfile(ctx, &models.Profile{Name: "alpha", Location: "NYC", Keywords: "Go", Enabled: true})
	require.NoError(t, err)
	assert.Empty(t, p.LastScrapedAt)

	require.NoError(t, storage.UpdateProfileLastRun(ctx, p.ID))

	got, err := storage.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.LastScrapedAt)
}

func TestSeedDefaultProfile(t *testing.T) {
	db := newTestDB(t)
	storage := NewProfileStorage(db, arbor.NewLogger())
	ctx := context.Background()

	seeded, err := storage.SeedDefaultProfile(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	// Second call is a no-op on a populated table
	seeded, err = storage.SeedDefaultProfile(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	profiles, err := storage.ListProfiles(ctx, true)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "default", profiles[0].Name)
}
