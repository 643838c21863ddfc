package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

func TestGetCacheAnalytics_EmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	storage := NewAnalyticsStorage(db, arbor.NewLogger())

	analytics, err := storage.GetCacheAnalytics(context.Background())
	require.NoError(t, err)

	assert.Zero(t, analytics.TotalJobs)
	assert.Zero(t, analytics.JobsByStatus["not_applied"])
	assert.Empty(t, analytics.TopCompanies)
	assert.Empty(t, analytics.Profiles)
	assert.Zero(t, analytics.Enrichment.TotalCompanies)
}

func TestGetCacheAnalytics(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	apps := NewApplicationStorage(db, logger)
	profiles := NewProfileStorage(db, logger)
	companies := NewCompanyStorage(db, logger)
	analytics := NewAnalyticsStorage(db, logger)
	ctx := context.Background()

	profile, err := profiles.UpsertProfile(ctx, &models.Profile{
		Name: "ml-sf", Location: "SF", Keywords: "ML", Enabled: true,
	})
	require.NoError(t, err)
	require.NoError(t, profiles.UpdateProfileLastRun(ctx, profile.ID))

	recent := testJob("1", "ML Engineer", "Acme AI")
	recent.ProfileID = &profile.ID
	old := testJob("2", "ML Engineer", "Acme AI")
	old.ScrapedAt = isoHoursAgo(40 * 24)
	old.LastSeen = old.ScrapedAt
	other := testJob("3", "Data Engineer", "Initech")
	other.Location = "Austin, TX"
	seedJobs(t, db, recent, old, other)

	_, err = apps.MarkJobApplied(ctx, "1", "")
	require.NoError(t, err)
	require.NoError(t, companies.UpsertCompanyEnrichment(ctx, &models.CompanyEnrichment{CompanyName: "Acme AI"}))

	got, err := analytics.GetCacheAnalytics(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), got.TotalJobs)
	assert.Equal(t, int64(2), got.JobsByAge.Last24Hours)
	assert.Equal(t, int64(1), got.JobsByAge.Older)

	assert.Equal(t, int64(2), got.JobsByStatus["not_applied"])
	assert.Equal(t, int64(1), got.JobsByStatus["applied"])

	require.NotEmpty(t, got.TopCompanies)
	assert.Equal(t, "Acme AI", got.TopCompanies[0].Name)
	assert.Equal(t, int64(2), got.TopCompanies[0].Count)

	require.Len(t, got.Profiles, 1)
	assert.Equal(t, "ml-sf", got.Profiles[0].Name)
	assert.Equal(t, int64(1), got.Profiles[0].JobCount)
	assert.NotEmpty(t, got.Profiles[0].LastScrapedAt)
	assert.NotEmpty(t, got.Profiles[0].NextScrapeAt)

	assert.Equal(t, int64(1), got.Enrichment.TotalCompanies)
	assert.Zero(t, got.Enrichment.NeedingRefresh)

	assert.Greater(t, got.DatabaseSizeMB, 0.0)
	assert.NotEmpty(t, got.OldestJobAt)
	assert.NotEmpty(t, got.NewestJobAt)
	assert.LessOrEqual(t, got.OldestJobAt, got.NewestJobAt)
}
