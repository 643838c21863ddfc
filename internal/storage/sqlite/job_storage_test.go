package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

func TestUpsertJobs_FillsDerivedColumns(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	job := testJob("100", "ML Engineer", "Acme AI, Inc.")
	seedJobs(t, db, job)

	got, err := storage.GetJob(context.Background(), "100")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "acme ai", got.NormalizedCompanyName)
	assert.NotEmpty(t, got.LastSeen)
	assert.Equal(t, got.LastSeen, got.ScrapedAt)
	assert.Equal(t, models.SourceGuestAPI, got.Source)
}

func TestUpsertJobs_ReplaceIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	seedJobs(t, db, testJob("100", "ML Engineer", "Acme"))

	updated := testJob("100", "Senior ML Engineer", "Acme")
	seedJobs(t, db, updated)

	got, err := storage.GetJob(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "Senior ML Engineer", got.Title)

	count, err := storage.CountJobs(ctx, &models.JobQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUpsertJobs_FTSStaysUniqueAfterReplace(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	// Replacing a row fires the FTS delete trigger before the insert
	// trigger; the index must not accumulate stale copies.
	for i := 0; i < 3; i++ {
		seedJobs(t, db, testJob("100", "Kubernetes Platform Engineer", "Acme"))
	}

	results, err := storage.QueryJobs(ctx, &models.JobQuery{Keywords: "kubernetes"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	var ftsRows int
	require.NoError(t, db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jobs_fts WHERE jobs_fts MATCH 'kubernetes'").Scan(&ftsRows))
	assert.Equal(t, 1, ftsRows)

	// The external-content index must still agree with the jobs table;
	// this errors if the replace path skipped the delete trigger.
	_, err = db.DB().ExecContext(ctx, "INSERT INTO jobs_fts(jobs_fts) VALUES('integrity-check')")
	require.NoError(t, err)
}

func TestGetJob_NotFound(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	got, err := storage.GetJob(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQueryJobs_CompanyFilterIgnoresSuffix(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	seedJobs(t, db,
		testJob("1", "Engineer", "Acme AI, Inc."),
		testJob("2", "Engineer", "Other Corp"),
	)

	results, err := storage.QueryJobs(context.Background(), &models.JobQuery{Company: "Acme AI Inc"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].JobID)
}

func TestQueryJobs_LocationFilterCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	nyc := testJob("1", "Engineer", "Acme")
	nyc.Location = "New York, NY"
	seedJobs(t, db, nyc, testJob("2", "Engineer", "Acme"))

	results, err := storage.QueryJobs(context.Background(), &models.JobQuery{Location: "new york"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].JobID)
}

func TestQueryJobs_KeywordsMatchDescription(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	rust := testJob("1", "Systems Engineer", "Acme")
	rust.RawDescription = "<p>Rust and low-level networking.</p>"
	seedJobs(t, db, rust, testJob("2", "Frontend Engineer", "Acme"))

	results, err := storage.QueryJobs(context.Background(), &models.JobQuery{Keywords: "rust"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].JobID)
}

func TestQueryJobs_PostedAfterHours(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	fresh := testJob("1", "Engineer", "Acme")
	fresh.PostedDateISO = isoHoursAgo(2)
	stale := testJob("2", "Engineer", "Acme")
	stale.PostedDateISO = isoHoursAgo(100)
	seedJobs(t, db, fresh, stale)

	results, err := storage.QueryJobs(context.Background(), &models.JobQuery{PostedAfterHours: 24})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].JobID)
}

func TestQueryJobs_BooleanFilters(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	remote := testJob("1", "Engineer", "Acme")
	remote.RemoteEligible = true
	visa := testJob("2", "Engineer", "Acme")
	visa.VisaSponsorship = true
	seedJobs(t, db, remote, visa, testJob("3", "Engineer", "Acme"))

	results, err := storage.QueryJobs(context.Background(), &models.JobQuery{RemoteOnly: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].JobID)

	results, err = storage.QueryJobs(context.Background(), &models.JobQuery{VisaSponsorship: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].JobID)
}

func TestQueryJobs_ApplicationStatusFilter(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	jobs := NewJobStorage(db, logger)
	apps := NewApplicationStorage(db, logger)
	ctx := context.Background()

	seedJobs(t, db, testJob("1", "Engineer", "Acme"), testJob("2", "Engineer", "Acme"))
	_, err := apps.MarkJobApplied(ctx, "1", "")
	require.NoError(t, err)

	applied, err := jobs.QueryJobs(ctx, &models.JobQuery{ApplicationStatus: models.ApplicationApplied})
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "1", applied[0].JobID)
	assert.Equal(t, "applied", applied[0].ApplicationStatusValue)

	notApplied, err := jobs.QueryJobs(ctx, &models.JobQuery{ApplicationStatus: models.ApplicationNotApplied})
	require.NoError(t, err)
	require.Len(t, notApplied, 1)
	assert.Equal(t, "2", notApplied[0].JobID)
}

func TestQueryJobs_SortAndPagination(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	oldest := testJob("1", "Engineer", "Acme")
	oldest.PostedDateISO = isoHoursAgo(72)
	middle := testJob("2", "Engineer", "Acme")
	middle.PostedDateISO = isoHoursAgo(48)
	newest := testJob("3", "Engineer", "Acme")
	newest.PostedDateISO = isoHoursAgo(1)
	seedJobs(t, db, oldest, middle, newest)

	results, err := storage.QueryJobs(ctx, &models.JobQuery{SortBy: models.SortPostedDate})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "3", results[0].JobID)
	assert.Equal(t, "1", results[2].JobID)

	page, err := storage.QueryJobs(ctx, &models.JobQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "2", page[0].JobID)
}

func TestQueryJobs_SortByApplicants(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	few := testJob("1", "Engineer", "Acme")
	few.NumberOfApplicants = "12"
	many := testJob("2", "Engineer", "Acme")
	many.NumberOfApplicants = "200"
	seedJobs(t, db, few, many)

	results, err := storage.QueryJobs(context.Background(), &models.JobQuery{SortBy: models.SortApplicants})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "2", results[0].JobID)
}

func TestCountJobs_IgnoresLimit(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	seedJobs(t, db,
		testJob("1", "Engineer", "Acme"),
		testJob("2", "Engineer", "Acme"),
		testJob("3", "Engineer", "Acme"),
	)

	count, err := storage.CountJobs(context.Background(), &models.JobQuery{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestDeleteOldJobs(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	old := testJob("1", "Engineer", "Acme")
	old.ScrapedAt = isoHoursAgo(100 * 24)
	old.LastSeen = old.ScrapedAt
	seedJobs(t, db, old, testJob("2", "Engineer", "Acme"))

	deleted, err := storage.DeleteOldJobs(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := storage.CountJobs(ctx, &models.JobQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)
}

func TestDeleteOldJobs_CascadesAndCleansFTS(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	jobs := NewJobStorage(db, logger)
	apps := NewApplicationStorage(db, logger)
	ctx := context.Background()

	old := testJob("1", "Graphql Specialist", "Acme")
	old.ScrapedAt = isoHoursAgo(100 * 24)
	old.LastSeen = old.ScrapedAt
	seedJobs(t, db, old)
	_, err := apps.MarkJobApplied(ctx, "1", "")
	require.NoError(t, err)

	_, err = jobs.DeleteOldJobs(ctx, 90)
	require.NoError(t, err)

	var appRows int
	require.NoError(t, db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM applications").Scan(&appRows))
	assert.Zero(t, appRows)

	var ftsRows int
	require.NoError(t, db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jobs_fts WHERE jobs_fts MATCH 'graphql'").Scan(&ftsRows))
	assert.Zero(t, ftsRows)
}

func TestRebuildFTS(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()

	seedJobs(t, db, testJob("1", "Terraform Engineer", "Acme"))
	require.NoError(t, storage.RebuildFTS(ctx))

	results, err := storage.QueryJobs(ctx, &models.JobQuery{Keywords: "terraform"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestJobRoundTrip_StructuredFields(t *testing.T) {
	db := newTestDB(t)
	storage := NewJobStorage(db, arbor.NewLogger())

	lo, hi := 120000.0, 180000.0
	profileID := int64(7)
	job := testJob("1", "ML Engineer", "Acme")
	job.Salary = "$120K - $180K"
	job.SalaryMin, job.SalaryMax = &lo, &hi
	job.SalaryCurrency = "USD"
	job.EquityOffered = true
	job.Skills = []string{"Go", "Python"}
	job.KeyRequirements = []string{"5+ years experience"}
	job.EasyApply = true
	job.ProfileID = &profileID

	seedJobs(t, db, job)

	got, err := storage.GetJob(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NotNil(t, got.SalaryMin)
	assert.Equal(t, 120000.0, *got.SalaryMin)
	assert.Equal(t, 180000.0, *got.SalaryMax)
	assert.True(t, got.EquityOffered)
	assert.Equal(t, []string{"Go", "Python"}, got.Skills)
	assert.Equal(t, []string{"5+ years experience"}, got.KeyRequirements)
	assert.True(t, got.EasyApply)
	require.NotNil(t, got.ProfileID)
	assert.Equal(t, int64(7), *got.ProfileID)
}
