package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/common"
	"github.com/ternarybob/laboro/internal/interfaces"
	"github.com/ternarybob/laboro/internal/models"
	"github.com/ternarybob/laboro/internal/storage/sqlite"
)

func searchPage(jobIDs ...string) string {
	var sb strings.Builder
	sb.WriteString("<ul>")
	for _, id := range jobIDs {
		sb.WriteString(fmt.Sprintf(`
		<li class="base-card" data-entity-urn="urn:li:jobPosting:%s">
			<h3 class="base-search-card__title">Engineer %s</h3>
			<h4 class="base-search-card__subtitle"><a href="https://example.com/company/acme">Acme</a></h4>
			<span class="job-search-card__location">Remote</span>
		</li>`, id, id))
	}
	sb.WriteString("</ul>")
	return sb.String()
}

func detailPage(jobID, applicants string) string {
	return fmt.Sprintf(`
	<section>
		<h2 class="top-card-layout__title">Engineer %s</h2>
		<a class="topcard__org-name-link" href="https://example.com/company/acme">Acme</a>
		<figcaption class="num-applicants__caption">%s</figcaption>
		<div class="show-more-less-html__markup"><p>Remote work with Go and Python.</p></div>
	</section>`, jobID, applicants)
}

// scrapeFixture wires a scraper service against a fake guest API and a real
// throwaway database
type scrapeFixture struct {
	service    *Service
	storage    interfaces.StorageManager
	profile    *models.Profile
	applicants atomic.Value
	detail404  atomic.Value
}

func newScrapeFixture(t *testing.T, jobIDs ...string) *scrapeFixture {
	t.Helper()

	f := &scrapeFixture{}
	f.applicants.Store("12 applicants")
	f.detail404.Store("")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/seeMoreJobPostings/") {
			fmt.Fprint(w, searchPage(jobIDs...))
			return
		}
		if strings.Contains(r.URL.Path, "/jobPosting/") {
			jobID := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			if jobID == f.detail404.Load().(string) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, detailPage(jobID, f.applicants.Load().(string)))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	config := common.NewDefaultConfig()
	config.Scraper.BaseURL = server.URL
	config.Scraper.PagesPerScrape = 1
	config.Scraper.MaxRetries = 1
	config.Scraper.JitterMin = time.Millisecond
	config.Scraper.JitterMax = 2 * time.Millisecond
	config.Scraper.BackoffBaseDelay = time.Millisecond

	logger := arbor.NewLogger()
	storage, err := sqlite.NewManager(logger, &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		CacheSizeMB:   16,
		WALMode:       true,
		BusyTimeoutMS: 5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	// The profile must exist in the store before its jobs reference it
	profile, err := storage.ProfileStorage().UpsertProfile(context.Background(), &models.Profile{
		Name:     "test",
		Location: "Remote",
		Keywords: "Engineer",
		Enabled:  true,
	})
	require.NoError(t, err)

	f.service = NewService(logger, config, storage)
	f.storage = storage
	f.profile = profile
	return f
}

func TestScrapeProfile_SavesDetails(t *testing.T) {
	f := newScrapeFixture(t, "101", "102")

	result, err := f.service.ScrapeProfile(context.Background(), f.profile)
	require.NoError(t, err)

	assert.Equal(t, 2, result.CardsFound)
	assert.Equal(t, 2, result.DetailsSaved)
	assert.Zero(t, result.ChangesFound)
	assert.NotEmpty(t, result.CycleID)

	job, err := f.storage.JobStorage().GetJob(context.Background(), "101")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "Engineer 101", job.Title)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, "12 applicants", job.NumberOfApplicants)
	assert.True(t, job.RemoteEligible)
	assert.Contains(t, job.Skills, "Go")
	require.NotNil(t, job.ProfileID)
	assert.Equal(t, f.profile.ID, *job.ProfileID)
}

func TestScrapeProfile_DetectsChangesOnRescrape(t *testing.T) {
	f := newScrapeFixture(t, "101")
	ctx := context.Background()

	_, err := f.service.ScrapeProfile(ctx, f.profile)
	require.NoError(t, err)

	f.applicants.Store("57 applicants")

	result, err := f.service.ScrapeProfile(ctx, f.profile)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChangesFound)

	changes, err := f.storage.ChangeStorage().GetJobChanges(ctx, "101", 24, 0)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "number_of_applicants", changes[0].FieldName)
	assert.Equal(t, "12 applicants", changes[0].OldValue)
	assert.Equal(t, "57 applicants", changes[0].NewValue)
}

func TestScrapeProfile_SkipsFailedDetails(t *testing.T) {
	f := newScrapeFixture(t, "101", "102")
	f.detail404.Store("102")

	result, err := f.service.ScrapeProfile(context.Background(), f.profile)
	require.NoError(t, err)

	assert.Equal(t, 2, result.CardsFound)
	assert.Equal(t, 1, result.DetailsSaved)

	// The failed job never reaches the cache
	job, err := f.storage.JobStorage().GetJob(context.Background(), "102")
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestScrapeProfile_NoResults(t *testing.T) {
	f := newScrapeFixture(t)

	result, err := f.service.ScrapeProfile(context.Background(), f.profile)
	require.NoError(t, err)

	assert.Zero(t, result.CardsFound)
	assert.Zero(t, result.DetailsSaved)
}
