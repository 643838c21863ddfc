package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
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

const companyPageHTML = `
<html>
<head><meta property="og:description" content="Acme builds ML infrastructure."></head>
<body>
	<h1 class="top-card-layout__title">Acme AI</h1>
	<div class="core-section-container__content">
		<dl>
			<div><dt>Website</dt><dd>https://acme.ai</dd></div>
			<div><dt>Industry</dt><dd>Software Development</dd></div>
			<div><dt>Company size</dt><dd>201-500 employees</dd></div>
			<div><dt>Headquarters</dt><dd>San Francisco, CA</dd></div>
			<div><dt>Founded</dt><dd>2019</dd></div>
			<div><dt>Specialties</dt><dd>MLOps, Inference, Training</dd></div>
		</dl>
	</div>
</body>
</html>`

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()
	storage, err := sqlite.NewManager(arbor.NewLogger(), &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		CacheSizeMB:   16,
		WALMode:       true,
		BusyTimeoutMS: 5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func newTestService(t *testing.T, storage interfaces.StorageManager, baseURL string) *Service {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Scraper.BaseURL = baseURL
	config.Scraper.MaxRetries = 1
	config.Scraper.JitterMin = time.Millisecond
	config.Scraper.JitterMax = 2 * time.Millisecond
	return NewService(arbor.NewLogger(), config, storage)
}

// expireCompany pushes a cached row past its TTL so a refresh pass picks it up
func expireCompany(t *testing.T, storage interfaces.StorageManager, normalized string) {
	t.Helper()
	expired := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	_, err := storage.DB().ExecContext(context.Background(),
		"UPDATE company_enrichment SET next_refresh_at = ? WHERE normalized_company_name = ?",
		expired, normalized)
	require.NoError(t, err)
}

func TestRefreshStaleCompanies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, companyPageHTML)
	}))
	defer server.Close()

	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.CompanyStorage().UpsertCompanyEnrichment(ctx, &models.CompanyEnrichment{
		CompanyName: "Acme AI",
		ProfileURL:  server.URL + "/company/acme-ai",
	}))
	expireCompany(t, storage, "acme ai")

	before, err := storage.CompanyStorage().GetCompanyEnrichment(ctx, "Acme AI")
	require.NoError(t, err)

	svc := newTestService(t, storage, server.URL)
	refreshed, err := svc.RefreshStaleCompanies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	after, err := storage.CompanyStorage().GetCompanyEnrichment(ctx, "Acme AI")
	require.NoError(t, err)
	require.NotNil(t, after)

	assert.Equal(t, "Acme builds ML infrastructure.", after.Description)
	assert.Equal(t, "https://acme.ai", after.Website)
	assert.Equal(t, "Software Development", after.Industry)
	assert.Equal(t, "201-500 employees", after.Size)
	assert.Equal(t, "San Francisco, CA", after.Headquarters)
	assert.Equal(t, 2019, after.Founded)
	assert.Equal(t, []string{"MLOps", "Inference", "Training"}, after.Specialties)
	assert.Greater(t, after.NextRefreshAt, before.NextRefreshAt)
}

func TestRefreshStaleCompanies_NothingStale(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.CompanyStorage().UpsertCompanyEnrichment(ctx, &models.CompanyEnrichment{
		CompanyName: "Acme AI",
	}))

	svc := newTestService(t, storage, "http://127.0.0.1:0")
	refreshed, err := svc.RefreshStaleCompanies(ctx)
	require.NoError(t, err)
	assert.Zero(t, refreshed)
}

func TestRefreshStaleCompanies_DeadPageStillAdvancesTTL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.CompanyStorage().UpsertCompanyEnrichment(ctx, &models.CompanyEnrichment{
		CompanyName: "Ghost Co",
		Industry:    "Unknown",
		ProfileURL:  server.URL + "/company/ghost",
	}))
	expireCompany(t, storage, "ghost co")

	svc := newTestService(t, storage, server.URL)
	refreshed, err := svc.RefreshStaleCompanies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	// Old data survives and the row leaves the refresh backlog
	after, err := storage.CompanyStorage().GetCompanyEnrichment(ctx, "Ghost Co")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", after.Industry)

	stale, err := storage.CompanyStorage().GetCompaniesNeedingRefresh(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestRefreshCompany_LooksUpURLFromJobs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, companyPageHTML)
	}))
	defer server.Close()

	storage := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.JobStorage().UpsertJobs(ctx, []*models.JobDetail{{
		JobID:      "1",
		Title:      "Engineer",
		Company:    "Acme AI",
		CompanyURL: server.URL + "/company/acme-ai",
	}})
	require.NoError(t, err)

	require.NoError(t, storage.CompanyStorage().UpsertCompanyEnrichment(ctx, &models.CompanyEnrichment{
		CompanyName: "Acme AI",
	}))
	expireCompany(t, storage, "acme ai")

	svc := newTestService(t, storage, server.URL)
	refreshed, err := svc.RefreshStaleCompanies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	after, err := storage.CompanyStorage().GetCompanyEnrichment(ctx, "Acme AI")
	require.NoError(t, err)
	assert.Equal(t, "Software Development", after.Industry)
	assert.NotEmpty(t, after.ProfileURL)
}

func TestMergeEnrichment(t *testing.T) {
	dst := &models.CompanyEnrichment{
		CompanyName: "Acme AI",
		Industry:    "Old Industry",
		Website:     "https://old.example.com",
	}

	mergeEnrichment(dst, &models.CompanyEnrichment{
		Industry:    "Software Development",
		Size:        "201-500 employees",
		Specialties: []string{"MLOps"},
	})

	assert.Equal(t, "Acme AI", dst.CompanyName)
	assert.Equal(t, "Software Development", dst.Industry)
	assert.Equal(t, "https://old.example.com", dst.Website, "empty source fields leave existing values")
	assert.Equal(t, "201-500 employees", dst.Size)
	assert.Equal(t, []string{"MLOps"}, dst.Specialties)
}
