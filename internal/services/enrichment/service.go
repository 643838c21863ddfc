package enrichment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/common"
	"github.com/ternarybob/laboro/internal/httpclient"
	"github.com/ternarybob/laboro/internal/interfaces"
	"github.com/ternarybob/laboro/internal/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// refreshBatchSize bounds one refresh pass so a large backlog drains over
// several scheduled runs instead of hammering the upstream in one burst
const refreshBatchSize = 20

// Service refreshes expired company enrichment rows. Company page fetches
// run under their own global semaphore, independent of the job detail
// semaphore, so enrichment can never starve the scrape pipeline.
type Service struct {
	client     *httpclient.Client
	storage    interfaces.StorageManager
	logger     arbor.ILogger
	companySem *semaphore.Weighted
	db         *sql.DB
}

// NewService creates an enrichment service
func NewService(logger arbor.ILogger, config *common.Config, storage interfaces.StorageManager) *Service {
	return &Service{
		client:     httpclient.NewClient(logger, &config.Scraper),
		storage:    storage,
		logger:     logger,
		companySem: semaphore.NewWeighted(int64(config.Scheduler.CompanyConcurrency)),
		db:         storage.DB(),
	}
}

// RefreshStaleCompanies re-scrapes enrichment for companies whose
// next_refresh_at has elapsed. Returns the number of rows refreshed.
// A company whose page cannot be fetched keeps its old data; the upsert
// still advances next_refresh_at so one dead page cannot pin the backlog.
func (s *Service) RefreshStaleCompanies(ctx context.Context) (int, error) {
	names, err := s.storage.CompanyStorage().GetCompaniesNeedingRefresh(ctx, refreshBatchSize)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, nil
	}

	s.logger.Info().Int("companies", len(names)).Msg("Refreshing stale company enrichment")

	refreshed := 0
	g, gctx := errgroup.WithContext(ctx)
	results := make([]bool, len(names))

	for i, name := range names {
		g.Go(func() error {
			ok, err := s.refreshCompany(gctx, name)
			if err != nil {
				s.logger.Error().Err(err).Str("company", name).Msg("Failed to refresh company")
				return nil
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return refreshed, err
	}

	for _, ok := range results {
		if ok {
			refreshed++
		}
	}
	return refreshed, nil
}

func (s *Service) refreshCompany(ctx context.Context, companyName string) (bool, error) {
	existing, err := s.storage.CompanyStorage().GetCompanyEnrichment(ctx, companyName)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, fmt.Errorf("no enrichment row for %s", companyName)
	}

	pageURL := existing.ProfileURL
	if pageURL == "" || pageURL == models.FieldUnavailable {
		pageURL, err = s.lookupCompanyURL(ctx, existing.NormalizedCompanyName)
		if err != nil {
			return false, err
		}
	}

	updated := *existing
	if pageURL != "" {
		if scraped := s.scrapeCompanyPage(ctx, pageURL); scraped != nil {
			mergeEnrichment(&updated, scraped)
			updated.ProfileURL = pageURL
		}
	}

	// Upsert even when unchanged: it stamps scraped_at and pushes
	// next_refresh_at out by the TTL
	if err := s.storage.CompanyStorage().UpsertCompanyEnrichment(ctx, &updated); err != nil {
		return false, err
	}
	return true, nil
}

// lookupCompanyURL finds a company page URL from the newest cached job for
// that company
func (s *Service) lookupCompanyURL(ctx context.Context, normalizedName string) (string, error) {
	var companyURL sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT company_url FROM jobs
		WHERE normalized_company_name = ? AND company_url IS NOT NULL AND company_url != 'N/A'
		ORDER BY last_seen DESC LIMIT 1`, normalizedName).Scan(&companyURL)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return companyURL.String, nil
}

// scrapeCompanyPage fetches a public company page under the company
// semaphore and extracts what metadata the markup exposes. Returns nil when
// the page yields nothing usable.
func (s *Service) scrapeCompanyPage(ctx context.Context, pageURL string) *models.CompanyEnrichment {
	body, err := s.client.RequestWithBackoff(ctx, pageURL, s.companySem)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", pageURL).Msg("Company page fetch failed")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}

	scraped := &models.CompanyEnrichment{}

	if name := strings.TrimSpace(doc.Find("h1.top-card-layout__title").First().Text()); name != "" {
		scraped.CompanyName = name
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		scraped.Description = strings.TrimSpace(desc)
	}

	// Public pages render labeled definition rows for the about section
	doc.Find("div.core-section-container__content dl > div").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find("dt").First().Text()))
		value := strings.TrimSpace(row.Find("dd").First().Text())
		if value == "" {
			return
		}
		switch {
		case strings.Contains(label, "website"):
			scraped.Website = value
		case strings.Contains(label, "industry"):
			scraped.Industry = value
		case strings.Contains(label, "company size"):
			scraped.Size = value
		case strings.Contains(label, "headquarters"):
			scraped.Headquarters = value
		case strings.Contains(label, "founded"):
			var founded int
			if _, err := fmt.Sscanf(value, "%d", &founded); err == nil {
				scraped.Founded = founded
			}
		case strings.Contains(label, "specialties"):
			for _, part := range strings.Split(value, ",") {
				if part = strings.TrimSpace(part); part != "" {
					scraped.Specialties = append(scraped.Specialties, part)
				}
			}
		}
	})

	if scraped.CompanyName == "" && scraped.Description == "" && scraped.Industry == "" {
		return nil
	}
	return scraped
}

// mergeEnrichment overlays non-empty scraped fields onto the existing row
func mergeEnrichment(dst *models.CompanyEnrichment, src *models.CompanyEnrichment) {
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Website != "" {
		dst.Website = src.Website
	}
	if src.Industry != "" {
		dst.Industry = src.Industry
	}
	if src.Size != "" {
		dst.Size = src.Size
	}
	if src.Headquarters != "" {
		dst.Headquarters = src.Headquarters
	}
	if src.Founded != 0 {
		dst.Founded = src.Founded
	}
	if len(src.Specialties) > 0 {
		dst.Specialties = src.Specialties
	}
}
