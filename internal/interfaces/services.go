package interfaces

import (
	"context"

	"github.com/ternarybob/laboro/internal/models"
)

// ScrapeResult summarizes one scrape cycle for a profile
type ScrapeResult struct {
	CycleID      string
	ProfileID    int64
	ProfileName  string
	CardsFound   int
	DetailsSaved int
	ChangesFound int
}

// ScraperService runs the two-stage search/detail pipeline for a profile
type ScraperService interface {
	ScrapeProfile(ctx context.Context, profile *models.Profile) (*ScrapeResult, error)
}

// SchedulerService reconciles one background worker per enabled profile
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	RunningWorkers() []int64
}

// EnrichmentService refreshes expired company enrichment rows
type EnrichmentService interface {
	RefreshStaleCompanies(ctx context.Context) (int, error)
}
