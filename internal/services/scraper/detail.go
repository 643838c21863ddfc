package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/laboro/internal/models"
	"golang.org/x/sync/errgroup"
)

// detailURL builds the guest API URL for one job detail page
func (s *Service) detailURL(jobID string) string {
	return fmt.Sprintf("%s/jobPosting/%s", strings.TrimSuffix(s.config.Scraper.BaseURL, "/"), jobID)
}

// fetchJobDetails fans out detail fetches for the given job IDs under the
// shared job semaphore. A failed fetch or parse yields a sentinel record
// rather than aborting the batch, so one bad job never loses the cycle.
func (s *Service) fetchJobDetails(ctx context.Context, jobIDs []string) []*models.JobDetail {
	details := make([]*models.JobDetail, len(jobIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, jobID := range jobIDs {
		g.Go(func() error {
			details[i] = s.fetchSingleJobDetail(gctx, jobID)
			return nil
		})
	}
	g.Wait()

	results := make([]*models.JobDetail, 0, len(details))
	for _, d := range details {
		if d != nil {
			results = append(results, d)
		}
	}
	return results
}

func (s *Service) fetchSingleJobDetail(ctx context.Context, jobID string) *models.JobDetail {
	detailURL := s.detailURL(jobID)

	body, err := s.client.RequestWithBackoff(ctx, detailURL, s.jobSem)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to fetch job detail")
		return unavailableDetail(jobID, detailURL)
	}

	detail, err := ParseJobDetailPage(string(body), jobID, detailURL)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to parse job detail")
		return unavailableDetail(jobID, detailURL)
	}
	return detail
}
