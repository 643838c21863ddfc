package scraper

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ternarybob/laboro/internal/interfaces"
	"github.com/ternarybob/laboro/internal/models"
)

// ScrapeProfile executes one full scrape cycle for a profile: search pages,
// detail fan-out, change detection against the cache, then a batch upsert.
func (s *Service) ScrapeProfile(ctx context.Context, profile *models.Profile) (*interfaces.ScrapeResult, error) {
	result := &interfaces.ScrapeResult{
		CycleID:     uuid.NewString(),
		ProfileID:   profile.ID,
		ProfileName: profile.Name,
	}

	log := s.logger.Info().Str("cycle_id", result.CycleID).
		Int64("profile_id", profile.ID).Str("profile", profile.Name)
	log.Msg("Starting scrape cycle")

	summaries, err := s.searchJobsPages(ctx, searchParams{
		Keywords: profile.Keywords,
		Location: profile.Location,
		Distance: profile.Distance,
		Filters:  map[string]string{"f_TPR": profile.TimeFilter},
	})
	if err != nil {
		return result, fmt.Errorf("search failed for profile %d: %w", profile.ID, err)
	}
	result.CardsFound = len(summaries)

	if len(summaries) == 0 {
		s.logger.Info().Str("cycle_id", result.CycleID).Int64("profile_id", profile.ID).
			Msg("No jobs found")
		return result, nil
	}

	jobIDs := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		jobIDs = append(jobIDs, summary.JobID)
	}

	details := s.fetchJobDetails(ctx, jobIDs)
	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	// Failed detail fetches come back as all-sentinel records; dropping
	// them keeps previously scraped data from being overwritten with "N/A"
	var toUpsert []*models.JobDetail
	skipped := 0
	for _, detail := range details {
		if detail.Title == models.FieldUnavailable || detail.Company == models.FieldUnavailable {
			skipped++
			s.logger.Warn().Str("job_id", detail.JobID).Msg("Skipping job with unavailable fields")
			continue
		}

		profileID := profile.ID
		detail.ProfileID = &profileID

		existing, err := s.storage.JobStorage().GetJob(ctx, detail.JobID)
		if err != nil {
			return result, fmt.Errorf("failed to load existing job %s: %w", detail.JobID, err)
		}
		if existing != nil {
			changed, err := s.detectJobChanges(ctx, &existing.JobDetail, detail)
			if err != nil {
				return result, err
			}
			result.ChangesFound += changed
		}

		toUpsert = append(toUpsert, detail)
	}

	if skipped > 0 {
		s.logger.Warn().Str("cycle_id", result.CycleID).Int("skipped", skipped).
			Int("total", len(details)).Msg("Skipped jobs with unavailable fields")
	}

	saved, err := s.storage.JobStorage().UpsertJobs(ctx, toUpsert)
	if err != nil {
		return result, fmt.Errorf("failed to upsert jobs for profile %d: %w", profile.ID, err)
	}
	result.DetailsSaved = saved

	s.logger.Info().Str("cycle_id", result.CycleID).Int64("profile_id", profile.ID).
		Int("cards", result.CardsFound).Int("saved", saved).
		Int("changes", result.ChangesFound).Msg("Scrape cycle complete")

	return result, nil
}

// detectJobChanges diffs the tracked fields of a cached job against a fresh
// scrape and appends one change row per difference. Returns the number of
// changes recorded.
func (s *Service) detectJobChanges(ctx context.Context, old, fresh *models.JobDetail) (int, error) {
	tracked := []struct {
		name     string
		oldValue string
		newValue string
	}{
		{"salary", old.Salary, fresh.Salary},
		{"number_of_applicants", old.NumberOfApplicants, fresh.NumberOfApplicants},
		{"raw_description", old.RawDescription, fresh.RawDescription},
	}

	changes := 0
	for _, field := range tracked {
		if field.oldValue == field.newValue {
			continue
		}
		err := s.storage.ChangeStorage().RecordJobChange(ctx, &models.JobChange{
			JobID:     old.JobID,
			FieldName: field.name,
			OldValue:  field.oldValue,
			NewValue:  field.newValue,
		})
		if err != nil {
			return changes, fmt.Errorf("failed to record change for job %s: %w", old.JobID, err)
		}
		changes++
	}
	return changes, nil
}
