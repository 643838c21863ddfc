package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/laboro/internal/models"
)

// searchParams describes one listing search
type searchParams struct {
	Keywords string
	Location string
	Distance int
	Filters  map[string]string // e.g. f_TPR time filter
}

// buildSearchURL assembles the listing URL for one page. Parameters are
// joined in a fixed order so URLs are stable for logging and tests.
func (s *Service) buildSearchURL(params searchParams, start int) string {
	pairs := []string{
		"keywords=" + url.QueryEscape(params.Keywords),
		"location=" + url.QueryEscape(params.Location),
		"distance=" + strconv.Itoa(params.Distance),
		"start=" + strconv.Itoa(start),
	}
	for _, key := range sortedKeys(params.Filters) {
		pairs = append(pairs, key+"="+url.QueryEscape(params.Filters[key]))
	}
	return fmt.Sprintf("%s/seeMoreJobPostings/search-results/?%s",
		strings.TrimSuffix(s.config.Scraper.BaseURL, "/"), strings.Join(pairs, "&"))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Small maps; insertion sort is enough
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// searchJobsPages fetches listing pages sequentially and parses the result
// cards. Pages are fetched without the detail semaphore since the rate is
// already low; a failed page is logged and skipped, not fatal. Cards whose
// job ID could not be extracted are dropped.
func (s *Service) searchJobsPages(ctx context.Context, params searchParams) ([]*models.JobSummary, error) {
	var summaries []*models.JobSummary

	pageSize := s.config.Scraper.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	for page := 0; page < s.config.Scraper.PagesPerScrape; page++ {
		if ctx.Err() != nil {
			return summaries, ctx.Err()
		}

		pageURL := s.buildSearchURL(params, page*pageSize)

		body, err := s.client.RequestWithBackoff(ctx, pageURL, nil)
		if err != nil {
			s.logger.Error().Err(err).Int("page", page+1).Msg("Failed to fetch search page")
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			s.logger.Error().Err(err).Int("page", page+1).Msg("Failed to parse search page")
			continue
		}

		cards := doc.Find(selSearchCard)
		cards.Each(func(_ int, card *goquery.Selection) {
			summary := ParseSearchCard(card)
			if summary.JobID != models.FieldUnavailable {
				summaries = append(summaries, summary)
			}
		})

		s.logger.Info().Int("cards", cards.Length()).Int("page", page+1).Msg("Parsed search page")
	}

	return summaries, nil
}
