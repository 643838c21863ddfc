package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/laboro/internal/models"
	"github.com/ternarybob/laboro/internal/services/response"
)

// formatJobList renders search results as markdown with one block per job
func formatJobList(jobs []*models.JobQueryResult, total int64, offset int, composer *response.Composer, sections []response.Section) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Job Search Results (%d-%d of %d)\n\n",
		offset+1, offset+len(jobs), total))

	if len(jobs) == 0 {
		sb.WriteString("No matching jobs in cache.\n")
		return sb.String()
	}

	for i, job := range jobs {
		record := composer.Compose(job, sections)
		sb.WriteString(fmt.Sprintf("### %d. %s\n", offset+i+1, job.Title))
		writeRecord(&sb, record)
		sb.WriteString("\n---\n\n")
	}
	return sb.String()
}

// formatJobDetail renders one job with the requested sections
func formatJobDetail(job *models.JobQueryResult, composer *response.Composer, sections []response.Section) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", job.Title))
	writeRecord(&sb, composer.Compose(job, sections))
	return sb.String()
}

// writeRecord renders a composed record map. The full description is
// written as markdown body text; everything else as indented JSON blocks.
func writeRecord(sb *strings.Builder, record map[string]interface{}) {
	// Fixed order: mandatory sections first, then optional
	order := []string{"core", "decision_making"}
	for _, s := range response.AllSections {
		order = append(order, string(s))
	}

	for _, key := range order {
		value, ok := record[key]
		if !ok {
			continue
		}

		if key == string(response.SectionDescription) {
			sb.WriteString("**Description:**\n\n")
			sb.WriteString(fmt.Sprintf("%v\n\n", value))
			continue
		}

		encoded, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("**%s:**\n```json\n%s\n```\n", key, string(encoded)))
	}
}

// formatAnalytics renders cache analytics as markdown
func formatAnalytics(a *models.CacheAnalytics) string {
	var sb strings.Builder
	sb.WriteString("## Cache Analytics\n\n")
	sb.WriteString(fmt.Sprintf("**Total jobs:** %d (%.2f MB on disk)\n", a.TotalJobs, a.DatabaseSizeMB))
	if a.OldestJobAt != "" {
		sb.WriteString(fmt.Sprintf("**Oldest scrape:** %s, **newest:** %s\n", a.OldestJobAt, a.NewestJobAt))
	}

	sb.WriteString("\n### Jobs by age\n")
	sb.WriteString(fmt.Sprintf("- Last 24 hours: %d\n", a.JobsByAge.Last24Hours))
	sb.WriteString(fmt.Sprintf("- Last 7 days: %d\n", a.JobsByAge.Last7Days))
	sb.WriteString(fmt.Sprintf("- Last 30 days: %d\n", a.JobsByAge.Last30Days))
	sb.WriteString(fmt.Sprintf("- Older: %d\n", a.JobsByAge.Older))

	sb.WriteString("\n### Jobs by application status\n")
	for _, status := range []string{"not_applied", "applied", "interviewing", "rejected", "offered", "accepted"} {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", status, a.JobsByStatus[status]))
	}

	if len(a.TopCompanies) > 0 {
		sb.WriteString("\n### Top companies\n")
		for _, c := range a.TopCompanies {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", c.Name, c.Count))
		}
	}
	if len(a.TopLocations) > 0 {
		sb.WriteString("\n### Top locations\n")
		for _, l := range a.TopLocations {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", l.Name, l.Count))
		}
	}

	if len(a.Profiles) > 0 {
		sb.WriteString("\n### Profiles\n")
		for _, p := range a.Profiles {
			state := "disabled"
			if p.Enabled {
				state = "enabled"
			}
			sb.WriteString(fmt.Sprintf("- **%s** (id %d, %s): %d jobs cached", p.Name, p.ID, state, p.JobCount))
			if p.LastScrapedAt != "" {
				sb.WriteString(fmt.Sprintf(", last scraped %s", p.LastScrapedAt))
			}
			if p.NextScrapeAt != "" {
				sb.WriteString(fmt.Sprintf(", next due %s", p.NextScrapeAt))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\n### Company enrichment\n- Cached companies: %d\n- Needing refresh: %d\n",
		a.Enrichment.TotalCompanies, a.Enrichment.NeedingRefresh))

	return sb.String()
}

// formatApplications renders the application list as markdown
func formatApplications(apps []*models.Application) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Applications (%d)\n\n", len(apps)))

	if len(apps) == 0 {
		sb.WriteString("No applications tracked.\n")
		return sb.String()
	}

	for _, app := range apps {
		sb.WriteString(fmt.Sprintf("- **%s** at %s (%s) — %s, applied %s",
			app.Title, app.Company, app.Location, app.Status, app.AppliedAt))
		if app.Notes != "" {
			sb.WriteString(fmt.Sprintf("\n  Notes: %s", app.Notes))
		}
		sb.WriteString(fmt.Sprintf("\n  Job ID: %s\n", app.JobID))
	}
	return sb.String()
}

// formatProfiles renders scraping profiles as markdown
func formatProfiles(profiles []*models.Profile) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Scraping Profiles (%d)\n\n", len(profiles)))

	if len(profiles) == 0 {
		sb.WriteString("No profiles configured.\n")
		return sb.String()
	}

	for _, p := range profiles {
		state := "disabled"
		if p.Enabled {
			state = "enabled"
		}
		sb.WriteString(fmt.Sprintf("### %s (id %d, %s)\n", p.Name, p.ID, state))
		sb.WriteString(fmt.Sprintf("- Keywords: %s\n", p.Keywords))
		sb.WriteString(fmt.Sprintf("- Location: %s (within %d miles)\n", p.Location, p.Distance))
		sb.WriteString(fmt.Sprintf("- Time filter: %s, refresh every %ds\n", p.TimeFilter, p.RefreshInterval))
		if p.LastScrapedAt != "" {
			sb.WriteString(fmt.Sprintf("- Last scraped: %s\n", p.LastScrapedAt))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatJobChanges renders the change log as markdown
func formatJobChanges(changes []*models.JobChange) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Job Changes (%d)\n\n", len(changes)))

	if len(changes) == 0 {
		sb.WriteString("No changes in the requested window.\n")
		return sb.String()
	}

	for _, c := range changes {
		sb.WriteString(fmt.Sprintf("- %s — **%s** at %s (job %s): %s changed\n",
			c.ChangedAt, c.Title, c.Company, c.JobID, c.FieldName))
		if c.FieldName != "raw_description" {
			sb.WriteString(fmt.Sprintf("  %q → %q\n", c.OldValue, c.NewValue))
		}
	}
	return sb.String()
}
