package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

// AnalyticsStorage implements interfaces.AnalyticsStorage using SQLite
type AnalyticsStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewAnalyticsStorage creates a new analytics storage instance
func NewAnalyticsStorage(db *SQLiteDB, logger arbor.ILogger) *AnalyticsStorage {
	return &AnalyticsStorage{db: db, logger: logger}
}

// GetCacheAnalytics aggregates cache health across all tables
func (s *AnalyticsStorage) GetCacheAnalytics(ctx context.Context) (*models.CacheAnalytics, error) {
	analytics := &models.CacheAnalytics{
		JobsByStatus: map[string]int64{
			"not_applied":  0,
			"applied":      0,
			"interviewing": 0,
			"rejected":     0,
			"offered":      0,
			"accepted":     0,
		},
	}
	db := s.db.DB()

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&analytics.TotalJobs); err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	// Age buckets by scrape time
	now := time.Now().UTC()
	var last24h, last7d, last30d int64
	cutoffs := []struct {
		cutoff time.Time
		dest   *int64
	}{
		{now.Add(-24 * time.Hour), &last24h},
		{now.AddDate(0, 0, -7), &last7d},
		{now.AddDate(0, 0, -30), &last30d},
	}
	for _, c := range cutoffs {
		if err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM jobs WHERE scraped_at >= ?",
			c.cutoff.Format(time.RFC3339)).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count jobs by age: %w", err)
		}
	}
	analytics.JobsByAge = models.JobAgeBuckets{
		Last24Hours: last24h,
		Last7Days:   last7d,
		Last30Days:  last30d,
		Older:       analytics.TotalJobs - last30d,
	}

	// Application status counts, with not_applied from the anti-join
	var notApplied int64
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM jobs j
		LEFT JOIN applications a ON j.job_id = a.job_id
		WHERE a.job_id IS NULL`).Scan(&notApplied); err != nil {
		return nil, fmt.Errorf("failed to count unapplied jobs: %w", err)
	}
	analytics.JobsByStatus["not_applied"] = notApplied

	statusRows, err := db.QueryContext(ctx, "SELECT status, COUNT(*) FROM applications GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status string
		var count int64
		if err := statusRows.Scan(&status, &count); err != nil {
			return nil, err
		}
		if _, ok := analytics.JobsByStatus[status]; ok {
			analytics.JobsByStatus[status] = count
		}
	}
	if err := statusRows.Err(); err != nil {
		return nil, err
	}

	// Top companies and locations
	analytics.TopCompanies, err = s.topCounts(ctx, `
		SELECT company, COUNT(*) AS count FROM jobs
		GROUP BY normalized_company_name ORDER BY count DESC LIMIT 10`)
	if err != nil {
		return nil, err
	}
	analytics.TopLocations, err = s.topCounts(ctx, `
		SELECT location, COUNT(*) AS count FROM jobs
		GROUP BY location ORDER BY count DESC LIMIT 10`)
	if err != nil {
		return nil, err
	}

	// Per-profile status with computed next scrape time
	profileRows, err := db.QueryContext(ctx, `
		SELECT p.id, p.name, p.enabled, p.refresh_interval, p.last_scraped_at,
			(SELECT COUNT(*) FROM jobs WHERE profile_id = p.id)
		FROM profiles p ORDER BY p.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile analytics: %w", err)
	}
	defer profileRows.Close()
	for profileRows.Next() {
		var (
			ps              models.ProfileStatus
			refreshInterval int
			lastScrapedAt   sql.NullString
		)
		if err := profileRows.Scan(&ps.ID, &ps.Name, &ps.Enabled, &refreshInterval,
			&lastScrapedAt, &ps.JobCount); err != nil {
			return nil, err
		}
		ps.LastScrapedAt = lastScrapedAt.String
		if lastScrapedAt.Valid {
			if last, err := time.Parse(time.RFC3339, lastScrapedAt.String); err == nil {
				ps.NextScrapeAt = last.Add(time.Duration(refreshInterval) * time.Second).Format(time.RFC3339)
			}
		}
		analytics.Profiles = append(analytics.Profiles, ps)
	}
	if err := profileRows.Err(); err != nil {
		return nil, err
	}

	// Enrichment cache state
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM company_enrichment").Scan(&analytics.Enrichment.TotalCompanies); err != nil {
		return nil, fmt.Errorf("failed to count enrichment rows: %w", err)
	}
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM company_enrichment WHERE next_refresh_at < ?",
		now.Format(time.RFC3339)).Scan(&analytics.Enrichment.NeedingRefresh); err != nil {
		return nil, fmt.Errorf("failed to count stale enrichment rows: %w", err)
	}

	// Database file size
	if info, err := os.Stat(s.db.Path()); err == nil {
		analytics.DatabaseSizeMB = float64(info.Size()) / (1024 * 1024)
	}

	// Oldest and newest job
	var oldest, newest sql.NullString
	if err := db.QueryRowContext(ctx,
		"SELECT MIN(scraped_at), MAX(scraped_at) FROM jobs").Scan(&oldest, &newest); err != nil {
		return nil, fmt.Errorf("failed to query job age range: %w", err)
	}
	analytics.OldestJobAt = oldest.String
	analytics.NewestJobAt = newest.String

	return analytics, nil
}

func (s *AnalyticsStorage) topCounts(ctx context.Context, query string) ([]models.NameCount, error) {
	rows, err := s.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query top counts: %w", err)
	}
	defer rows.Close()

	var counts []models.NameCount
	for rows.Next() {
		var nc models.NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, nc)
	}
	return counts, rows.Err()
}
