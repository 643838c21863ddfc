package models

// CacheAnalytics summarizes cache health for monitoring tools
type CacheAnalytics struct {
	TotalJobs      int64            `json:"total_jobs"`
	JobsByAge      JobAgeBuckets    `json:"jobs_by_age"`
	JobsByStatus   map[string]int64 `json:"jobs_by_status"`
	TopCompanies   []NameCount      `json:"top_companies"`
	TopLocations   []NameCount      `json:"top_locations"`
	Profiles       []ProfileStatus  `json:"profiles"`
	Enrichment     EnrichmentStats  `json:"enrichment"`
	DatabaseSizeMB float64          `json:"database_size_mb"`
	OldestJobAt    string           `json:"oldest_job_at"`
	NewestJobAt    string           `json:"newest_job_at"`
}

// JobAgeBuckets counts jobs by scrape age
type JobAgeBuckets struct {
	Last24Hours int64 `json:"last_24_hours"`
	Last7Days   int64 `json:"last_7_days"`
	Last30Days  int64 `json:"last_30_days"`
	Older       int64 `json:"older"`
}

// NameCount is a (name, count) pair for top-N listings
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ProfileStatus reports per-profile scheduling state
type ProfileStatus struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Enabled       bool   `json:"enabled"`
	JobCount      int64  `json:"job_count"`
	LastScrapedAt string `json:"last_scraped_at"`
	NextScrapeAt  string `json:"next_scrape_at"`
}

// EnrichmentStats summarizes the company enrichment cache
type EnrichmentStats struct {
	TotalCompanies int64 `json:"total_companies"`
	NeedingRefresh int64 `json:"needing_refresh"`
}
