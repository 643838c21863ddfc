package models

import "time"

// MinRefreshIntervalSeconds is the floor for a profile's scrape cadence.
// Cycling faster than hourly invites upstream rate limiting.
const MinRefreshIntervalSeconds = 3600

// Profile is a named scraping configuration. One worker runs per enabled
// profile; the scheduler reconciles workers against this table.
type Profile struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Location        string    `json:"location"`
	Keywords        string    `json:"keywords"`
	Distance        int       `json:"distance"`         // Search radius in miles
	TimeFilter      string    `json:"time_filter"`      // Upstream f_TPR token, e.g. "r7200"
	RefreshInterval int       `json:"refresh_interval"` // Seconds between scrape cycles
	Enabled         bool      `json:"enabled"`
	LastScrapedAt   string    `json:"last_scraped_at"` // UTC ISO-8601, empty if never scraped
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultProfile returns the seed profile created on first start when the
// profiles table is empty.
func DefaultProfile() *Profile {
	return &Profile{
		Name:            "default",
		Location:        "San Francisco, CA",
		Keywords:        "AI Engineer OR ML Engineer OR Research Engineer",
		Distance:        25,
		TimeFilter:      "r7200",
		RefreshInterval: 7200,
		Enabled:         true,
	}
}
