package models

// CompanyEnrichment caches company metadata keyed by normalized name.
// Rows expire via NextRefreshAt (scraped_at + 30 days).
type CompanyEnrichment struct {
	ID                    int64    `json:"id"`
	CompanyName           string   `json:"company_name"`
	NormalizedCompanyName string   `json:"normalized_company_name"`
	Size                  string   `json:"company_size"`
	Industry              string   `json:"company_industry"`
	Description           string   `json:"company_description"`
	Website               string   `json:"company_website"`
	Headquarters          string   `json:"company_headquarters"`
	Founded               int      `json:"company_founded"`
	Specialties           []string `json:"company_specialties"`
	ProfileURL            string   `json:"company_profile_url"`
	ScrapedAt             string   `json:"scraped_at"`      // UTC ISO-8601
	NextRefreshAt         string   `json:"next_refresh_at"` // UTC ISO-8601
}
