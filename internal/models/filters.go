package models

// JobSort names for QueryJobs. Unknown values fall back to SortPostedDate.
const (
	SortPostedDate = "posted_date"
	SortScrapedAt  = "scraped_at"
	SortApplicants = "applicants"
	SortLastSeen   = "last_seen"
)

// JobQuery is a composable filter set for QueryJobs. Zero values mean
// "no filter" for every field.
type JobQuery struct {
	Company           string            `json:"company"`  // Matched against normalized company name
	Location          string            `json:"location"` // Case-insensitive substring
	Keywords          string            `json:"keywords"` // FTS match over title/description/skills
	PostedAfterHours  int               `json:"posted_after_hours"`
	RemoteOnly        bool              `json:"remote_only"`
	VisaSponsorship   bool              `json:"visa_sponsorship"`
	ApplicationStatus ApplicationStatus `json:"application_status"`
	SortBy            string            `json:"sort_by"`
	Limit             int               `json:"limit"`
	Offset            int               `json:"offset"`
}

// JobQueryResult is a job row with application and enrichment fields joined in
type JobQueryResult struct {
	JobDetail

	ApplicationStatusValue string `json:"application_status,omitempty"`
	AppliedAt              string `json:"applied_at,omitempty"`
	CompanySize            string `json:"company_size,omitempty"`
	CompanyIndustry        string `json:"company_industry,omitempty"`
}
