package models

import "strings"

// FieldUnavailable is the sentinel for string fields the parser could not
// extract. Parsers degrade to it instead of returning errors.
const FieldUnavailable = "N/A"

// SourceGuestAPI identifies records scraped from the public guest endpoints
const SourceGuestAPI = "linkedin_guest_api"

// JobSummary holds the lightweight fields parsed from a search result card.
// Summaries are transient; only details are persisted.
type JobSummary struct {
	JobID         string `json:"job_id"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	CompanyURL    string `json:"company_url"`
	Location      string `json:"location"`
	PostedDate    string `json:"posted_date"`
	PostedDateISO string `json:"posted_date_iso"`
	JobURL        string `json:"job_url"`
	BenefitsBadge string `json:"benefits_badge"`
}

// JobDetail is the full record parsed from a job detail page, persisted
// keyed by JobID. Timestamps are UTC ISO-8601 strings.
type JobDetail struct {
	JobID                 string   `json:"job_id"`
	URL                   string   `json:"url"`
	Source                string   `json:"source"`
	ScrapedAt             string   `json:"scraped_at"`
	LastSeen              string   `json:"last_seen"`
	Title                 string   `json:"title"`
	Company               string   `json:"company"`
	NormalizedCompanyName string   `json:"normalized_company_name"`
	CompanyURL            string   `json:"company_url"`
	Location              string   `json:"location"`
	PostedDate            string   `json:"posted_date"`
	PostedDateISO         string   `json:"posted_date_iso"`
	NumberOfApplicants    string   `json:"number_of_applicants"`
	Salary                string   `json:"salary"`
	RawDescription        string   `json:"raw_description"`
	EmploymentType        string   `json:"employment_type"`
	SeniorityLevel        string   `json:"seniority_level"`
	JobFunction           string   `json:"job_function"`
	Industries            string   `json:"industries"`
	BenefitsBadge         string   `json:"benefits_badge"`
	Skills                []string `json:"skills"`

	// Structured salary
	SalaryMin      *float64 `json:"salary_min"`
	SalaryMax      *float64 `json:"salary_max"`
	SalaryCurrency string   `json:"salary_currency"`
	EquityOffered  bool     `json:"equity_offered"`

	// Decision-making flags
	RemoteEligible  bool `json:"remote_eligible"`
	VisaSponsorship bool `json:"visa_sponsorship"`
	EasyApply       bool `json:"easy_apply"`

	// Description insights for composable responses
	DescriptionSummary         string   `json:"description_summary"`
	KeyRequirements            []string `json:"key_requirements"`
	KeyResponsibilitiesPreview string   `json:"key_responsibilities_preview"`

	ProfileID *int64 `json:"profile_id"`
}

// companySuffixes are stripped during normalization, longest forms first so
// ", inc." wins over " inc".
var companySuffixes = []string{
	", inc.", " inc.", " inc",
	", llc", " llc",
	", ltd.", " ltd.", " ltd",
	", corp.", " corp.", " corp",
	", corporation", " corporation",
	" limited",
	", co.", " co.",
}

// NormalizeCompanyName normalizes a company name for fuzzy matching by
// lowercasing and stripping common legal suffixes.
func NormalizeCompanyName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))

	for _, suffix := range companySuffixes {
		if strings.HasSuffix(normalized, suffix) {
			normalized = normalized[:len(normalized)-len(suffix)]
			break
		}
	}

	return strings.TrimSpace(normalized)
}
