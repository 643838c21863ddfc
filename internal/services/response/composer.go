package response

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/laboro/internal/models"
)

// Section names an optional block of a composed job record
type Section string

const (
	SectionInsights    Section = "description_insights"
	SectionApplication Section = "application"
	SectionCompany     Section = "company"
	SectionMetadata    Section = "metadata"
	SectionDescription Section = "full_description"
	SectionSkills      Section = "skills"
	SectionBenefits    Section = "benefits"
	SectionEmployment  Section = "employment_details"
)

// AllSections lists every optional section, for callers that want the
// complete record
var AllSections = []Section{
	SectionInsights, SectionApplication, SectionCompany, SectionMetadata,
	SectionDescription, SectionSkills, SectionBenefits, SectionEmployment,
}

// Composer assembles job records into composable response maps: a mandatory
// core and decision_making block, plus optional sections on request. Raw
// description HTML is rendered to markdown for readability.
type Composer struct {
	converter *md.Converter
}

// NewComposer creates a response composer
func NewComposer() *Composer {
	return &Composer{
		converter: md.NewConverter("", true, nil),
	}
}

// Compose builds the response record for one job. Unrequested and empty
// optional sections are omitted entirely.
func (c *Composer) Compose(job *models.JobQueryResult, include []Section) map[string]interface{} {
	record := map[string]interface{}{
		"core": map[string]interface{}{
			"job_id":          job.JobID,
			"title":           job.Title,
			"company":         job.Company,
			"location":        job.Location,
			"posted_date":     job.PostedDate,
			"posted_date_iso": job.PostedDateISO,
		},
		"decision_making": map[string]interface{}{
			"salary_range":     c.salaryRange(job),
			"remote_eligible":  job.RemoteEligible,
			"visa_sponsorship": job.VisaSponsorship,
			"applicants":       job.NumberOfApplicants,
			"easy_apply":       job.EasyApply,
		},
	}

	requested := make(map[Section]bool, len(include))
	for _, s := range include {
		requested[s] = true
	}

	if requested[SectionInsights] {
		insights := map[string]interface{}{}
		if job.DescriptionSummary != "" {
			insights["summary"] = job.DescriptionSummary
		}
		if len(job.KeyRequirements) > 0 {
			insights["key_requirements"] = job.KeyRequirements
		}
		if job.KeyResponsibilitiesPreview != "" {
			insights["key_responsibilities"] = job.KeyResponsibilitiesPreview
		}
		if len(insights) > 0 {
			record[string(SectionInsights)] = insights
		}
	}

	if requested[SectionApplication] && job.ApplicationStatusValue != "" {
		record[string(SectionApplication)] = map[string]interface{}{
			"status":     job.ApplicationStatusValue,
			"applied_at": job.AppliedAt,
		}
	}

	if requested[SectionCompany] {
		company := map[string]interface{}{}
		if job.CompanySize != "" {
			company["size"] = job.CompanySize
		}
		if job.CompanyIndustry != "" {
			company["industry"] = job.CompanyIndustry
		}
		if len(company) > 0 {
			record[string(SectionCompany)] = company
		}
	}

	if requested[SectionMetadata] {
		record[string(SectionMetadata)] = map[string]interface{}{
			"url":             job.URL,
			"company_url":     job.CompanyURL,
			"source":          job.Source,
			"scraped_at":      job.ScrapedAt,
			"last_seen":       job.LastSeen,
			"seniority_level": job.SeniorityLevel,
			"employment_type": job.EmploymentType,
		}
	}

	if requested[SectionDescription] {
		if desc := c.renderDescription(job.RawDescription); desc != "" {
			record[string(SectionDescription)] = desc
		}
	}

	if requested[SectionSkills] && len(job.Skills) > 0 {
		record[string(SectionSkills)] = job.Skills
	}

	if requested[SectionBenefits] && job.BenefitsBadge != "" && job.BenefitsBadge != models.FieldUnavailable {
		record[string(SectionBenefits)] = job.BenefitsBadge
	}

	if requested[SectionEmployment] {
		employment := map[string]interface{}{}
		for key, value := range map[string]string{
			"employment_type": job.EmploymentType,
			"seniority_level": job.SeniorityLevel,
			"job_function":    job.JobFunction,
			"industries":      job.Industries,
		} {
			if value != "" && value != models.FieldUnavailable {
				employment[key] = value
			}
		}
		if len(employment) > 0 {
			record[string(SectionEmployment)] = employment
		}
	}

	return record
}

// salaryRange formats structured salary when present, falling back to the
// raw salary text
func (c *Composer) salaryRange(job *models.JobQueryResult) string {
	if job.SalaryMin != nil && job.SalaryMax != nil {
		if *job.SalaryMin == *job.SalaryMax {
			return fmt.Sprintf("%s %.0f", job.SalaryCurrency, *job.SalaryMin)
		}
		return fmt.Sprintf("%s %.0f - %.0f", job.SalaryCurrency, *job.SalaryMin, *job.SalaryMax)
	}
	if job.Salary != "" && job.Salary != models.FieldUnavailable {
		return job.Salary
	}
	return models.FieldUnavailable
}

// renderDescription converts stored description HTML to markdown. Returns
// empty string when there is nothing renderable.
func (c *Composer) renderDescription(rawHTML string) string {
	if rawHTML == "" || rawHTML == models.FieldUnavailable {
		return ""
	}
	markdown, err := c.converter.ConvertString(rawHTML)
	if err != nil {
		// Plain text fallback keeps the section usable on odd markup
		return strings.TrimSpace(rawHTML)
	}
	return strings.TrimSpace(markdown)
}

// ParseSections maps requested section names to known sections, ignoring
// unknown names. "all" expands to every optional section.
func ParseSections(names []string) []Section {
	var sections []Section
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "all" {
			return AllSections
		}
		for _, known := range AllSections {
			if name == string(known) {
				sections = append(sections, known)
				break
			}
		}
	}
	return sections
}
