package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/laboro/internal/models"
)

// selText returns the trimmed text of the first match, or "N/A"
func selText(root *goquery.Selection, selector string) string {
	el := root.Find(selector).First()
	if el.Length() == 0 {
		return models.FieldUnavailable
	}
	text := strings.TrimSpace(el.Text())
	if text == "" {
		return models.FieldUnavailable
	}
	return text
}

// selAttr returns the named attribute of the first match, or "N/A"
func selAttr(root *goquery.Selection, selector, attr string) string {
	val, ok := root.Find(selector).First().Attr(attr)
	if !ok || val == "" {
		return models.FieldUnavailable
	}
	return val
}

// ParseSearchCard extracts summary fields from one search result card.
// Every field degrades to "N/A" independently; a card with job_id == "N/A"
// is unusable and callers drop it.
func ParseSearchCard(card *goquery.Selection) *models.JobSummary {
	// Job ID from the data-entity-urn attribute, on the card itself or a
	// child element
	jobID := models.FieldUnavailable
	urn, ok := card.Attr("data-entity-urn")
	if !ok {
		urn, _ = card.Find(selCardEntityURN).First().Attr("data-entity-urn")
	}
	if strings.Contains(urn, entityURNPrefix) {
		jobID = urn[strings.LastIndex(urn, ":")+1:]
	}

	return &models.JobSummary{
		JobID:         jobID,
		Title:         selText(card, selCardTitle),
		Company:       selText(card, selCardCompany),
		CompanyURL:    selAttr(card, selCardCompanyURL, "href"),
		Location:      selText(card, selCardLocation),
		PostedDate:    selText(card, selCardPostedDate),
		PostedDateISO: selAttr(card, selCardPostedDate, "datetime"),
		JobURL:        selAttr(card, selCardJobURL, "href"),
		BenefitsBadge: selText(card, selCardBenefits),
	}
}

// ParseJobDetailPage extracts all fields from a job detail HTML fragment,
// including the derived salary/remote/visa/skills fields and description
// insights.
func ParseJobDetailPage(html string, jobID string, detailURL string) (*models.JobDetail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	root := doc.Selection

	detail := &models.JobDetail{
		JobID:              jobID,
		URL:                detailURL,
		Source:             models.SourceGuestAPI,
		Title:              selText(root, selDetailTitle),
		Company:            selText(root, selDetailCompany),
		CompanyURL:         selAttr(root, selDetailCompany, "href"),
		Location:           selText(root, selDetailLocation),
		PostedDate:         selText(root, selDetailPostedDate),
		NumberOfApplicants: selText(root, selDetailApplicants),
		Salary:             selText(root, selDetailSalary),
		EmploymentType:     models.FieldUnavailable,
		SeniorityLevel:     models.FieldUnavailable,
		JobFunction:        models.FieldUnavailable,
		Industries:         models.FieldUnavailable,
		BenefitsBadge:      models.FieldUnavailable,
		SalaryCurrency:     "USD",
	}

	// The detail page's relative date element sometimes carries a datetime
	// attribute; fall back to the display text
	detail.PostedDateISO = selAttr(root, selDetailPostedDate, "datetime")
	if detail.PostedDateISO == models.FieldUnavailable {
		detail.PostedDateISO = detail.PostedDate
	}

	// Description: keep the raw HTML for change tracking, use the text for
	// derived-field extraction
	descriptionText := models.FieldUnavailable
	detail.RawDescription = models.FieldUnavailable
	if descEl := root.Find(selDetailDescription).First(); descEl.Length() > 0 {
		if outer, err := goquery.OuterHtml(descEl); err == nil {
			detail.RawDescription = outer
		}
		descriptionText = strings.TrimSpace(descEl.Text())
	}

	// Criteria list: rows are routed to fields by header substring, keeping
	// the "Header\nValue" shape of the page
	root.Find(selDetailJobCriteria).Each(func(_ int, item *goquery.Selection) {
		header := strings.TrimSpace(item.Find("h3").First().Text())
		value := strings.TrimSpace(item.Find("span").First().Text())
		if header == "" || value == "" {
			return
		}
		lower := strings.ToLower(header)
		switch {
		case strings.Contains(lower, "seniority"):
			detail.SeniorityLevel = header + "\n" + value
		case strings.Contains(lower, "employment"):
			detail.EmploymentType = header + "\n" + value
		case strings.Contains(lower, "function"):
			detail.JobFunction = lower + "\n" + value
		case strings.Contains(lower, "industries"):
			detail.Industries = lower + "\n" + value
		}
	})

	detail.EasyApply = root.Find(selDetailEasyApply).Length() > 0
	detail.NormalizedCompanyName = models.NormalizeCompanyName(detail.Company)

	// Derived fields
	salary := ExtractSalaryStructured(detail.Salary)
	detail.SalaryMin = salary.Min
	detail.SalaryMax = salary.Max
	detail.SalaryCurrency = salary.Currency
	detail.EquityOffered = salary.EquityOffered

	detail.Skills = ExtractSkills(descriptionText)
	detail.RemoteEligible = ExtractRemoteEligibility(descriptionText)
	detail.VisaSponsorship = ExtractVisaSponsorship(descriptionText)

	insights := ExtractDescriptionInsights(descriptionText)
	detail.DescriptionSummary = insights.Summary
	detail.KeyRequirements = insights.KeyRequirements
	detail.KeyResponsibilitiesPreview = insights.ResponsibilitiesPreview

	return detail, nil
}

// unavailableDetail builds the sentinel record returned when a detail fetch
// fails outright. The pipeline recognizes it by its "N/A" title and company
// and will not overwrite previously good data with it.
func unavailableDetail(jobID, detailURL string) *models.JobDetail {
	return &models.JobDetail{
		JobID:                 jobID,
		URL:                   detailURL,
		Source:                models.SourceGuestAPI,
		Title:                 models.FieldUnavailable,
		Company:               models.FieldUnavailable,
		NormalizedCompanyName: models.FieldUnavailable,
		CompanyURL:            models.FieldUnavailable,
		Location:              models.FieldUnavailable,
		PostedDate:            models.FieldUnavailable,
		PostedDateISO:         models.FieldUnavailable,
		NumberOfApplicants:    models.FieldUnavailable,
		Salary:                models.FieldUnavailable,
		RawDescription:        models.FieldUnavailable,
		EmploymentType:        models.FieldUnavailable,
		SeniorityLevel:        models.FieldUnavailable,
		JobFunction:           models.FieldUnavailable,
		Industries:            models.FieldUnavailable,
		BenefitsBadge:         models.FieldUnavailable,
		SalaryCurrency:        "USD",
	}
}
