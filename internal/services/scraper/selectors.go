package scraper

// CSS selectors for the guest API's server-rendered HTML fragments. The
// markup changes without notice; parsers fall back to "N/A" sentinels when
// a selector stops matching rather than failing the whole page.
const (
	// Search card selectors
	selSearchCard     = "li.base-card"
	selCardTitle      = "h3.base-search-card__title"
	selCardCompany    = "h4.base-search-card__subtitle a"
	selCardCompanyURL = "h4.base-search-card__subtitle a[href]"
	selCardLocation   = "span.job-search-card__location"
	selCardPostedDate = "time.job-search-card__listdate"
	selCardJobURL     = "a.base-card__full-link[href]"
	selCardEntityURN  = "[data-entity-urn]"
	selCardBenefits   = "span.job-posting-benefits__text"

	// Detail page selectors
	selDetailTitle       = "h2.top-card-layout__title"
	selDetailCompany     = "a.topcard__org-name-link"
	selDetailLocation    = "span.topcard__flavor--bullet"
	selDetailPostedDate  = "span.posted-time-ago__text"
	selDetailApplicants  = "figcaption.num-applicants__caption"
	selDetailSalary      = "div.salary.compensation__salary"
	selDetailDescription = "div.show-more-less-html__markup, div.description__text"
	selDetailJobCriteria = "li.description__job-criteria-item"
	selDetailEasyApply   = ".jobs-apply-button--top-card, [aria-label*='Easy Apply']"
)

// entityURNPrefix precedes the numeric job ID in data-entity-urn attributes
const entityURNPrefix = "urn:li:jobPosting:"
