package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSearchJobsTool returns the search_jobs tool definition
func createSearchJobsTool() mcp.Tool {
	return mcp.NewTool("search_jobs",
		mcp.WithDescription("Search cached job listings with composable filters (full-text keywords, company, location, recency, remote, visa, application status)"),
		mcp.WithString("keywords",
			mcp.Description("Full-text search over title, company, description and skills (FTS5 syntax)"),
		),
		mcp.WithString("company",
			mcp.Description("Company name filter (fuzzy, suffix-insensitive: 'Acme' matches 'Acme, Inc.')"),
		),
		mcp.WithString("location",
			mcp.Description("Location substring filter, case-insensitive"),
		),
		mcp.WithNumber("posted_after_hours",
			mcp.Description("Only jobs posted within the last N hours"),
		),
		mcp.WithBoolean("remote_only",
			mcp.Description("Only remote-eligible jobs"),
		),
		mcp.WithBoolean("visa_sponsorship",
			mcp.Description("Only jobs mentioning visa sponsorship"),
		),
		mcp.WithString("application_status",
			mcp.Description("Filter by application status: not_applied, applied, interviewing, rejected, offered, accepted"),
		),
		mcp.WithString("sort_by",
			mcp.Description("Sort order: posted_date (default), scraped_at, applicants, last_seen"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 20, max: 100)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset"),
		),
		mcp.WithArray("include_sections",
			mcp.WithStringItems(),
			mcp.Description("Optional record sections to include: description_insights, application, company, metadata, full_description, skills, benefits, employment_details, or 'all'"),
		),
	)
}

// createGetJobDetailsTool returns the get_job_details tool definition
func createGetJobDetailsTool() mcp.Tool {
	return mcp.NewTool("get_job_details",
		mcp.WithDescription("Retrieve one cached job by ID with all record sections, including the full description rendered as markdown"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Numeric job ID"),
		),
		mcp.WithArray("include_sections",
			mcp.WithStringItems(),
			mcp.Description("Sections to include (default: all)"),
		),
	)
}

// createGetCacheAnalyticsTool returns the get_cache_analytics tool definition
func createGetCacheAnalyticsTool() mcp.Tool {
	return mcp.NewTool("get_cache_analytics",
		mcp.WithDescription("Report cache health: job counts by age and status, top companies and locations, per-profile scrape state, enrichment backlog, database size"),
	)
}

// createMarkJobAppliedTool returns the mark_job_applied tool definition
func createMarkJobAppliedTool() mcp.Tool {
	return mcp.NewTool("mark_job_applied",
		mcp.WithDescription("Record that you applied to a cached job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Numeric job ID"),
		),
		mcp.WithString("notes",
			mcp.Description("Optional application notes"),
		),
	)
}

// createUpdateApplicationStatusTool returns the update_application_status tool definition
func createUpdateApplicationStatusTool() mcp.Tool {
	return mcp.NewTool("update_application_status",
		mcp.WithDescription("Move an existing application to a new status"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Numeric job ID"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New status: applied, interviewing, rejected, offered, accepted"),
		),
		mcp.WithString("notes",
			mcp.Description("Optional notes"),
		),
	)
}

// createListApplicationsTool returns the list_applications tool definition
func createListApplicationsTool() mcp.Tool {
	return mcp.NewTool("list_applications",
		mcp.WithDescription("List tracked applications newest-first, optionally filtered by status"),
		mcp.WithString("status",
			mcp.Description("Filter: applied, interviewing, rejected, offered, accepted"),
		),
	)
}

// createListProfilesTool returns the list_profiles tool definition
func createListProfilesTool() mcp.Tool {
	return mcp.NewTool("list_profiles",
		mcp.WithDescription("List scraping profiles and their schedules"),
		mcp.WithBoolean("enabled_only",
			mcp.Description("Only enabled profiles (default: false)"),
		),
	)
}

// createUpsertProfileTool returns the upsert_profile tool definition
func createUpsertProfileTool() mcp.Tool {
	return mcp.NewTool("upsert_profile",
		mcp.WithDescription("Create or update a scraping profile by name. The scheduler picks changes up within one reload interval"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Unique profile name"),
		),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description("Search location, e.g. 'San Francisco, CA'"),
		),
		mcp.WithString("keywords",
			mcp.Required(),
			mcp.Description("Search keywords, e.g. 'AI Engineer OR ML Engineer'"),
		),
		mcp.WithNumber("distance",
			mcp.Description("Search radius in miles (default: 25)"),
		),
		mcp.WithString("time_filter",
			mcp.Description("Recency filter token, e.g. r7200 for 2 hours (default: r7200)"),
		),
		mcp.WithNumber("refresh_interval",
			mcp.Description("Seconds between scrape cycles (default: 7200)"),
		),
		mcp.WithBoolean("enabled",
			mcp.Description("Whether the profile's worker runs (default: true)"),
		),
	)
}

// createDeleteProfileTool returns the delete_profile tool definition
func createDeleteProfileTool() mcp.Tool {
	return mcp.NewTool("delete_profile",
		mcp.WithDescription("Disable a scraping profile, or permanently delete it"),
		mcp.WithNumber("profile_id",
			mcp.Required(),
			mcp.Description("Profile ID"),
		),
		mcp.WithBoolean("hard",
			mcp.Description("Permanently delete instead of disabling (default: false)"),
		),
	)
}

// createGetJobChangesTool returns the get_job_changes tool definition
func createGetJobChangesTool() mcp.Tool {
	return mcp.NewTool("get_job_changes",
		mcp.WithDescription("List recent changes to tracked job fields (salary, applicant count, description)"),
		mcp.WithString("job_id",
			mcp.Description("Limit to one job"),
		),
		mcp.WithNumber("since_hours",
			mcp.Description("How far back to look (default: 24)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum changes to return (default: 100)"),
		),
	)
}
