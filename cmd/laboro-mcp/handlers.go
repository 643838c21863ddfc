package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/interfaces"
	"github.com/ternarybob/laboro/internal/models"
	"github.com/ternarybob/laboro/internal/services/response"
)

func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf(format, args...)),
		},
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleSearchJobs implements the search_jobs tool
func handleSearchJobs(storage interfaces.StorageManager, composer *response.Composer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 20)
		if limit > 100 {
			limit = 100
		}

		query := &models.JobQuery{
			Keywords:          request.GetString("keywords", ""),
			Company:           request.GetString("company", ""),
			Location:          request.GetString("location", ""),
			PostedAfterHours:  request.GetInt("posted_after_hours", 0),
			RemoteOnly:        request.GetBool("remote_only", false),
			VisaSponsorship:   request.GetBool("visa_sponsorship", false),
			ApplicationStatus: models.ApplicationStatus(request.GetString("application_status", "")),
			SortBy:            request.GetString("sort_by", models.SortPostedDate),
			Limit:             limit,
			Offset:            request.GetInt("offset", 0),
		}

		jobs, err := storage.JobStorage().QueryJobs(ctx, query)
		if err != nil {
			logger.Error().Err(err).Msg("Job query failed")
			return errorResult("Search error: %v", err), nil
		}

		total, err := storage.JobStorage().CountJobs(ctx, query)
		if err != nil {
			logger.Error().Err(err).Msg("Job count failed")
			return errorResult("Search error: %v", err), nil
		}

		sections := response.ParseSections(request.GetStringSlice("include_sections", nil))
		return textResult(formatJobList(jobs, total, query.Offset, composer, sections)), nil
	}
}

// handleGetJobDetails implements the get_job_details tool
func handleGetJobDetails(storage interfaces.StorageManager, composer *response.Composer, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireString("job_id")
		if err != nil || jobID == "" {
			return errorResult("Error: job_id parameter is required"), nil
		}

		job, err := storage.JobStorage().GetJob(ctx, jobID)
		if err != nil {
			logger.Error().Err(err).Str("job_id", jobID).Msg("Job lookup failed")
			return errorResult("Lookup error: %v", err), nil
		}
		if job == nil {
			return errorResult("Job %s not found in cache", jobID), nil
		}

		sections := response.ParseSections(request.GetStringSlice("include_sections", nil))
		if len(sections) == 0 {
			sections = response.AllSections
		}
		return textResult(formatJobDetail(job, composer, sections)), nil
	}
}

// handleGetCacheAnalytics implements the get_cache_analytics tool
func handleGetCacheAnalytics(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		analytics, err := storage.AnalyticsStorage().GetCacheAnalytics(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Analytics query failed")
			return errorResult("Analytics error: %v", err), nil
		}
		return textResult(formatAnalytics(analytics)), nil
	}
}

// handleMarkJobApplied implements the mark_job_applied tool
func handleMarkJobApplied(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireString("job_id")
		if err != nil || jobID == "" {
			return errorResult("Error: job_id parameter is required"), nil
		}

		app, err := storage.ApplicationStorage().MarkJobApplied(ctx, jobID, request.GetString("notes", ""))
		if err != nil {
			logger.Error().Err(err).Str("job_id", jobID).Msg("Mark applied failed")
			return errorResult("Error: %v", err), nil
		}
		return textResult(fmt.Sprintf("Marked %s at %s as applied (%s)", app.Title, app.Company, app.AppliedAt)), nil
	}
}

// handleUpdateApplicationStatus implements the update_application_status tool
func handleUpdateApplicationStatus(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireString("job_id")
		if err != nil || jobID == "" {
			return errorResult("Error: job_id parameter is required"), nil
		}
		status, err := request.RequireString("status")
		if err != nil || status == "" {
			return errorResult("Error: status parameter is required"), nil
		}

		app, err := storage.ApplicationStorage().UpdateApplicationStatus(ctx, jobID,
			models.ApplicationStatus(status), request.GetString("notes", ""))
		if err != nil {
			logger.Error().Err(err).Str("job_id", jobID).Msg("Status update failed")
			return errorResult("Error: %v", err), nil
		}
		return textResult(fmt.Sprintf("Application for %s at %s is now '%s'", app.Title, app.Company, app.Status)), nil
	}
}

// handleListApplications implements the list_applications tool
func handleListApplications(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := models.ApplicationStatus(request.GetString("status", ""))
		if status != "" && !models.ValidApplicationStatus(status) {
			return errorResult("Error: unknown status %q", status), nil
		}

		apps, err := storage.ApplicationStorage().ListApplications(ctx, status)
		if err != nil {
			logger.Error().Err(err).Msg("List applications failed")
			return errorResult("Error: %v", err), nil
		}
		return textResult(formatApplications(apps)), nil
	}
}

// handleListProfiles implements the list_profiles tool
func handleListProfiles(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profiles, err := storage.ProfileStorage().ListProfiles(ctx, request.GetBool("enabled_only", false))
		if err != nil {
			logger.Error().Err(err).Msg("List profiles failed")
			return errorResult("Error: %v", err), nil
		}
		return textResult(formatProfiles(profiles)), nil
	}
}

// handleUpsertProfile implements the upsert_profile tool
func handleUpsertProfile(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		location, err := request.RequireString("location")
		if err != nil || location == "" {
			return errorResult("Error: location parameter is required"), nil
		}
		keywords, err := request.RequireString("keywords")
		if err != nil || keywords == "" {
			return errorResult("Error: keywords parameter is required"), nil
		}

		profile, err := storage.ProfileStorage().UpsertProfile(ctx, &models.Profile{
			Name:            name,
			Location:        location,
			Keywords:        keywords,
			Distance:        request.GetInt("distance", 25),
			TimeFilter:      request.GetString("time_filter", "r7200"),
			RefreshInterval: request.GetInt("refresh_interval", 7200),
			Enabled:         request.GetBool("enabled", true),
		})
		if err != nil {
			logger.Error().Err(err).Str("profile", name).Msg("Profile upsert failed")
			return errorResult("Error: %v", err), nil
		}
		return textResult(fmt.Sprintf("Profile %d (%s) saved; scheduler applies changes within 30s", profile.ID, profile.Name)), nil
	}
}

// handleDeleteProfile implements the delete_profile tool
func handleDeleteProfile(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profileID := request.GetInt("profile_id", 0)
		if profileID <= 0 {
			return errorResult("Error: profile_id parameter is required"), nil
		}

		hard := request.GetBool("hard", false)
		if err := storage.ProfileStorage().DeleteProfile(ctx, int64(profileID), hard); err != nil {
			logger.Error().Err(err).Int("profile_id", profileID).Msg("Profile delete failed")
			return errorResult("Error: %v", err), nil
		}
		if hard {
			return textResult(fmt.Sprintf("Profile %d permanently deleted", profileID)), nil
		}
		return textResult(fmt.Sprintf("Profile %d disabled", profileID)), nil
	}
}

// handleGetJobChanges implements the get_job_changes tool
func handleGetJobChanges(storage interfaces.StorageManager, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		changes, err := storage.ChangeStorage().GetJobChanges(ctx,
			request.GetString("job_id", ""),
			request.GetInt("since_hours", 24),
			request.GetInt("limit", 100))
		if err != nil {
			logger.Error().Err(err).Msg("Change query failed")
			return errorResult("Error: %v", err), nil
		}
		return textResult(formatJobChanges(changes)), nil
	}
}
