package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

// jobColumns is the canonical column order for insert and select. Keep in
// sync with scanJob.
var jobColumns = []string{
	"job_id", "title", "company", "normalized_company_name", "location",
	"posted_date", "posted_date_iso", "scraped_at", "last_seen",
	"salary", "salary_min", "salary_max", "salary_currency", "equity_offered",
	"remote_eligible", "visa_sponsorship", "skills", "easy_apply",
	"number_of_applicants", "description_summary", "key_requirements",
	"key_responsibilities_preview", "raw_description", "employment_type",
	"seniority_level", "job_function", "industries", "benefits_badge",
	"company_url", "url", "profile_id", "source",
}

// JobStorage implements interfaces.JobStorage using SQLite
type JobStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewJobStorage creates a new job storage instance
func NewJobStorage(db *SQLiteDB, logger arbor.ILogger) *JobStorage {
	return &JobStorage{db: db, logger: logger}
}

// nowISO returns the current UTC time as an ISO-8601 string. All timestamp
// columns share this format so lexicographic comparison matches time order.
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// UpsertJobs inserts or replaces jobs in a single transaction. Missing
// normalized company names and last_seen timestamps are filled in here so
// callers cannot produce rows that break company matching.
func (s *JobStorage) UpsertJobs(ctx context.Context, jobs []*models.JobDetail) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(jobColumns)), ", ")
	query := fmt.Sprintf("INSERT OR REPLACE INTO jobs (%s) VALUES (%s)",
		strings.Join(jobColumns, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, job := range jobs {
		if job.NormalizedCompanyName == "" {
			job.NormalizedCompanyName = models.NormalizeCompanyName(job.Company)
		}
		if job.LastSeen == "" {
			job.LastSeen = nowISO()
		}
		if job.ScrapedAt == "" {
			job.ScrapedAt = job.LastSeen
		}
		if job.Source == "" {
			job.Source = models.SourceGuestAPI
		}

		skillsJSON, err := json.Marshal(job.Skills)
		if err != nil {
			return count, fmt.Errorf("failed to marshal skills for job %s: %w", job.JobID, err)
		}
		requirementsJSON, err := json.Marshal(job.KeyRequirements)
		if err != nil {
			return count, fmt.Errorf("failed to marshal requirements for job %s: %w", job.JobID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			job.JobID, job.Title, job.Company, job.NormalizedCompanyName, job.Location,
			job.PostedDate, job.PostedDateISO, job.ScrapedAt, job.LastSeen,
			job.Salary, job.SalaryMin, job.SalaryMax, job.SalaryCurrency, job.EquityOffered,
			job.RemoteEligible, job.VisaSponsorship, string(skillsJSON), job.EasyApply,
			job.NumberOfApplicants, job.DescriptionSummary, string(requirementsJSON),
			job.KeyResponsibilitiesPreview, job.RawDescription, job.EmploymentType,
			job.SeniorityLevel, job.JobFunction, job.Industries, job.BenefitsBadge,
			job.CompanyURL, job.URL, job.ProfileID, job.Source,
		); err != nil {
			return count, fmt.Errorf("failed to upsert job %s: %w", job.JobID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upsert: %w", err)
	}

	s.logger.Info().Int("count", count).Msg("Upserted jobs")
	return count, nil
}

// selectJobQuery is the base query for reads, joining application status and
// company enrichment onto each job row.
func selectJobQuery() string {
	cols := make([]string, len(jobColumns))
	for i, c := range jobColumns {
		cols[i] = "j." + c
	}
	return fmt.Sprintf(`SELECT %s,
		a.status, a.applied_at,
		c.company_size, c.company_industry
	FROM jobs j
	LEFT JOIN applications a ON j.job_id = a.job_id
	LEFT JOIN company_enrichment c ON j.normalized_company_name = c.normalized_company_name`,
		strings.Join(cols, ", "))
}

// GetJob retrieves a single job with application and enrichment fields
func (s *JobStorage) GetJob(ctx context.Context, jobID string) (*models.JobQueryResult, error) {
	row := s.db.DB().QueryRowContext(ctx, selectJobQuery()+" WHERE j.job_id = ?", jobID)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	return job, nil
}

// buildJobFilters translates a JobQuery into WHERE clauses shared by
// QueryJobs and CountJobs.
func buildJobFilters(query *models.JobQuery) ([]string, []interface{}) {
	var clauses []string
	var params []interface{}

	if query.Company != "" {
		clauses = append(clauses, "j.normalized_company_name LIKE ?")
		params = append(params, "%"+models.NormalizeCompanyName(query.Company)+"%")
	}

	if query.Location != "" {
		clauses = append(clauses, "LOWER(j.location) LIKE LOWER(?)")
		params = append(params, "%"+query.Location+"%")
	}

	if query.Keywords != "" {
		clauses = append(clauses, "j.job_id IN (SELECT job_id FROM jobs_fts WHERE jobs_fts MATCH ?)")
		params = append(params, query.Keywords)
	}

	if query.PostedAfterHours > 0 {
		cutoff := time.Now().UTC().Add(-time.Duration(query.PostedAfterHours) * time.Hour)
		clauses = append(clauses, "j.posted_date_iso >= ?")
		params = append(params, cutoff.Format(time.RFC3339))
	}

	if query.RemoteOnly {
		clauses = append(clauses, "j.remote_eligible = 1")
	}

	if query.VisaSponsorship {
		clauses = append(clauses, "j.visa_sponsorship = 1")
	}

	if query.ApplicationStatus != "" {
		if query.ApplicationStatus == models.ApplicationNotApplied {
			clauses = append(clauses, "a.job_id IS NULL")
		} else {
			clauses = append(clauses, "a.status = ?")
			params = append(params, string(query.ApplicationStatus))
		}
	}

	return clauses, params
}

// QueryJobs returns jobs matching the composable filter set
func (s *JobStorage) QueryJobs(ctx context.Context, query *models.JobQuery) ([]*models.JobQueryResult, error) {
	clauses, params := buildJobFilters(query)

	sqlQuery := selectJobQuery()
	if len(clauses) > 0 {
		sqlQuery += " WHERE " + strings.Join(clauses, " AND ")
	}

	switch query.SortBy {
	case models.SortScrapedAt:
		sqlQuery += " ORDER BY j.scraped_at DESC"
	case models.SortApplicants:
		sqlQuery += " ORDER BY CAST(j.number_of_applicants AS INTEGER) DESC"
	case models.SortLastSeen:
		sqlQuery += " ORDER BY j.last_seen DESC"
	default:
		sqlQuery += " ORDER BY j.posted_date_iso DESC"
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	sqlQuery += " LIMIT ? OFFSET ?"
	params = append(params, limit, query.Offset)

	rows, err := s.db.DB().QueryContext(ctx, sqlQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var results []*models.JobQueryResult
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		results = append(results, job)
	}
	return results, rows.Err()
}

// CountJobs returns the total number of jobs matching the filters,
// ignoring limit/offset. Used for pagination.
func (s *JobStorage) CountJobs(ctx context.Context, query *models.JobQuery) (int64, error) {
	clauses, params := buildJobFilters(query)

	sqlQuery := `SELECT COUNT(DISTINCT j.job_id)
		FROM jobs j
		LEFT JOIN applications a ON j.job_id = a.job_id`
	if len(clauses) > 0 {
		sqlQuery += " WHERE " + strings.Join(clauses, " AND ")
	}

	var count int64
	if err := s.db.DB().QueryRowContext(ctx, sqlQuery, params...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

// DeleteOldJobs removes jobs scraped more than maxAgeDays ago. The FTS
// delete trigger and application/change cascades clean up dependent rows.
func (s *JobStorage) DeleteOldJobs(ctx context.Context, maxAgeDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays).Format(time.RFC3339)

	result, err := s.db.DB().ExecContext(ctx, "DELETE FROM jobs WHERE scraped_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Str("cutoff", cutoff).Msg("Purged old jobs")
	}
	return deleted, nil
}

// RebuildFTS rebuilds the full-text index from the jobs table. Recovers the
// index if it ever drifts out of sync with its content table.
func (s *JobStorage) RebuildFTS(ctx context.Context) error {
	if _, err := s.db.DB().ExecContext(ctx, "INSERT INTO jobs_fts(jobs_fts) VALUES('rebuild')"); err != nil {
		return fmt.Errorf("failed to rebuild FTS index: %w", err)
	}
	s.logger.Info().Msg("FTS index rebuilt")
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanJob
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanJob scans a row produced by selectJobQuery
func scanJob(row rowScanner) (*models.JobQueryResult, error) {
	var (
		job              models.JobQueryResult
		salary           sql.NullString
		salaryMin        sql.NullFloat64
		salaryMax        sql.NullFloat64
		salaryCurrency   sql.NullString
		skillsJSON       sql.NullString
		applicants       sql.NullString
		summary          sql.NullString
		requirementsJSON sql.NullString
		respPreview      sql.NullString
		rawDescription   sql.NullString
		employmentType   sql.NullString
		seniorityLevel   sql.NullString
		jobFunction      sql.NullString
		industries       sql.NullString
		benefitsBadge    sql.NullString
		companyURL       sql.NullString
		url              sql.NullString
		profileID        sql.NullInt64
		source           sql.NullString
		appStatus        sql.NullString
		appliedAt        sql.NullString
		companySize      sql.NullString
		companyIndustry  sql.NullString
	)

	err := row.Scan(
		&job.JobID, &job.Title, &job.Company, &job.NormalizedCompanyName, &job.Location,
		&job.PostedDate, &job.PostedDateISO, &job.ScrapedAt, &job.LastSeen,
		&salary, &salaryMin, &salaryMax, &salaryCurrency, &job.EquityOffered,
		&job.RemoteEligible, &job.VisaSponsorship, &skillsJSON, &job.EasyApply,
		&applicants, &summary, &requirementsJSON,
		&respPreview, &rawDescription, &employmentType,
		&seniorityLevel, &jobFunction, &industries, &benefitsBadge,
		&companyURL, &url, &profileID, &source,
		&appStatus, &appliedAt,
		&companySize, &companyIndustry,
	)
	if err != nil {
		return nil, err
	}

	job.Salary = salary.String
	if salaryMin.Valid {
		job.SalaryMin = &salaryMin.Float64
	}
	if salaryMax.Valid {
		job.SalaryMax = &salaryMax.Float64
	}
	job.SalaryCurrency = salaryCurrency.String
	job.NumberOfApplicants = applicants.String
	job.DescriptionSummary = summary.String
	job.KeyResponsibilitiesPreview = respPreview.String
	job.RawDescription = rawDescription.String
	job.EmploymentType = employmentType.String
	job.SeniorityLevel = seniorityLevel.String
	job.JobFunction = jobFunction.String
	job.Industries = industries.String
	job.BenefitsBadge = benefitsBadge.String
	job.CompanyURL = companyURL.String
	job.URL = url.String
	job.Source = source.String
	if profileID.Valid {
		job.ProfileID = &profileID.Int64
	}

	if skillsJSON.Valid && skillsJSON.String != "" {
		if err := json.Unmarshal([]byte(skillsJSON.String), &job.Skills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skills for job %s: %w", job.JobID, err)
		}
	}
	if requirementsJSON.Valid && requirementsJSON.String != "" {
		if err := json.Unmarshal([]byte(requirementsJSON.String), &job.KeyRequirements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal requirements for job %s: %w", job.JobID, err)
		}
	}

	job.ApplicationStatusValue = appStatus.String
	job.AppliedAt = appliedAt.String
	job.CompanySize = companySize.String
	job.CompanyIndustry = companyIndustry.String

	return &job, nil
}
