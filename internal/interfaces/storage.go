package interfaces

import (
	"context"
	"database/sql"

	"github.com/ternarybob/laboro/internal/models"
)

// JobStorage - interface for job record persistence
type JobStorage interface {
	// Write operations
	UpsertJobs(ctx context.Context, jobs []*models.JobDetail) (int, error)
	DeleteOldJobs(ctx context.Context, maxAgeDays int) (int64, error)

	// Read operations
	GetJob(ctx context.Context, jobID string) (*models.JobQueryResult, error)
	QueryJobs(ctx context.Context, query *models.JobQuery) ([]*models.JobQueryResult, error)
	CountJobs(ctx context.Context, query *models.JobQuery) (int64, error)

	// Maintenance operations
	RebuildFTS(ctx context.Context) error
}

// ProfileStorage - interface for scraping profile persistence
type ProfileStorage interface {
	UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	GetProfileByName(ctx context.Context, name string) (*models.Profile, error)
	ListProfiles(ctx context.Context, enabledOnly bool) ([]*models.Profile, error)
	SetProfileEnabled(ctx context.Context, id int64, enabled bool) error

	// DeleteProfile disables the profile by default; hard permanently
	// removes the row.
	DeleteProfile(ctx context.Context, id int64, hard bool) error
	UpdateProfileLastRun(ctx context.Context, id int64) error

	// SeedDefaultProfile inserts the built-in default profile when the
	// table is empty. Returns true if a profile was created.
	SeedDefaultProfile(ctx context.Context) (bool, error)
}

// ApplicationStorage - interface for application tracking
type ApplicationStorage interface {
	MarkJobApplied(ctx context.Context, jobID string, notes string) (*models.Application, error)
	UpdateApplicationStatus(ctx context.Context, jobID string, status models.ApplicationStatus, notes string) (*models.Application, error)
	GetApplication(ctx context.Context, jobID string) (*models.Application, error)
	ListApplications(ctx context.Context, status models.ApplicationStatus) ([]*models.Application, error)
}

// CompanyStorage - interface for the company enrichment cache
type CompanyStorage interface {
	UpsertCompanyEnrichment(ctx context.Context, enrichment *models.CompanyEnrichment) error
	GetCompanyEnrichment(ctx context.Context, companyName string) (*models.CompanyEnrichment, error)
	GetCompaniesNeedingRefresh(ctx context.Context, limit int) ([]string, error)
}

// ChangeStorage - interface for the append-only job change log
type ChangeStorage interface {
	RecordJobChange(ctx context.Context, change *models.JobChange) error
	GetJobChanges(ctx context.Context, jobID string, sinceHours int, limit int) ([]*models.JobChange, error)
}

// AnalyticsStorage - interface for cache health reporting
type AnalyticsStorage interface {
	GetCacheAnalytics(ctx context.Context) (*models.CacheAnalytics, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	JobStorage() JobStorage
	ProfileStorage() ProfileStorage
	ApplicationStorage() ApplicationStorage
	CompanyStorage() CompanyStorage
	ChangeStorage() ChangeStorage
	AnalyticsStorage() AnalyticsStorage
	DB() *sql.DB
	Close() error
}
