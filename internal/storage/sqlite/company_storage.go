package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/models"
)

// enrichmentTTL is how long a company enrichment row stays fresh
const enrichmentTTL = 30 * 24 * time.Hour

// CompanyStorage implements interfaces.CompanyStorage using SQLite
type CompanyStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewCompanyStorage creates a new company enrichment storage instance
func NewCompanyStorage(db *SQLiteDB, logger arbor.ILogger) *CompanyStorage {
	return &CompanyStorage{db: db, logger: logger}
}

// UpsertCompanyEnrichment inserts or refreshes enrichment data keyed by the
// normalized company name. ScrapedAt and NextRefreshAt are stamped here.
func (s *CompanyStorage) UpsertCompanyEnrichment(ctx context.Context, enrichment *models.CompanyEnrichment) error {
	if enrichment.CompanyName == "" {
		return fmt.Errorf("company name is required")
	}

	now := time.Now().UTC()
	normalized := models.NormalizeCompanyName(enrichment.CompanyName)

	specialtiesJSON, err := json.Marshal(enrichment.Specialties)
	if err != nil {
		return fmt.Errorf("failed to marshal specialties: %w", err)
	}

	_, err = s.db.DB().ExecContext(ctx, `
		INSERT INTO company_enrichment (
			company_name, normalized_company_name, company_size, company_industry,
			company_description, company_website, company_headquarters,
			company_founded, company_specialties, company_profile_url,
			scraped_at, next_refresh_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(normalized_company_name) DO UPDATE SET
			company_name = excluded.company_name,
			company_size = excluded.company_size,
			company_industry = excluded.company_industry,
			company_description = excluded.company_description,
			company_website = excluded.company_website,
			company_headquarters = excluded.company_headquarters,
			company_founded = excluded.company_founded,
			company_specialties = excluded.company_specialties,
			company_profile_url = excluded.company_profile_url,
			scraped_at = excluded.scraped_at,
			next_refresh_at = excluded.next_refresh_at`,
		enrichment.CompanyName, normalized, enrichment.Size, enrichment.Industry,
		enrichment.Description, enrichment.Website, enrichment.Headquarters,
		enrichment.Founded, string(specialtiesJSON), enrichment.ProfileURL,
		now.Format(time.RFC3339), now.Add(enrichmentTTL).Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert company enrichment for %s: %w", enrichment.CompanyName, err)
	}

	s.logger.Info().Str("company", enrichment.CompanyName).Msg("Upserted company enrichment")
	return nil
}

// GetCompanyEnrichment looks up enrichment by company name. The name is
// normalized before lookup so "Acme, Inc." and "acme" hit the same row.
// Returns nil if not cached.
func (s *CompanyStorage) GetCompanyEnrichment(ctx context.Context, companyName string) (*models.CompanyEnrichment, error) {
	normalized := models.NormalizeCompanyName(companyName)

	row := s.db.DB().QueryRowContext(ctx, `
		SELECT id, company_name, normalized_company_name, company_size, company_industry,
			company_description, company_website, company_headquarters,
			company_founded, company_specialties, company_profile_url,
			scraped_at, next_refresh_at
		FROM company_enrichment
		WHERE normalized_company_name = ?`, normalized)

	var (
		e               models.CompanyEnrichment
		size            sql.NullString
		industry        sql.NullString
		description     sql.NullString
		website         sql.NullString
		headquarters    sql.NullString
		founded         sql.NullInt64
		specialtiesJSON sql.NullString
		profileURL      sql.NullString
	)

	err := row.Scan(&e.ID, &e.CompanyName, &e.NormalizedCompanyName, &size, &industry,
		&description, &website, &headquarters, &founded, &specialtiesJSON, &profileURL,
		&e.ScrapedAt, &e.NextRefreshAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company enrichment for %s: %w", companyName, err)
	}

	e.Size = size.String
	e.Industry = industry.String
	e.Description = description.String
	e.Website = website.String
	e.Headquarters = headquarters.String
	e.Founded = int(founded.Int64)
	e.ProfileURL = profileURL.String
	if specialtiesJSON.Valid && specialtiesJSON.String != "" {
		if err := json.Unmarshal([]byte(specialtiesJSON.String), &e.Specialties); err != nil {
			return nil, fmt.Errorf("failed to unmarshal specialties for %s: %w", companyName, err)
		}
	}

	return &e, nil
}

// GetCompaniesNeedingRefresh returns company names whose enrichment has
// expired, oldest first
func (s *CompanyStorage) GetCompaniesNeedingRefresh(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT company_name FROM company_enrichment
		WHERE next_refresh_at < ?
		ORDER BY next_refresh_at
		LIMIT ?`, nowISO(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies needing refresh: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
