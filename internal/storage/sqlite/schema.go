package sqlite

const schemaSQL = `
-- Jobs table
-- One row per job posting, keyed by the upstream numeric job ID
CREATE TABLE IF NOT EXISTS jobs (
	job_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	normalized_company_name TEXT NOT NULL,
	location TEXT NOT NULL,
	posted_date TEXT NOT NULL,
	posted_date_iso TEXT NOT NULL,
	scraped_at TEXT NOT NULL,
	last_seen TEXT NOT NULL,

	-- Structured salary
	salary TEXT,
	salary_min REAL,
	salary_max REAL,
	salary_currency TEXT,
	equity_offered INTEGER DEFAULT 0,

	-- Decision-making fields
	remote_eligible INTEGER DEFAULT 0,
	visa_sponsorship INTEGER DEFAULT 0,
	skills TEXT, -- JSON array
	easy_apply INTEGER DEFAULT 0,
	number_of_applicants TEXT,

	-- Description insights
	description_summary TEXT,
	key_requirements TEXT, -- JSON array
	key_responsibilities_preview TEXT,

	-- Full description and metadata
	raw_description TEXT,
	employment_type TEXT,
	seniority_level TEXT,
	job_function TEXT,
	industries TEXT,
	benefits_badge TEXT,

	company_url TEXT,
	url TEXT,
	profile_id INTEGER,
	source TEXT DEFAULT 'linkedin_guest_api',

	FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE SET NULL
);

-- Profiles table (scraping configurations)
CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	location TEXT NOT NULL,
	keywords TEXT NOT NULL,
	distance INTEGER DEFAULT 25,
	time_filter TEXT DEFAULT 'r7200',
	refresh_interval INTEGER DEFAULT 7200,
	enabled INTEGER DEFAULT 1,
	last_scraped_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

-- Applications table (one application per job)
CREATE TABLE IF NOT EXISTS applications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL,
	applied_at TEXT NOT NULL,
	status TEXT NOT NULL,
	notes TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,

	FOREIGN KEY (job_id) REFERENCES jobs(job_id) ON DELETE CASCADE,
	UNIQUE(job_id)
);

-- Company enrichment cache, keyed by normalized company name
CREATE TABLE IF NOT EXISTS company_enrichment (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	company_name TEXT NOT NULL UNIQUE,
	normalized_company_name TEXT NOT NULL,
	company_size TEXT,
	company_industry TEXT,
	company_description TEXT,
	company_website TEXT,
	company_headquarters TEXT,
	company_founded INTEGER,
	company_specialties TEXT, -- JSON array
	company_profile_url TEXT,
	scraped_at TEXT NOT NULL,
	next_refresh_at TEXT NOT NULL,

	UNIQUE(normalized_company_name)
);

-- Job changes table (append-only audit log)
CREATE TABLE IF NOT EXISTS job_changes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL,
	changed_at TEXT NOT NULL,
	field_name TEXT NOT NULL,
	old_value TEXT,
	new_value TEXT,

	FOREIGN KEY (job_id) REFERENCES jobs(job_id) ON DELETE CASCADE
);

-- FTS5 index for full-text search over title/company/description/skills
CREATE VIRTUAL TABLE IF NOT EXISTS jobs_fts USING fts5(
	job_id UNINDEXED,
	title,
	company,
	raw_description,
	skills,
	content=jobs,
	content_rowid=rowid
);

-- Triggers to keep the FTS index in sync. jobs_fts is an external-content
-- table, so removals must go through the special 'delete' insert command;
-- a plain DELETE would leave orphaned index entries behind.
CREATE TRIGGER IF NOT EXISTS jobs_fts_insert AFTER INSERT ON jobs BEGIN
	INSERT INTO jobs_fts(rowid, job_id, title, company, raw_description, skills)
	VALUES (new.rowid, new.job_id, new.title, new.company, new.raw_description, new.skills);
END;

CREATE TRIGGER IF NOT EXISTS jobs_fts_update AFTER UPDATE ON jobs BEGIN
	INSERT INTO jobs_fts(jobs_fts, rowid, job_id, title, company, raw_description, skills)
	VALUES ('delete', old.rowid, old.job_id, old.title, old.company, old.raw_description, old.skills);
	INSERT INTO jobs_fts(rowid, job_id, title, company, raw_description, skills)
	VALUES (new.rowid, new.job_id, new.title, new.company, new.raw_description, new.skills);
END;

CREATE TRIGGER IF NOT EXISTS jobs_fts_delete AFTER DELETE ON jobs BEGIN
	INSERT INTO jobs_fts(jobs_fts, rowid, job_id, title, company, raw_description, skills)
	VALUES ('delete', old.rowid, old.job_id, old.title, old.company, old.raw_description, old.skills);
END;

-- Jobs table indexes
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(normalized_company_name);
CREATE INDEX IF NOT EXISTS idx_jobs_location ON jobs(location);
CREATE INDEX IF NOT EXISTS idx_jobs_posted_date ON jobs(posted_date_iso DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_scraped_at ON jobs(scraped_at DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_remote ON jobs(remote_eligible) WHERE remote_eligible = 1;
CREATE INDEX IF NOT EXISTS idx_jobs_visa ON jobs(visa_sponsorship) WHERE visa_sponsorship = 1;
CREATE INDEX IF NOT EXISTS idx_jobs_profile ON jobs(profile_id);

-- Applications table indexes
CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);

-- Company enrichment indexes
CREATE INDEX IF NOT EXISTS idx_company_normalized ON company_enrichment(normalized_company_name);
CREATE INDEX IF NOT EXISTS idx_company_refresh ON company_enrichment(next_refresh_at);

-- Job changes indexes
CREATE INDEX IF NOT EXISTS idx_changes_job_id ON job_changes(job_id, changed_at DESC);
CREATE INDEX IF NOT EXISTS idx_changes_changed_at ON job_changes(changed_at DESC);
`

// initSchema creates all tables, indexes and triggers. Idempotent.
func (s *SQLiteDB) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	if err != nil {
		return err
	}
	s.logger.Info().Msg("Database schema initialized")
	return nil
}
