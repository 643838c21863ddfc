package sqlite

import (
	"database/sql"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/common"
	"github.com/ternarybob/laboro/internal/interfaces"
)

// Manager implements the StorageManager interface
type Manager struct {
	db          *SQLiteDB
	job         interfaces.JobStorage
	profile     interfaces.ProfileStorage
	application interfaces.ApplicationStorage
	company     interfaces.CompanyStorage
	change      interfaces.ChangeStorage
	analytics   interfaces.AnalyticsStorage
	logger      arbor.ILogger
}

// NewManager creates a new SQLite storage manager
func NewManager(logger arbor.ILogger, config *common.SQLiteConfig) (interfaces.StorageManager, error) {
	db, err := NewSQLiteDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:          db,
		job:         NewJobStorage(db, logger),
		profile:     NewProfileStorage(db, logger),
		application: NewApplicationStorage(db, logger),
		company:     NewCompanyStorage(db, logger),
		change:      NewChangeStorage(db, logger),
		analytics:   NewAnalyticsStorage(db, logger),
		logger:      logger,
	}, nil
}

// JobStorage returns the job storage interface
func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.job
}

// ProfileStorage returns the profile storage interface
func (m *Manager) ProfileStorage() interfaces.ProfileStorage {
	return m.profile
}

// ApplicationStorage returns the application storage interface
func (m *Manager) ApplicationStorage() interfaces.ApplicationStorage {
	return m.application
}

// CompanyStorage returns the company enrichment storage interface
func (m *Manager) CompanyStorage() interfaces.CompanyStorage {
	return m.company
}

// ChangeStorage returns the change log storage interface
func (m *Manager) ChangeStorage() interfaces.ChangeStorage {
	return m.change
}

// AnalyticsStorage returns the analytics storage interface
func (m *Manager) AnalyticsStorage() interfaces.AnalyticsStorage {
	return m.analytics
}

// DB returns the underlying database connection
func (m *Manager) DB() *sql.DB {
	if m.db != nil {
		return m.db.DB()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
