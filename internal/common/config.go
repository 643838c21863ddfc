package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Scraper     ScraperConfig     `toml:"scraper"`
	Scheduler   SchedulerConfig   `toml:"scheduler"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
	Logging     LoggingConfig     `toml:"logging"`
}

// ServerConfig configures the outer tool server transport.
type ServerConfig struct {
	Transport string `toml:"transport" validate:"oneof=stdio sse streamable-http"` // MCP transport mode
	Host      string `toml:"host"`
	Port      int    `toml:"port" validate:"gte=0,lte=65535"`
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
}

// SQLiteConfig represents SQLite-specific configuration
type SQLiteConfig struct {
	Path          string `toml:"path"`            // Database file path
	CacheSizeMB   int    `toml:"cache_size_mb"`   // Page cache size in MB
	WALMode       bool   `toml:"wal_mode"`        // Enable write-ahead logging
	BusyTimeoutMS int    `toml:"busy_timeout_ms"` // Lock wait timeout in milliseconds
}

// ScraperConfig contains polite-fetch and pagination settings
type ScraperConfig struct {
	BaseURL          string        `toml:"base_url" validate:"url"` // Guest API base URL
	RequestTimeout   time.Duration `toml:"request_timeout"`         // Per-request HTTP timeout
	MaxRetries       int           `toml:"max_retries" validate:"gte=1"`
	BackoffBaseDelay time.Duration `toml:"backoff_base_delay"` // Base for exponential backoff
	JitterMin        time.Duration `toml:"jitter_min"`         // Pre-request pacing floor
	JitterMax        time.Duration `toml:"jitter_max"`         // Pre-request pacing ceiling
	PagesPerScrape   int           `toml:"pages_per_scrape" validate:"gte=1,lte=10"`
	PageSize         int           `toml:"page_size"` // Listing items per page (upstream fixed at 10)
}

// SchedulerConfig contains worker scheduler settings
type SchedulerConfig struct {
	JobConcurrency     int           `toml:"job_concurrency" validate:"gte=1"`     // Global detail-fetch semaphore permits
	CompanyConcurrency int           `toml:"company_concurrency" validate:"gte=1"` // Global enrichment semaphore permits
	ReloadInterval     time.Duration `toml:"reload_interval"`                      // Profile reconciliation interval
	MinRefreshInterval time.Duration `toml:"min_refresh_interval"`                 // Floor for profile refresh cadence
	ErrorBackoffCap    time.Duration `toml:"error_backoff_cap"`                    // Cap on per-worker error backoff
}

// MaintenanceConfig contains cron schedules for background upkeep
type MaintenanceConfig struct {
	Enabled            bool   `toml:"enabled"`
	PurgeSchedule      string `toml:"purge_schedule"`       // Cron expression for old-job purge
	PurgeMaxAgeDays    int    `toml:"purge_max_age_days"`   // Jobs older than this are purged
	FTSRebuildSchedule string `toml:"fts_rebuild_schedule"` // Cron expression for FTS index rebuild
	EnrichmentSchedule string `toml:"enrichment_schedule"`  // Cron expression for company enrichment refresh
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability; only
// user-facing settings should be exposed in laboro.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Transport: "stdio",
			Host:      "0.0.0.0",
			Port:      10000,
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:          DefaultDatabasePath(),
				CacheSizeMB:   64,
				WALMode:       true,
				BusyTimeoutMS: 30000, // Readers must outwait a full upsert batch
			},
		},
		Scraper: ScraperConfig{
			BaseURL:          "https://www.linkedin.com/jobs-guest/jobs/api",
			RequestTimeout:   30 * time.Second,
			MaxRetries:       3,
			BackoffBaseDelay: time.Second,
			JitterMin:        time.Second,
			JitterMax:        3 * time.Second,
			PagesPerScrape:   5,
			PageSize:         10,
		},
		Scheduler: SchedulerConfig{
			JobConcurrency:     3, // Conservative to avoid 429s
			CompanyConcurrency: 2,
			ReloadInterval:     30 * time.Second,
			MinRefreshInterval: time.Hour,
			ErrorBackoffCap:    5 * time.Minute,
		},
		Maintenance: MaintenanceConfig{
			Enabled:            true,
			PurgeSchedule:      "0 30 4 * * *", // Daily at 04:30
			PurgeMaxAgeDays:    90,
			FTSRebuildSchedule: "0 0 5 * * 0", // Weekly, Sunday 05:00
			EnrichmentSchedule: "0 15 */6 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// DefaultDatabasePath returns the per-user cache location for the job database
func DefaultDatabasePath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", "data", "laboro.db")
	}
	return filepath.Join(cacheDir, "laboro", "jobs.db")
}

// LoadFromFile loads configuration from a TOML file, applying defaults for
// missing values and environment overrides on top. A missing file is not an
// error; defaults are used.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Environment variables override all file values
	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks configuration constraints via struct tags
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Scraper.JitterMin > c.Scraper.JitterMax {
		return fmt.Errorf("scraper jitter_min (%s) exceeds jitter_max (%s)", c.Scraper.JitterMin, c.Scraper.JitterMax)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LABORO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// TRANSPORT/HOST/PORT match the deployment contract of the tool server
	if transport := os.Getenv("TRANSPORT"); transport != "" {
		config.Server.Transport = transport
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if dbPath := os.Getenv("LABORO_DB_PATH"); dbPath != "" {
		config.Storage.SQLite.Path = dbPath
	}

	if level := os.Getenv("LABORO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if baseURL := os.Getenv("LABORO_BASE_URL"); baseURL != "" {
		config.Scraper.BaseURL = baseURL
	}
}
