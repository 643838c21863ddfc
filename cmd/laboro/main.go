package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/common"
	"github.com/ternarybob/laboro/internal/interfaces"
	"github.com/ternarybob/laboro/internal/services/enrichment"
	"github.com/ternarybob/laboro/internal/services/scheduler"
	"github.com/ternarybob/laboro/internal/services/scraper"
	"github.com/ternarybob/laboro/internal/storage/sqlite"
)

var (
	configFile   = flag.String("config", "", "Configuration file path (default: laboro.toml)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Laboro version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup order: config -> logger -> banner -> storage -> services
	configPath := *configFile
	if configPath == "" {
		configPath = os.Getenv("LABORO_CONFIG")
	}
	if configPath == "" {
		if _, err := os.Stat("laboro.toml"); err == nil {
			configPath = "laboro.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("environment", config.Environment).
		Str("database", config.Storage.SQLite.Path).
		Msg("Starting laboro daemon")

	storageManager, err := sqlite.NewManager(logger, &config.Storage.SQLite)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
		os.Exit(1)
	}

	scraperService := scraper.NewService(logger, config, storageManager)
	schedulerService := scheduler.NewService(logger, &config.Scheduler, storageManager, scraperService)
	enrichmentService := enrichment.NewService(logger, config, storageManager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := schedulerService.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
		storageManager.Close()
		os.Exit(1)
	}

	maintenance := startMaintenance(ctx, config, storageManager, enrichmentService, logger)

	// Block until SIGINT/SIGTERM, then drain in reverse start order
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("Shutting down")

	cancel()
	schedulerService.Stop()
	if maintenance != nil {
		<-maintenance.Stop().Done()
	}
	if err := storageManager.Close(); err != nil {
		logger.Warn().Err(err).Msg("Storage close failed")
	}

	logger.Info().Msg("Shutdown complete")
}

// startMaintenance registers background upkeep jobs: old-job purge, FTS index
// rebuild, and company enrichment refresh. Returns nil when maintenance is
// disabled.
func startMaintenance(ctx context.Context, config *common.Config, storage interfaces.StorageManager, enricher *enrichment.Service, logger arbor.ILogger) *cron.Cron {
	if !config.Maintenance.Enabled {
		logger.Info().Msg("Maintenance jobs disabled")
		return nil
	}

	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(config.Maintenance.PurgeSchedule, func() {
		deleted, err := storage.JobStorage().DeleteOldJobs(ctx, config.Maintenance.PurgeMaxAgeDays)
		if err != nil {
			logger.Error().Err(err).Msg("Old-job purge failed")
			return
		}
		logger.Info().Int64("deleted", deleted).Int("max_age_days", config.Maintenance.PurgeMaxAgeDays).Msg("Purged old jobs")
	}); err != nil {
		logger.Error().Err(err).Str("schedule", config.Maintenance.PurgeSchedule).Msg("Invalid purge schedule")
	}

	if _, err := c.AddFunc(config.Maintenance.FTSRebuildSchedule, func() {
		if err := storage.JobStorage().RebuildFTS(ctx); err != nil {
			logger.Error().Err(err).Msg("FTS rebuild failed")
			return
		}
		logger.Info().Msg("FTS index rebuilt")
	}); err != nil {
		logger.Error().Err(err).Str("schedule", config.Maintenance.FTSRebuildSchedule).Msg("Invalid FTS rebuild schedule")
	}

	if _, err := c.AddFunc(config.Maintenance.EnrichmentSchedule, func() {
		refreshed, err := enricher.RefreshStaleCompanies(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Enrichment refresh failed")
			return
		}
		logger.Info().Int("refreshed", refreshed).Msg("Company enrichment refreshed")
	}); err != nil {
		logger.Error().Err(err).Str("schedule", config.Maintenance.EnrichmentSchedule).Msg("Invalid enrichment schedule")
	}

	c.Start()
	logger.Info().Msg("Maintenance jobs scheduled")
	return c
}
