package scraper

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/common"
	"github.com/ternarybob/laboro/internal/httpclient"
	"github.com/ternarybob/laboro/internal/interfaces"
	"golang.org/x/sync/semaphore"
)

// Service runs the two-stage scrape pipeline: listing pages are fetched
// sequentially, detail pages fan out under a global semaphore shared by all
// profile workers.
type Service struct {
	client  *httpclient.Client
	storage interfaces.StorageManager
	config  *common.Config
	logger  arbor.ILogger
	jobSem  *semaphore.Weighted
}

// NewService creates a scraper service. The detail-fetch semaphore is sized
// by scheduler.job_concurrency and shared across every worker, so total
// upstream pressure stays bounded no matter how many profiles run.
func NewService(logger arbor.ILogger, config *common.Config, storage interfaces.StorageManager) *Service {
	return &Service{
		client:  httpclient.NewClient(logger, &config.Scraper),
		storage: storage,
		config:  config,
		logger:  logger,
		jobSem:  semaphore.NewWeighted(int64(config.Scheduler.JobConcurrency)),
	}
}
