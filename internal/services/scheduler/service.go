package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/common"
	"github.com/ternarybob/laboro/internal/interfaces"
	"github.com/ternarybob/laboro/internal/models"
)

// worker is one running scrape loop bound to a profile
type worker struct {
	profile *models.Profile
	cancel  context.CancelFunc
	done    chan struct{}
}

// Service runs one background worker per enabled profile and reconciles the
// worker set against the profiles table on a fixed interval. Profile edits
// take effect within one reload period without a restart.
type Service struct {
	storage interfaces.StorageManager
	scraper interfaces.ScraperService
	config  *common.SchedulerConfig
	logger  arbor.ILogger

	mu      sync.Mutex
	workers map[int64]*worker
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewService creates a scheduler service
func NewService(logger arbor.ILogger, config *common.SchedulerConfig, storage interfaces.StorageManager, scraper interfaces.ScraperService) *Service {
	return &Service{
		storage: storage,
		scraper: scraper,
		config:  config,
		logger:  logger,
		workers: make(map[int64]*worker),
	}
}

// Start seeds the default profile on an empty table, spawns a worker per
// enabled profile, and begins the reconciliation loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info().Msg("Starting scheduler service")

	if _, err := s.storage.ProfileStorage().SeedDefaultProfile(runCtx); err != nil {
		return err
	}

	profiles, err := s.storage.ProfileStorage().ListProfiles(runCtx, true)
	if err != nil {
		return err
	}
	for _, profile := range profiles {
		s.spawnWorker(runCtx, profile)
	}

	s.wg.Add(1)
	go s.reloadLoop(runCtx)

	s.logger.Info().Int("workers", len(profiles)).Msg("Scheduler started")
	return nil
}

// Stop cancels every worker and waits for them to drain. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	s.logger.Info().Msg("Stopping scheduler service")
	cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.workers = make(map[int64]*worker)
	s.mu.Unlock()

	s.logger.Info().Msg("Scheduler stopped")
}

// RunningWorkers returns the profile IDs with an active worker, sorted
func (s *Service) RunningWorkers() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// spawnWorker starts a worker loop for a profile. Spawning an already
// running profile is a warned no-op.
func (s *Service) spawnWorker(ctx context.Context, profile *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workers[profile.ID]; exists {
		s.logger.Warn().Int64("profile_id", profile.ID).Msg("Worker already exists for profile")
		return
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w := &worker{
		profile: profile,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.workers[profile.ID] = w

	s.wg.Add(1)
	go s.runWorker(workerCtx, w)

	s.logger.Info().Int64("profile_id", profile.ID).Str("profile", profile.Name).Msg("Spawned worker")
}

// killWorker cancels a worker and waits for its loop to exit
func (s *Service) killWorker(profileID int64) {
	s.mu.Lock()
	w, exists := s.workers[profileID]
	if exists {
		delete(s.workers, profileID)
	}
	s.mu.Unlock()

	if !exists {
		return
	}

	w.cancel()
	<-w.done
	s.logger.Info().Int64("profile_id", profileID).Msg("Killed worker")
}

// reloadLoop polls the profiles table and reconciles the worker set:
// spawn for new enabled profiles, kill for deleted or disabled ones.
func (s *Service) reloadLoop(ctx context.Context) {
	defer s.wg.Done()

	interval := s.config.ReloadInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		profiles, err := s.storage.ProfileStorage().ListProfiles(ctx, false)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to reload profiles")
			continue
		}

		current := make(map[int64]*models.Profile, len(profiles))
		for _, p := range profiles {
			current[p.ID] = p
		}

		s.mu.Lock()
		running := make(map[int64]struct{}, len(s.workers))
		for id := range s.workers {
			running[id] = struct{}{}
		}
		s.mu.Unlock()

		// Spawn workers for new enabled profiles
		for id, profile := range current {
			if _, ok := running[id]; !ok && profile.Enabled {
				s.spawnWorker(ctx, profile)
			}
		}

		// Kill workers for deleted profiles
		for id := range running {
			if _, ok := current[id]; !ok {
				s.killWorker(id)
			}
		}

		// Kill workers for profiles that were disabled
		for id := range running {
			if profile, ok := current[id]; ok && !profile.Enabled {
				s.killWorker(id)
			}
		}
	}
}

// runWorker is the per-profile loop: scrape, stamp last run, sleep for the
// refresh interval, repeat. Errors back off without killing the worker.
func (s *Service) runWorker(ctx context.Context, w *worker) {
	defer s.wg.Done()
	defer close(w.done)

	profile := w.profile
	s.logger.Info().Int64("profile_id", profile.ID).Msg("Worker started")

	refresh := time.Duration(profile.RefreshInterval) * time.Second
	if refresh < s.config.MinRefreshInterval {
		refresh = s.config.MinRefreshInterval
	}

	for {
		if ctx.Err() != nil {
			s.logger.Info().Int64("profile_id", profile.ID).Msg("Worker cancelled")
			return
		}

		result, err := s.scraper.ScrapeProfile(ctx, profile)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info().Int64("profile_id", profile.ID).Msg("Worker cancelled")
				return
			}
			s.logger.Error().Err(err).Int64("profile_id", profile.ID).Msg("Scrape cycle failed")

			// Back off without waiting the full refresh interval
			backoff := refresh
			if s.config.ErrorBackoffCap > 0 && backoff > s.config.ErrorBackoffCap {
				backoff = s.config.ErrorBackoffCap
			}
			if !sleepCtx(ctx, backoff) {
				return
			}
			continue
		}

		s.logger.Info().Int64("profile_id", profile.ID).
			Int("saved", result.DetailsSaved).Msg("Scrape cycle finished")

		if err := s.storage.ProfileStorage().UpdateProfileLastRun(ctx, profile.ID); err != nil {
			s.logger.Error().Err(err).Int64("profile_id", profile.ID).Msg("Failed to stamp last run")
		}

		if !sleepCtx(ctx, refresh) {
			return
		}
	}
}

// sleepCtx sleeps for d, returning false if the context was cancelled first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
