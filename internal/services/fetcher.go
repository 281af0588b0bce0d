package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rcallahan/fpl-optimizer/internal/providers"
	"github.com/rcallahan/fpl-optimizer/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DataFetcherService refreshes the cached FPL snapshot on a schedule so the
// catalog tracks the once-per-gameweek upstream cadence without every
// request paying the fetch cost.
type DataFetcherService struct {
	client          *providers.FPLClient
	cache           *CacheService
	logger          *logrus.Logger
	cron            *cron.Cron
	mu              sync.Mutex
	isRunning       bool
	lastGameweek    int
	refreshInterval time.Duration
	cacheTTL        time.Duration
}

// NewDataFetcherService creates a new data fetcher service
func NewDataFetcherService(
	client *providers.FPLClient,
	cache *CacheService,
	logger *logrus.Logger,
	refreshInterval time.Duration,
	cacheTTL time.Duration,
) *DataFetcherService {
	return &DataFetcherService{
		client:          client,
		cache:           cache,
		logger:          logger,
		cron:            cron.New(),
		refreshInterval: refreshInterval,
		cacheTTL:        cacheTTL,
	}
}

// Start begins the scheduled refresh.
func (s *DataFetcherService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("data fetcher is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.refreshInterval.String())
	_, err := s.cron.AddFunc(schedule, s.refreshSnapshot)
	if err != nil {
		return fmt.Errorf("failed to schedule data fetcher: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("interval", s.refreshInterval.String()).Info("Data fetcher started")

	// Prime the snapshot right away when the cache is cold, so the first
	// request does not pay the upstream fetch.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if exists, err := s.cache.Exists(ctx, BootstrapCacheKey()); err == nil && !exists {
		go s.refreshSnapshot()
	}

	return nil
}

// Stop halts the scheduled refresh.
func (s *DataFetcherService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Stop()
	s.isRunning = false
	s.logger.Info("Data fetcher stopped")
}

func (s *DataFetcherService) refreshSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	bootstrap, err := s.client.GetBootstrap(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled bootstrap refresh failed")
		return
	}

	if err := s.cache.Set(ctx, BootstrapCacheKey(), bootstrap, s.cacheTTL); err != nil {
		s.logger.WithError(err).Error("Failed to cache bootstrap snapshot")
		return
	}

	gameweek, _ := bootstrap.CurrentGameweek()
	if gameweek > 0 {
		if fixtures, err := s.client.GetFixtures(ctx, gameweek); err == nil {
			if err := s.cache.Set(ctx, FixturesCacheKey(gameweek), fixtures, s.cacheTTL); err != nil {
				s.logger.WithError(err).Warn("Failed to cache fixtures")
			}
		} else {
			s.logger.WithError(err).Warn("Scheduled fixtures refresh failed")
		}
	}

	// Drop the previous gameweek's fixtures once the window rolls over.
	s.mu.Lock()
	previous := s.lastGameweek
	s.lastGameweek = gameweek
	s.mu.Unlock()
	if previous > 0 && previous != gameweek {
		if err := s.cache.Delete(ctx, FixturesCacheKey(previous)); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate stale fixtures")
		}
	}

	logger.WithGameweek(gameweek).Info("FPL snapshot refreshed")
}
