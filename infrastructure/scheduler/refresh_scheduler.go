package scheduler

import (
	"context"
	"time"

	"shorts-player/domain/model"
	"shorts-player/infrastructure/logger"
	"shorts-player/infrastructure/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
)

const (
	defaultRefreshSpec = "0 */6 * * *"
	defaultStatsSpec   = "@hourly"
	defaultJobTimeout  = 10 * time.Minute
)

// Refresher is the part of the video use case driven on a timer.
type Refresher interface {
	RefreshIfStale(ctx context.Context) (*model.RefreshResult, error)
	StoreStats(ctx context.Context) (*model.StoreStats, error)
}

// RefreshScheduler triggers cache refreshes and store stats snapshots on cron schedules.
type RefreshScheduler struct {
	refresher   Refresher
	cron        *cron.Cron
	refreshSpec string
	statsSpec   string
	jobTimeout  time.Duration
}

// Option customises the RefreshScheduler.
type Option func(*RefreshScheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *RefreshScheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithRefreshSchedule overrides the cron expression for cache refreshes.
func WithRefreshSchedule(spec string) Option {
	return func(s *RefreshScheduler) {
		if spec != "" {
			s.refreshSpec = spec
		}
	}
}

// WithStatsSchedule overrides the cron expression for store stats snapshots.
func WithStatsSchedule(spec string) Option {
	return func(s *RefreshScheduler) {
		if spec != "" {
			s.statsSpec = spec
		}
	}
}

// WithJobTimeout bounds a single scheduled run.
func WithJobTimeout(d time.Duration) Option {
	return func(s *RefreshScheduler) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

func NewRefreshScheduler(refresher Refresher, opts ...Option) *RefreshScheduler {
	s := &RefreshScheduler{
		refresher:   refresher,
		refreshSpec: defaultRefreshSpec,
		statsSpec:   defaultStatsSpec,
		jobTimeout:  defaultJobTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers both jobs and launches the cron loop.
func (s *RefreshScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.refreshSpec, s.runJob(s.refresh)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.statsSpec, s.runJob(s.snapshot)); err != nil {
		return err
	}
	s.cron.Start()
	logger.GetLogger().WithFields(map[string]interface{}{
		"refreshSchedule": s.refreshSpec,
		"statsSchedule":   s.statsSpec,
	}).Info("Refresh scheduler started")
	return nil
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (s *RefreshScheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce executes both jobs sequentially.
func (s *RefreshScheduler) RunOnce(ctx context.Context) error {
	var errs error
	errs = multierr.Append(errs, s.refresh(ctx))
	errs = multierr.Append(errs, s.snapshot(ctx))
	return errs
}

func (s *RefreshScheduler) runJob(job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Scheduled job failed")
		}
	}
}

func (s *RefreshScheduler) refresh(ctx context.Context) error {
	res, err := s.refresher.RefreshIfStale(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"refreshed":  res.Refreshed,
		"reason":     res.Reason,
		"generation": res.Generation,
		"count":      res.Count,
	}).Info("Scheduled refresh finished")
	return nil
}

func (s *RefreshScheduler) snapshot(ctx context.Context) error {
	stats, err := s.refresher.StoreStats(ctx)
	if err != nil {
		return err
	}
	metrics.CachedVideos.Set(float64(stats.Records))
	logger.GetLogger().WithFields(map[string]interface{}{
		"driver":      stats.Driver,
		"records":     stats.Records,
		"generation":  stats.Generation,
		"dataSize":    stats.DataSize,
		"storageSize": stats.StorageSize,
		"indexes":     stats.Indexes,
	}).Debug("Video store stats")
	return nil
}
