package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StatsJobName name of the cache stats job
const StatsJobName = "cache-stats"

// StatsSource is satisfied by *cache.Service
type StatsSource interface {
	Stats(ctx context.Context) cache.Stats
}

// Scheduler wraps a gocron scheduler with logging and a bounded shutdown
type Scheduler struct {
	scheduler gocron.Scheduler
	cfg       Config
	log       *logger.CtxZapLogger
	started   atomic.Bool
}

// NewScheduler creates a stopped scheduler
func NewScheduler(cfg Config, log *logger.CtxZapLogger) (*Scheduler, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, cfg: cfg, log: log}, nil
}

// RegisterTask adds a named job; overlapping runs are skipped and rescheduled
func (s *Scheduler) RegisterTask(name string, def gocron.JobDefinition, task func(ctx context.Context)) (gocron.Job, error) {
	job, err := s.scheduler.NewJob(def,
		gocron.NewTask(func() {
			start := time.Now()
			task(context.Background())
			s.log.Debug("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("register job %s: %w", name, err)
	}
	return job, nil
}

// RegisterStatsReport schedules a periodic "cache stats" log entry
// Returns nil, nil when no schedule is configured
func (s *Scheduler) RegisterStatsReport(src StatsSource) (gocron.Job, error) {
	if !s.cfg.StatsEnabled() {
		return nil, nil
	}

	def := gocron.DurationJob(s.cfg.StatsInterval)
	if s.cfg.StatsCron != "" {
		def = gocron.CronJob(s.cfg.StatsCron, false)
	}

	return s.RegisterTask(StatsJobName, def, func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		stats := src.Stats(ctx)
		s.log.InfoCtx(ctx, "cache stats",
			zap.Int("total_keys", stats.TotalKeys),
			zap.String("memory_usage", stats.MemoryUsage),
			zap.Bool("connected", stats.Connected),
			zap.Int64("hits", stats.Hits),
			zap.Int64("misses", stats.Misses),
		)
	})
}

// Start begins running registered jobs
func (s *Scheduler) Start() {
	if s.started.CompareAndSwap(false, true) {
		s.scheduler.Start()
		s.log.Info("scheduler started", zap.Int("jobs", len(s.scheduler.Jobs())))
	}
}

// Jobs registered jobs
func (s *Scheduler) Jobs() []gocron.Job {
	return s.scheduler.Jobs()
}

// Shutdown waits for running tasks up to ShutdownTimeout
func (s *Scheduler) Shutdown() error {
	done := make(chan error, 1)
	go func() {
		done <- s.scheduler.Shutdown()
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.Error("scheduler shutdown failed", zap.Error(err))
			return err
		}
		s.log.Debug("scheduler stopped")
		return nil
	case <-time.After(s.cfg.ShutdownTimeout):
		s.log.Warn("scheduler shutdown timed out", zap.Duration("timeout", s.cfg.ShutdownTimeout))
		return fmt.Errorf("scheduler shutdown timed out after %v", s.cfg.ShutdownTimeout)
	}
}
