// Package jobs runs the periodic work of the ledger: ROI accrual and the
// settlement sweeper that re-drives requests stuck in approved.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 5 * time.Minute

// Accruer pays due investment returns.
type Accruer interface {
	AccrueAll(ctx context.Context, now time.Time) (int, error)
}

// Sweeper settles requests left in approved.
type Sweeper interface {
	SweepApproved(ctx context.Context, olderThan time.Duration) (int, error)
}

// Config holds cron specs in robfig/cron syntax ("@hourly", "@every 1m", "0 * * * *").
// An empty schedule disables that job.
type Config struct {
	AccrualSchedule string
	SweepSchedule   string
	SweepAge        time.Duration
	JobTimeout      time.Duration
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron    *cron.Cron
	cfg     Config
	accruer Accruer
	sweeper Sweeper
	logger  *slog.Logger
	now     func() time.Time
}

func NewScheduler(cfg Config, accruer Accruer, sweeper Sweeper, logger *slog.Logger) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		// a slow pass must not overlap with the next tick
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Scheduler{
		cron:    c,
		cfg:     cfg,
		accruer: accruer,
		sweeper: sweeper,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the configured jobs and starts the runner. Jobs inherit
// ctx, so cancelling it aborts in-flight passes.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.AccrualSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.AccrualSchedule, func() { s.RunAccrual(ctx) }); err != nil {
			return fmt.Errorf("invalid ROI_ACCRUAL_SCHEDULE %q: %w", s.cfg.AccrualSchedule, err)
		}
	}
	if s.cfg.SweepSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, func() { s.RunSweep(ctx) }); err != nil {
			return fmt.Errorf("invalid SETTLEMENT_SWEEP_SCHEDULE %q: %w", s.cfg.SweepSchedule, err)
		}
	}
	s.cron.Start()
	s.logger.Info("Job scheduler started",
		slog.String("accrual_schedule", s.cfg.AccrualSchedule),
		slog.String("sweep_schedule", s.cfg.SweepSchedule))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Job scheduler stopped")
}

// RunAccrual performs one accrual pass.
func (s *Scheduler) RunAccrual(ctx context.Context) {
	ctx, cancel, logger := s.jobContext(ctx, "roi_accrual")
	defer cancel()

	start := time.Now()
	paid, err := s.accruer.AccrueAll(ctx, s.now())
	if err != nil {
		logger.Error("Accrual pass failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("Accrual pass done", slog.Int("paid", paid), slog.Duration("took", time.Since(start)))
}

// RunSweep performs one settlement sweep.
func (s *Scheduler) RunSweep(ctx context.Context) {
	ctx, cancel, logger := s.jobContext(ctx, "settlement_sweep")
	defer cancel()

	resolved, err := s.sweeper.SweepApproved(ctx, s.cfg.SweepAge)
	if err != nil {
		logger.Error("Settlement sweep failed", slog.String("error", err.Error()))
		return
	}
	if resolved > 0 {
		logger.Info("Settlement sweep resolved requests", slog.Int("resolved", resolved))
	}
}

func (s *Scheduler) jobContext(parent context.Context, job string) (context.Context, context.CancelFunc, *slog.Logger) {
	logger := s.logger.With(slog.String("job", job), slog.String("run_id", uuid.NewString()))
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	return middleware.WithLogger(ctx, logger), cancel, logger
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{slog.String("error", err.Error())}, keysAndValues...)...)
}
