// Package scheduler runs scrapes on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron expression. Runs never overlap: a tick that
// fires while the previous run is still going is skipped.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	job        Job
	cron       string
	runOnStart bool
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler for job. Cron expressions are evaluated in loc.
func New(cron string, runOnStart bool, loc *time.Location, job Job, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler:  s,
		job:        job,
		cron:       cron,
		runOnStart: runOnStart,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start schedules the job and starts the underlying scheduler. When
// runOnStart is set the job also runs immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Cron(s.cron).Do(s.run); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cron, err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "cron", s.cron, "run_on_start", s.runOnStart)

	if s.runOnStart {
		s.scheduler.RunAll()
	}
	return nil
}

// NextRun reports when the job fires next.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// Stop cancels a run in progress and stops future runs.
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	if err := s.job(s.ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
	}
}
