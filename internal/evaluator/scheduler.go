package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs sweeps on a cron schedule. Overlapping runs are prevented by
// a lock: if a sweep is still going when the next tick fires, the tick is
// skipped (re-running later is idempotent anyway).
type Scheduler struct {
	sweeper  *Sweeper
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	sweeping sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a sweep scheduler for the given cron expression.
func NewScheduler(sweeper *Sweeper, schedule string) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "sla.scheduler"),
	}
}

// Start validates the schedule and begins running sweeps. The context bounds
// every sweep; Stop is called automatically when it is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("sweep scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runSweep(ctx context.Context) {
	if !s.sweeping.TryLock() {
		s.logger.Warn("previous sweep still running, skipping tick")
		return
	}
	defer s.sweeping.Unlock()

	if err := s.sweeper.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("sweep failed", "error", err)
	}
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.running = false
		s.logger.Info("sweep scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is started.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep time, or nil when not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
