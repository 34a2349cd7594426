package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the worker on a fixed cadence and relays manual triggers
// from the ops API. Overlap protection lives in Worker.RunCycle.
type Scheduler struct {
	worker   *Worker
	interval time.Duration
	cron     *cron.Cron
	trigger  chan struct{}
	log      *slog.Logger
}

// NewScheduler creates a scheduler firing every interval.
func NewScheduler(w *Worker, interval time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		worker:   w,
		interval: interval,
		cron:     cron.New(),
		trigger:  make(chan struct{}, 1),
		log:      log,
	}
}

// Start runs an immediate first cycle, then fires on the cron cadence until
// the context is cancelled. Manual triggers run between cron fires.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("scheduling poll cycle: %w", err)
	}

	go func() {
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.trigger:
				s.log.Info("manual cycle trigger")
				s.run(ctx)
			}
		}
	}()

	s.cron.Start()
	s.log.Info("scheduler started", "interval", s.interval)
	return nil
}

// Trigger requests an out-of-band cycle. Reports false when a trigger is
// already pending.
func (s *Scheduler) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Stop halts the cadence and waits for an in-flight cron fire to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.worker.RunCycle(ctx); err != nil {
		s.log.Error("cycle failed", "error", err)
	}
}
