// Package scheduler runs a job immediately and then at a fixed
// interval until the context is cancelled.
package scheduler

import (
	"context"
	"sync"
	"time"

	"mediasync/pkg/logger"
)

// Job is a unit of work the scheduler triggers.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// Scheduler triggers a job on a fixed interval. Triggers that fire
// while a run is still in progress are dropped, never queued, so slow
// runs can never build a backlog.
type Scheduler struct {
	interval time.Duration
	job      Job
	log      logger.Logger
	running  sync.Mutex
	wg       sync.WaitGroup
}

// New creates a scheduler for job.
func New(interval time.Duration, job Job, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scheduler{
		interval: interval,
		job:      job,
		log:      log,
	}
}

// Start runs the job once immediately, then on every interval tick,
// blocking until ctx is cancelled. It waits for an in-flight run to
// finish before returning.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.InfoWithFields("scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})

	s.trigger(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

// trigger starts one run unless a previous run is still in progress,
// in which case the trigger is dropped.
func (s *Scheduler) trigger(ctx context.Context) {
	if !s.running.TryLock() {
		s.log.Warn("previous run still in progress, skipping trigger")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Unlock()

		start := time.Now()
		if err := s.job.Run(ctx); err != nil {
			s.log.WithError(err).Error("scheduled run failed")
			return
		}
		s.log.InfoWithFields("scheduled run finished", map[string]interface{}{
			"elapsed": time.Since(start).String(),
		})
	}()
}
