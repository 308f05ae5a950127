package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"
)

// CycleRunner is the engine surface the scheduler drives.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// Scheduler runs cycles forever, sleeping a uniformly random interval
// between the configured bounds after each one. The jitter keeps the
// polling pattern from looking like a fixed-rate bot to the scraped site.
type Scheduler struct {
	runner CycleRunner
	min    time.Duration
	max    time.Duration

	out     io.Writer
	log     *slog.Logger
	randFn  func() float64
	sleepFn func(context.Context, time.Duration) error
}

// NewScheduler creates a Scheduler with the given interval bounds.
func NewScheduler(runner CycleRunner, min, max time.Duration, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		runner:  runner,
		min:     min,
		max:     max,
		out:     os.Stdout,
		log:     slog.Default(),
		randFn:  rand.Float64,
		sleepFn: sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.log = l
	}
}

// WithSchedulerOutput redirects console output, used by tests.
func WithSchedulerOutput(w io.Writer) SchedulerOption {
	return func(s *Scheduler) {
		s.out = w
	}
}

// WithRandFunc overrides the interval jitter source, used by tests.
func WithRandFunc(f func() float64) SchedulerOption {
	return func(s *Scheduler) {
		s.randFn = f
	}
}

// WithSleepFunc overrides the inter-cycle sleep, used by tests.
func WithSleepFunc(f func(context.Context, time.Duration) error) SchedulerOption {
	return func(s *Scheduler) {
		s.sleepFn = f
	}
}

// Run loops until the context is canceled. Cycle errors are warnings, not
// exits: the next interval retries from scratch.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.runner.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("cycle failed", "error", err)
		}

		interval := s.nextInterval()
		fmt.Fprintf(s.out, "⏳  Running again in %.1f minutes\n\n", interval.Minutes())

		if err := s.sleepFn(ctx, interval); err != nil {
			return err
		}
	}
}

func (s *Scheduler) nextInterval() time.Duration {
	spread := s.max - s.min
	if spread <= 0 {
		return s.min
	}
	return s.min + time.Duration(s.randFn()*float64(spread))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
