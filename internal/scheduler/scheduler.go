// Package scheduler runs the periodic jobs around aggregate search: seen
// tracker pruning, memory cache sweeps and saved-search watch runs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

type job struct {
	name       string
	every      time.Duration
	runAtStart bool
	task       Task
}

// Scheduler wraps robfig/cron. Jobs are registered with Add and started by Run.
type Scheduler struct {
	cron   *cron.Cron
	chain  cron.Chain
	jobs   []job
	logger *slog.Logger
}

// New creates a scheduler. Overlapping runs of the same job are skipped and
// panics are recovered and logged.
func New(logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl)),
		chain:  cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		logger: logger,
	}
}

// Add registers a job firing every interval. With runAtStart the job also
// runs once as soon as Run is called, without waiting for the first tick.
// Intervals under a second are rounded up by cron.
func (s *Scheduler) Add(name string, every time.Duration, runAtStart bool, task Task) error {
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %v", name, every)
	}
	if task == nil {
		return errors.New("job " + name + ": nil task")
	}
	s.jobs = append(s.jobs, job{name: name, every: every, runAtStart: runAtStart, task: task})
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int { return len(s.jobs) }

// Run starts all jobs and blocks until ctx is cancelled. In-flight jobs are
// allowed to finish before it returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	var immediate []cron.Job
	for _, j := range s.jobs {
		spec := "@every " + j.every.String()
		// The start-up run shares the wrapped job so it cannot overlap the first tick.
		wrapped := s.chain.Then(cron.FuncJob(func() { s.runJob(ctx, j) }))
		if _, err := s.cron.AddJob(spec, wrapped); err != nil {
			return fmt.Errorf("scheduling %s: %w", j.name, err)
		}
		s.logger.Info("scheduled job", "job", j.name, "spec", spec)
		if j.runAtStart {
			immediate = append(immediate, wrapped)
		}
	}

	s.cron.Start()
	s.logger.Info("starting scheduler", "jobs", len(s.jobs))
	var wg sync.WaitGroup
	for _, w := range immediate {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run()
		}()
	}

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-s.cron.Stop().Done()
	wg.Wait()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, j job) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := j.task(ctx); err != nil {
		s.logger.Error("job failed", "job", j.name, "error", err)
		return
	}
	s.logger.Debug("job finished", "job", j.name, "duration", time.Since(start).Round(time.Millisecond))
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
