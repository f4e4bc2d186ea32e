package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingTask struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (c *countingTask) run(ctx context.Context) error {
	c.calls.Add(1)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
		}
	}
	return c.err
}

// startScheduler runs s in the background and returns a stop func that
// cancels it and waits for Run to return.
func startScheduler(t *testing.T, s *Scheduler) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	return func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("expected nil error on cancel, got: %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Fatal("scheduler did not return within 3s after cancel")
		}
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestAdd_Validation(t *testing.T) {
	s := New(discardLogger())
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name    string
		every   time.Duration
		task    Task
		wantErr bool
	}{
		{"valid", time.Minute, noop, false},
		{"zero interval", 0, noop, true},
		{"negative interval", -time.Second, noop, true},
		{"nil task", time.Minute, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.name, tt.every, false, tt.task)
			if (err != nil) != tt.wantErr {
				t.Errorf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	s := New(discardLogger())
	task := &countingTask{}
	if err := s.Add("prune", time.Hour, false, task.run); err != nil {
		t.Fatal(err)
	}

	stop := startScheduler(t, s)
	time.Sleep(50 * time.Millisecond)
	stop()

	if got := task.calls.Load(); got != 0 {
		t.Errorf("task calls = %d, want 0 before the first tick", got)
	}
}

func TestRun_RunAtStart(t *testing.T) {
	s := New(discardLogger())
	startup := &countingTask{}
	later := &countingTask{}
	if err := s.Add("watch", time.Hour, true, startup.run); err != nil {
		t.Fatal(err)
	}
	if err := s.Add("sweep", time.Hour, false, later.run); err != nil {
		t.Fatal(err)
	}

	stop := startScheduler(t, s)
	ok := waitFor(t, time.Second, func() bool { return startup.calls.Load() == 1 })
	stop()

	if !ok {
		t.Errorf("startup task calls = %d, want 1", startup.calls.Load())
	}
	if got := later.calls.Load(); got != 0 {
		t.Errorf("non-startup task calls = %d, want 0", got)
	}
}

func TestRun_FiresOnInterval(t *testing.T) {
	s := New(discardLogger())
	task := &countingTask{}
	if err := s.Add("prune", time.Second, false, task.run); err != nil {
		t.Fatal(err)
	}

	stop := startScheduler(t, s)
	ok := waitFor(t, 2500*time.Millisecond, func() bool { return task.calls.Load() >= 1 })
	stop()

	if !ok {
		t.Error("task did not fire within 2.5s on a 1s interval")
	}
}

func TestRun_FailingTaskKeepsFiring(t *testing.T) {
	s := New(discardLogger())
	failing := &countingTask{err: errors.New("redis down")}
	if err := s.Add("sweep", time.Second, true, failing.run); err != nil {
		t.Fatal(err)
	}

	stop := startScheduler(t, s)
	ok := waitFor(t, 2500*time.Millisecond, func() bool { return failing.calls.Load() >= 2 })
	stop()

	if !ok {
		t.Errorf("failing task calls = %d, want >= 2", failing.calls.Load())
	}
}

func TestRun_PanicRecovered(t *testing.T) {
	s := New(discardLogger())
	var calls atomic.Int32
	panicky := func(context.Context) error {
		calls.Add(1)
		panic("boom")
	}
	if err := s.Add("panicky", time.Hour, true, panicky); err != nil {
		t.Fatal(err)
	}

	stop := startScheduler(t, s)
	ok := waitFor(t, time.Second, func() bool { return calls.Load() == 1 })
	stop()

	if !ok {
		t.Error("panicking task never ran")
	}
}

func TestRun_OverlappingRunSkipped(t *testing.T) {
	s := New(discardLogger())
	slow := &countingTask{delay: 1500 * time.Millisecond}
	if err := s.Add("watch", time.Second, true, slow.run); err != nil {
		t.Fatal(err)
	}

	stop := startScheduler(t, s)
	// The start-up run is still busy when the first tick fires at ~1s.
	time.Sleep(1200 * time.Millisecond)
	got := slow.calls.Load()
	stop()

	if got != 1 {
		t.Errorf("calls while first run in flight = %d, want 1", got)
	}
}
