package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"kudanforge/internal/config"
	"kudanforge/internal/logger"
)

// Scheduler drives the runner on a fixed interval. It is an explicit
// idle/running state machine: Start is a no-op when disabled or already
// running, Stop cancels the loop and waits for it to exit. An in-flight
// cycle is never interrupted; Stop only prevents new ticks.
type Scheduler struct {
	runner   *Runner
	interval time.Duration
	enabled  bool

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(r *Runner, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		runner:   r,
		interval: time.Duration(cfg.IntervalSeconds) * time.Second,
		enabled:  cfg.Enabled,
	}
}

// Start transitions idle -> running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.loop(ctx)
	logger.Infof("scheduler started interval=%s", s.interval)
}

// Stop transitions running -> idle, returning once the loop has exited.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	logger.Infof("scheduler stopped")
}

// Running reports whether the background loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The cycle runs detached from the scheduler context so that
			// Stop never cuts a cycle off mid-submission.
			_, err := s.runner.RunOnce(context.WithoutCancel(ctx))
			switch {
			case errors.Is(err, ErrCycleRunning):
				logger.Debugf("scheduler tick skipped: cycle already running")
			case err != nil:
				logger.Errorf("scheduled cycle failed: %v", err)
			}
		}
	}
}
