// Package app assembles the system: config in, running services out.
package app

import (
	"context"
	"fmt"

	"kudanforge/internal/config"
	"kudanforge/internal/logger"
	"kudanforge/internal/runner"
	"kudanforge/internal/store"
	httpapi "kudanforge/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg       *config.Config
	st        store.Store
	runner    *runner.Runner
	scheduler *runner.Scheduler
	httpSrv   *httpapi.Server
}

// New builds the application from config without starting anything.
// cfgPath, when non-empty, is watched for risk-limit hot reloads.
func New(cfg *config.Config, cfgPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return build(cfg, cfgPath)
}

// Run serves HTTP and drives the scheduler until ctx is cancelled. An
// in-flight cycle finishes before shutdown completes.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer func() {
		if err := a.st.Close(); err != nil {
			logger.Warnf("store close failed: %v", err)
		}
	}()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.httpSrv.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	a.scheduler.Start()
	group.Go(func() error {
		<-ctx.Done()
		a.scheduler.Stop()
		return nil
	})

	return group.Wait()
}

// Runner exposes the orchestrator (replay and test harnesses).
func (a *App) Runner() *runner.Runner {
	if a == nil {
		return nil
	}
	return a.runner
}
