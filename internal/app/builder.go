package app

import (
	"fmt"

	"kudanforge/internal/broker"
	_ "kudanforge/internal/broker/alpaca" // register the alpaca venue
	"kudanforge/internal/config"
	"kudanforge/internal/logger"
	"kudanforge/internal/risk"
	"kudanforge/internal/runner"
	"kudanforge/internal/store/sqlite"
	httpapi "kudanforge/internal/transport/http"
)

func build(cfg *config.Config, cfgPath string) (*App, error) {
	st, err := sqlite.NewSqliteStore(cfg.App.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	venue, err := broker.New(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("building broker: %w", err)
	}
	logger.Infof("broker venue=%s live_trading=%v", venue.Name(), cfg.App.LiveTrading)

	governor := risk.NewGovernor(st, risk.LimitsFromConfig(cfg.Risk))
	gate := risk.NewGate(cfg.App.LiveTrading, st)

	if cfgPath != "" {
		err := config.WatchRiskLimits(cfgPath, func(rc config.RiskConfig) {
			governor.SetLimits(risk.LimitsFromConfig(rc))
		})
		if err != nil {
			logger.Warnf("risk limit watch disabled: %v", err)
		}
	}

	run := runner.New(venue, st, governor, gate)
	sched := runner.NewScheduler(run, cfg.Scheduler)

	router := httpapi.NewRouter(run, sched, st, gate)
	httpSrv, err := httpapi.NewServer(cfg.App.HTTPAddr, router)
	if err != nil {
		return nil, fmt.Errorf("building http server: %w", err)
	}

	return &App{
		cfg:       cfg,
		st:        st,
		runner:    run,
		scheduler: sched,
		httpSrv:   httpSrv,
	}, nil
}
