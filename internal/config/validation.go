package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.Broker.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Scheduler.validate(); err != nil {
		return err
	}
	return nil
}

func (b *BrokerConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(b.Venue)) {
	case "mock":
	case "alpaca":
		if strings.TrimSpace(b.APIKey) == "" || strings.TrimSpace(b.SecretKey) == "" {
			return fmt.Errorf("broker.venue=alpaca requires api_key and secret_key")
		}
	default:
		return fmt.Errorf("unsupported broker.venue: %s", b.Venue)
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if r.MaxDrawdownFromPeak <= 0 || r.MaxDrawdownFromPeak > 1 {
		return fmt.Errorf("risk.max_drawdown_from_peak must be in (0,1]")
	}
	if r.MaxDailyLoss <= 0 || r.MaxDailyLoss > 1 {
		return fmt.Errorf("risk.max_daily_loss must be in (0,1]")
	}
	if r.PerTradeRisk <= 0 {
		return fmt.Errorf("risk.per_trade_risk must be > 0")
	}
	if r.MaxGrossExposure <= 0 {
		return fmt.Errorf("risk.max_gross_exposure must be > 0")
	}
	if r.MaxOrdersPerHour <= 0 {
		return fmt.Errorf("risk.max_orders_per_hour must be > 0")
	}
	return nil
}

func (s *SchedulerConfig) validate() error {
	if s.IntervalSeconds <= 0 {
		return fmt.Errorf("scheduler.interval_seconds must be > 0")
	}
	return nil
}
