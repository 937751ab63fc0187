package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  env: prod
  log_level: debug
  http_addr: ":9000"
  db_path: /tmp/forge.sqlite
  live_trading: true
broker:
  venue: alpaca
  api_key: key
  secret_key: secret
  rate_limit_rps: 5
risk:
  max_drawdown_from_peak: 0.30
  max_orders_per_hour: 10
scheduler:
  enabled: true
  interval_seconds: 15
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, ":9000", cfg.App.HTTPAddr)
	assert.True(t, cfg.App.LiveTrading)
	assert.Equal(t, "alpaca", cfg.Broker.Venue)
	assert.Equal(t, 5, cfg.Broker.RateLimitRPS)
	assert.Equal(t, 0.30, cfg.Risk.MaxDrawdownFromPeak)
	assert.Equal(t, 10, cfg.Risk.MaxOrdersPerHour)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 15, cfg.Scheduler.IntervalSeconds)

	// Omitted keys fall back to defaults.
	assert.Equal(t, 0.02, cfg.Risk.MaxDailyLoss)
	assert.Equal(t, 0.0025, cfg.Risk.PerTradeRisk)
	assert.Equal(t, 1.0, cfg.Risk.MaxGrossExposure)
	assert.Equal(t, 10, cfg.Broker.TimeoutSeconds)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config file failed")

	_, err = Load("")
	assert.ErrorContains(t, err, "config path cannot be empty")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8890", cfg.App.HTTPAddr)
	assert.Equal(t, "mock", cfg.Broker.Venue)
	assert.False(t, cfg.App.LiveTrading)
	assert.Equal(t, 0.25, cfg.Risk.MaxDrawdownFromPeak)
	assert.Equal(t, 30, cfg.Risk.MaxOrdersPerHour)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 60, cfg.Scheduler.IntervalSeconds)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown venue",
			yaml:    "broker:\n  venue: ftx\n",
			wantErr: "unsupported broker.venue",
		},
		{
			name:    "alpaca without credentials",
			yaml:    "broker:\n  venue: alpaca\n",
			wantErr: "requires api_key and secret_key",
		},
		{
			name:    "drawdown above one",
			yaml:    "risk:\n  max_drawdown_from_peak: 1.5\n",
			wantErr: "max_drawdown_from_peak must be in (0,1]",
		},
		{
			name:    "daily loss above one",
			yaml:    "risk:\n  max_daily_loss: 2\n",
			wantErr: "max_daily_loss must be in (0,1]",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
