package config

const (
	defaultAppEnv       = "dev"
	defaultAppLogLevel  = "info"
	defaultAppHTTPAddr  = ":8890"
	defaultAppDBPath    = "/data/kudan.sqlite"
	defaultBrokerVenue  = "mock"
	defaultBrokerURL    = "https://paper-api.alpaca.markets"
	defaultBrokerRPS    = 3
	defaultBrokerTimout = 10

	defaultRiskMaxDrawdown     = 0.25
	defaultRiskMaxDailyLoss    = 0.02
	defaultRiskPerTrade        = 0.0025
	defaultRiskMaxExposure     = 1.0
	defaultRiskMaxOrdersHourly = 30

	defaultSchedulerInterval = 60
)

func (c *Config) applyDefaults() {
	c.App.applyDefaults()
	c.Broker.applyDefaults()
	c.Risk.applyDefaults()
	c.Scheduler.applyDefaults()
}

func (a *AppConfig) applyDefaults() {
	if a.Env == "" {
		a.Env = defaultAppEnv
	}
	if a.LogLevel == "" {
		a.LogLevel = defaultAppLogLevel
	}
	if a.HTTPAddr == "" {
		a.HTTPAddr = defaultAppHTTPAddr
	}
	if a.DBPath == "" {
		a.DBPath = defaultAppDBPath
	}
}

func (b *BrokerConfig) applyDefaults() {
	if b.Venue == "" {
		b.Venue = defaultBrokerVenue
	}
	if b.BaseURL == "" {
		b.BaseURL = defaultBrokerURL
	}
	if b.TimeoutSeconds <= 0 {
		b.TimeoutSeconds = defaultBrokerTimout
	}
	if b.RateLimitRPS <= 0 {
		b.RateLimitRPS = defaultBrokerRPS
	}
}

func (r *RiskConfig) applyDefaults() {
	if r.MaxDrawdownFromPeak <= 0 {
		r.MaxDrawdownFromPeak = defaultRiskMaxDrawdown
	}
	if r.MaxDailyLoss <= 0 {
		r.MaxDailyLoss = defaultRiskMaxDailyLoss
	}
	if r.PerTradeRisk <= 0 {
		r.PerTradeRisk = defaultRiskPerTrade
	}
	if r.MaxGrossExposure <= 0 {
		r.MaxGrossExposure = defaultRiskMaxExposure
	}
	if r.MaxOrdersPerHour <= 0 {
		r.MaxOrdersPerHour = defaultRiskMaxOrdersHourly
	}
}

func (s *SchedulerConfig) applyDefaults() {
	if s.IntervalSeconds <= 0 {
		s.IntervalSeconds = defaultSchedulerInterval
	}
}
