package config

// Config is the top-level configuration for KudanForge.
type Config struct {
	App       AppConfig       `toml:"app"`
	Broker    BrokerConfig    `toml:"broker"`
	Risk      RiskConfig      `toml:"risk"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
	HTTPAddr string `toml:"http_addr"`
	DBPath   string `toml:"db_path"`
	// LiveTrading is the environment-level permission for live order flow.
	// Arming is a separate, persisted operator action; both must hold
	// before a live-mode order can reach the venue.
	LiveTrading bool `toml:"live_trading"`
}

// BrokerConfig selects and parameterizes the venue adapter.
type BrokerConfig struct {
	Venue          string `toml:"venue"` // "mock" | "alpaca"
	APIKey         string `toml:"api_key"`
	SecretKey      string `toml:"secret_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RateLimitRPS   int    `toml:"rate_limit_rps"`
}

// RiskConfig carries the portfolio-level limits enforced by the governor.
// All ratios are fractions (0.25 = 25%).
type RiskConfig struct {
	MaxDrawdownFromPeak float64 `toml:"max_drawdown_from_peak"`
	MaxDailyLoss        float64 `toml:"max_daily_loss"`
	PerTradeRisk        float64 `toml:"per_trade_risk"`
	MaxGrossExposure    float64 `toml:"max_gross_exposure"`
	MaxOrdersPerHour    int     `toml:"max_orders_per_hour"`
}

type SchedulerConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
}
