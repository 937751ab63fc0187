package config

import (
	"kudanforge/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// WatchRiskLimits re-reads the risk section whenever the config file changes
// and hands the new limits to apply. Invalid edits are logged and ignored so
// a bad save never drops the limits that are already in force.
func WatchRiskLimits(path string, apply func(RiskConfig)) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			logger.Errorf("risk limit reload failed (%s): %v", evt.Name, err)
			return
		}
		cfg.Risk.applyDefaults()
		if err := cfg.Risk.validate(); err != nil {
			logger.Errorf("risk limit reload rejected: %v", err)
			return
		}
		logger.Infof("risk limits reloaded from %s", evt.Name)
		apply(cfg.Risk)
	})
	v.WatchConfig()
	return nil
}
