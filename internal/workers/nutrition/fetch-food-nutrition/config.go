package fetchfoodnutrition

import (
	"time"

	"bulkbuddy-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:  config.GetDuration(wcfg.Timeout),
		CacheTTL: time.Duration(wcfg.CacheTTL) * time.Second,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return cfg
}
