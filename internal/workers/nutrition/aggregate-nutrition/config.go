package aggregatenutrition

import (
	"time"

	"bulkbuddy-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	MaxItems int
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:  config.GetDuration(wcfg.Timeout),
		MaxItems: 200,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return cfg
}
