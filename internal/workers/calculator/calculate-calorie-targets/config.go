package calculatecalorietargets

import (
	"time"

	"bulkbuddy-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{Timeout: config.GetDuration(wcfg.Timeout)}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return cfg
}
