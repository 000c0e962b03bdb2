package sendplansummary

import (
	"time"

	"bulkbuddy-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	Timeout      time.Duration
}

func NewConfig(wcfg config.WorkerConfig, ncfg config.NotificationConfig) *Config {
	cfg := &Config{
		EmailEnabled: ncfg.SES.Enabled,
		SMSEnabled:   ncfg.SNS.Enabled,
		FromEmail:    ncfg.SES.FromEmail,
		Timeout:      config.GetDuration(wcfg.Timeout),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}
