package generatemealplan

import (
	"time"

	"bulkbuddy-workers/internal/common/config"
)

type Config struct {
	Timeout           time.Duration
	RecipeIndex       string
	CandidatesPerSlot int
}

func NewConfig(wcfg config.WorkerConfig, recipeIndex string) *Config {
	cfg := &Config{
		Timeout:           config.GetDuration(wcfg.Timeout),
		RecipeIndex:       recipeIndex,
		CandidatesPerSlot: 5,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}
