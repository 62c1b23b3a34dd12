package scheduler

import (
	"strings"
	"time"

	"github.com/smallbiznis/rythudepot/internal/config"
	"go.uber.org/zap"
)

// Config controls when the dues digest runs.
type Config struct {
	// Schedule is a standard five-field cron spec. Empty disables the digest.
	Schedule   string
	Location   *time.Location
	JobTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Schedule:   "0 8 * * *",
		Location:   time.UTC,
		JobTimeout: 30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Location == nil {
		c.Location = defaults.Location
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

// Enabled reports whether a schedule is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Schedule) != ""
}

func ProvideConfig(cfg config.Config, log *zap.Logger) Config {
	loc, err := cfg.Location()
	if err != nil {
		log.Warn("unknown depot timezone, digest runs in UTC", zap.String("timezone", cfg.DepotTimezone), zap.Error(err))
	}
	return Config{
		Schedule: strings.TrimSpace(cfg.DuesDigestSchedule),
		Location: loc,
	}
}
