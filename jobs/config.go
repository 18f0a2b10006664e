// Package jobs runs background maintenance tasks on a gocron scheduler
package jobs

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config scheduler and built-in job settings
type Config struct {
	// StatsInterval logs cache stats periodically, 0 disables the job
	StatsInterval time.Duration `mapstructure:"stats_interval" json:"stats_interval"`

	// StatsCron cron expression for the stats job, wins over StatsInterval
	StatsCron string `mapstructure:"stats_cron" json:"stats_cron"`

	// ShutdownTimeout how long Shutdown waits for running tasks
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
}

// StatsEnabled the stats job has a schedule
func (c Config) StatsEnabled() bool {
	return c.StatsCron != "" || c.StatsInterval > 0
}

// Validate implements validation.Validatable
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.StatsInterval, validation.When(c.StatsInterval != 0, validation.Min(time.Second))),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}
