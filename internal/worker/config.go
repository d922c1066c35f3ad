// Package worker provides background job processing for knuut.
package worker

import (
	"time"
)

// Config holds configuration for the retention sweep schedule.
type Config struct {
	// Interval is how often the scheduled sweep runs.
	// Default: 24 hours
	Interval time.Duration

	// Timeout is the per-run timeout for one sweep.
	// Default: 10 minutes
	Timeout time.Duration

	// RunOnStart runs a sweep immediately when the scheduler starts,
	// before the first tick. Useful after a deploy so a missed window
	// is caught up right away.
	RunOnStart bool
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Interval:   24 * time.Hour,
		Timeout:    10 * time.Minute,
		RunOnStart: false,
	}
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Minute
	}
	return c
}
