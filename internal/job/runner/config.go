package runner

import "time"

// Config controls the job worker pool.
type Config struct {
	Workers      int
	PollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:      2,
		PollInterval: 2 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	return c
}
