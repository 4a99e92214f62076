package expire

import "time"

// Config controls the expiration sweeper loop.
type Config struct {
	SweepInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		SweepInterval: 1 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaults.SweepInterval
	}
	return c
}
