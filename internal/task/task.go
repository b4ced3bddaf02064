package task

import (
	"time"

	"periodical/internal/work"
)

// Defaults applied before the environment and call-site layers.
const (
	DefaultExecutionInterval = 60 * time.Second
	DefaultTimeoutInterval   = 10 * time.Second
)

// Config is the resolved configuration of one registered task.
//
// ExecutionInterval and TimeoutInterval are immutable after registration;
// only the environment override layer may change the interval, and only
// before the process begins scheduling.
type Config struct {
	Name        string
	Description string
	Work        work.Work

	// ExecutionInterval governs recurrence (fixed-delay) and liveness checks.
	ExecutionInterval time.Duration
	// TimeoutInterval bounds a single run.
	TimeoutInterval time.Duration

	// Active tasks are scheduled by the runner and counted as due.
	// A registered-but-inactive task only exists in the registry.
	Active bool

	// RunImmediatelyOnStart fires the first execution at activation time
	// rather than after one full interval.
	RunImmediatelyOnStart bool

	// ConsistentStartTime delays the first execution so it lands on a
	// multiple of ExecutionInterval from the Unix epoch (an hourly task
	// fires at the top of the hour).
	ConsistentStartTime bool
}

// Option adjusts a task configuration at registration time.
// Options are the highest-precedence layer: they win over the environment.
type Option func(*Config)

func WithInterval(d time.Duration) Option {
	return func(c *Config) { c.ExecutionInterval = d }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.TimeoutInterval = d }
}

func WithActive(active bool) Option {
	return func(c *Config) { c.Active = active }
}

func WithRunImmediately(run bool) Option {
	return func(c *Config) { c.RunImmediatelyOnStart = run }
}

// WithConsistentStartTime aligns the first run to an interval boundary.
func WithConsistentStartTime() Option {
	return func(c *Config) { c.ConsistentStartTime = true }
}

// resolve layers defaults, the env override (if any) and call-site options
// into the final configuration.
func resolve(name, description string, w work.Work, ov Override, hasOv bool, opts []Option) Config {
	cfg := Config{
		Name:                  name,
		Description:           description,
		Work:                  w,
		ExecutionInterval:     DefaultExecutionInterval,
		TimeoutInterval:       DefaultTimeoutInterval,
		RunImmediatelyOnStart: true,
	}
	if hasOv {
		cfg.Active = true
		if ov.HasInterval {
			cfg.ExecutionInterval = ov.Interval
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
