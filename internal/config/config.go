// Package config loads the daemon's YAML configuration.
//
// Config is read once at startup. A Watcher can re-load the file on change,
// but only the log level is applied live: task declarations and intervals
// are immutable once scheduling has begun and require a restart.
package config

import (
	"fmt"
	"time"
)

type Config struct {
	Logging   LoggingConfig    `json:"logging"`
	Reporting *ReportingConfig `json:"reporting,omitempty"`
	Database  *DatabaseConfig  `json:"database,omitempty"`
	Metrics   *MetricsConfig   `json:"metrics,omitempty"`
	Tasks     []TaskConfig     `json:"tasks"`
}

type LoggingConfig struct {
	Level   string     `json:"level,omitempty"` // default: "info"
	Console bool       `json:"console,omitempty"`
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// ReportingConfig controls the failure observer's external sink.
type ReportingConfig struct {
	// RatePerSec caps how many failures per second are forwarded to the
	// tracker (the log sink is never limited). 0 selects the default.
	RatePerSec int             `json:"rate_per_sec,omitempty"`
	Telegram   *TelegramConfig `json:"telegram,omitempty"`
}

type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}

// DatabaseConfig, when set, makes every task execution check a connection
// out of a shared pgx pool for its duration.
type DatabaseConfig struct {
	URL string `json:"url"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default: "127.0.0.1:9178"
}

// TaskConfig declares one schedulable command.
//
// All durations are Go duration strings (e.g. "30s", "1h").
//
// RunImmediately is a pointer so "omitted" (default true) is distinct from
// an explicit false.
type TaskConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Command     string   `json:"command"`
	Args        []string `json:"args,omitempty"`

	Interval string `json:"interval,omitempty"` // default: "60s"
	Timeout  string `json:"timeout,omitempty"`  // default: "10s"

	Active              bool  `json:"active,omitempty"`
	RunImmediately      *bool `json:"run_immediately,omitempty"`
	ConsistentStartTime bool  `json:"consistent_start_time,omitempty"`
}

const DefaultMetricsAddr = "127.0.0.1:9178"

// Validate checks cross-field invariants that the decoder cannot.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for i, t := range c.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if t.Name == "" {
			return fmt.Errorf("%s: name is required", path)
		}
		if seen[t.Name] {
			return fmt.Errorf("%s: duplicate task name %q", path, t.Name)
		}
		seen[t.Name] = true
		if t.Command == "" {
			return fmt.Errorf("%s (%s): command is required", path, t.Name)
		}
		if _, err := ParseDurationOrDefault(path+".interval", t.Interval, time.Minute); err != nil {
			return err
		}
		if _, err := ParseDurationOrDefault(path+".timeout", t.Timeout, 10*time.Second); err != nil {
			return err
		}
	}
	if c.Reporting != nil && c.Reporting.Telegram != nil {
		if c.Reporting.Telegram.Token == "" || c.Reporting.Telegram.ChatID == 0 {
			return fmt.Errorf("reporting.telegram: token and chat_id are both required")
		}
	}
	if c.Metrics != nil && c.Metrics.Enabled && c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
	return nil
}
