package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "periodical.yaml", `
logging:
  level: debug
  console: true
metrics:
  enabled: true
tasks:
  - name: cleanup
    description: prune expired sessions
    command: /usr/local/bin/cleanup
    args: ["--quiet"]
    interval: 5m
    timeout: 30s
    active: true
  - name: digest
    command: /usr/local/bin/digest
    interval: 1h
    consistent_start_time: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.Metrics == nil || !cfg.Metrics.Enabled || cfg.Metrics.Addr != DefaultMetricsAddr {
		t.Fatalf("metrics = %+v, want enabled with default addr", cfg.Metrics)
	}
	if len(cfg.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(cfg.Tasks))
	}
	first := cfg.Tasks[0]
	if first.Name != "cleanup" || first.Command != "/usr/local/bin/cleanup" || !first.Active {
		t.Fatalf("task[0] = %+v", first)
	}
	if len(first.Args) != 1 || first.Args[0] != "--quiet" {
		t.Fatalf("task[0].Args = %v", first.Args)
	}
	if !cfg.Tasks[1].ConsistentStartTime {
		t.Fatal("task[1] must have consistent_start_time")
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			"unknown field",
			"tasks:\n  - name: a\n    command: /bin/true\n    intervall: 5m\n",
			"unknown field",
		},
		{
			"missing command",
			"tasks:\n  - name: a\n",
			"command is required",
		},
		{
			"missing name",
			"tasks:\n  - command: /bin/true\n",
			"name is required",
		},
		{
			"duplicate name",
			"tasks:\n  - name: a\n    command: /bin/true\n  - name: a\n    command: /bin/false\n",
			"duplicate task name",
		},
		{
			"bad duration",
			"tasks:\n  - name: a\n    command: /bin/true\n    interval: banana\n",
			"invalid duration",
		},
		{
			"telegram without chat",
			"reporting:\n  telegram:\n    token: abc\n",
			"chat_id",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, "periodical.yaml", tt.body)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		def     time.Duration
		want    time.Duration
		wantErr bool
	}{
		{"", time.Minute, time.Minute, false},
		{"  ", time.Minute, time.Minute, false},
		{"0s", time.Minute, time.Minute, false},
		{"90s", time.Minute, 90 * time.Second, false},
		{"2h30m", time.Minute, 2*time.Hour + 30*time.Minute, false},
		{"-5s", time.Minute, 0, true},
		{"nope", time.Minute, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDurationOrDefault("f", tt.raw, tt.def)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseDurationOrDefault(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDurationOrDefault(%q) error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseDurationOrDefault(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
