package task

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EnvVar activates tasks (and optionally overrides their interval) without a
// code change. Format: comma-separated "name" or "name:interval" entries,
// interval in whole seconds. Absent or empty means no overrides.
const EnvVar = "PERIODICAL"

// Override is one parsed PERIODICAL entry. Its presence alone activates the
// named task.
type Override struct {
	Interval    time.Duration
	HasInterval bool
}

var (
	envOnce      sync.Once
	envOverrides map[string]Override
	envErr       error
)

// OverridesFromEnv parses PERIODICAL exactly once per process and caches the
// result forever: the environment is deliberately NOT re-read if it changes
// mid-process. A malformed entry is a startup-fatal error.
func OverridesFromEnv() (map[string]Override, error) {
	envOnce.Do(func() {
		envOverrides, envErr = ParseOverrides(os.Getenv(EnvVar))
	})
	return envOverrides, envErr
}

// ParseOverrides parses a raw PERIODICAL value.
func ParseOverrides(raw string) (map[string]Override, error) {
	out := map[string]Override{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, found := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%s: entry %q has no task name", EnvVar, entry)
		}
		ov := Override{}
		if found {
			secs, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%s: task %q: invalid interval %q: %w", EnvVar, name, value, err)
			}
			if secs <= 0 {
				return nil, fmt.Errorf("%s: task %q: interval must be positive, got %d", EnvVar, name, secs)
			}
			ov.Interval = time.Duration(secs) * time.Second
			ov.HasInterval = true
		}
		out[name] = ov
	}
	return out, nil
}
