package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"periodical/internal/work"
)

var noopWork = work.Func(func(context.Context) error { return nil })

func TestRegisterDefaults(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(nil)
	if err := reg.Register("cleanup", "prunes old sessions", noopWork); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	cfg, err := reg.Get("cleanup")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if cfg.ExecutionInterval != DefaultExecutionInterval {
		t.Fatalf("ExecutionInterval = %v, want %v", cfg.ExecutionInterval, DefaultExecutionInterval)
	}
	if cfg.TimeoutInterval != DefaultTimeoutInterval {
		t.Fatalf("TimeoutInterval = %v, want %v", cfg.TimeoutInterval, DefaultTimeoutInterval)
	}
	if cfg.Active {
		t.Fatal("tasks must be inactive by default")
	}
	if !cfg.RunImmediatelyOnStart {
		t.Fatal("RunImmediatelyOnStart must default to true")
	}
	if cfg.ConsistentStartTime {
		t.Fatal("ConsistentStartTime must default to false")
	}
	if cfg.Description != "prunes old sessions" {
		t.Fatalf("Description = %q", cfg.Description)
	}
}

func TestRegisterPrecedence(t *testing.T) {
	t.Parallel()
	overrides := map[string]Override{
		"x": {Interval: 9 * time.Second, HasInterval: true},
	}
	reg := NewRegistry(overrides)

	// Explicit call-time options win over the environment.
	if err := reg.Register("x", "", noopWork, WithInterval(5*time.Second)); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	cfg, err := reg.Get("x")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if cfg.ExecutionInterval != 5*time.Second {
		t.Fatalf("ExecutionInterval = %v, want 5s (options over env)", cfg.ExecutionInterval)
	}
	if !cfg.Active {
		t.Fatal("env entry must activate the task")
	}

	// Without options the environment wins over defaults.
	if err := reg.Register("x", "", noopWork); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	cfg, _ = reg.Get("x")
	if cfg.ExecutionInterval != 9*time.Second {
		t.Fatalf("ExecutionInterval = %v, want 9s (env over defaults)", cfg.ExecutionInterval)
	}
}

func TestRegisterOverwrites(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(nil)
	if err := reg.Register("x", "first", noopWork, WithInterval(5*time.Second)); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	// Last registration wins wholesale: no merge with the earlier options.
	if err := reg.Register("x", "second", noopWork); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	cfg, err := reg.Get("x")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if cfg.Description != "second" {
		t.Fatalf("Description = %q, want %q", cfg.Description, "second")
	}
	if cfg.ExecutionInterval != DefaultExecutionInterval {
		t.Fatalf("ExecutionInterval = %v, want default (no merge)", cfg.ExecutionInterval)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", reg.Len())
	}
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(nil)
	_, err := reg.Get("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(nil)
	tests := []struct {
		name string
		do   func() error
	}{
		{"empty name", func() error { return reg.Register("", "", noopWork) }},
		{"nil work", func() error { return reg.Register("x", "", nil) }},
		{"zero interval", func() error { return reg.Register("x", "", noopWork, WithInterval(0)) }},
		{"negative timeout", func() error { return reg.Register("x", "", noopWork, WithTimeout(-time.Second)) }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.do(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAllReturnsEveryTask(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(nil)
	for _, name := range []string{"a", "b", "c"} {
		if err := reg.Register(name, "", noopWork); err != nil {
			t.Fatalf("Register(%q) error: %v", name, err)
		}
	}
	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("All returned %d configs, want 3", len(all))
	}
	seen := map[string]bool{}
	for _, cfg := range all {
		seen[cfg.Name] = true
	}
	for _, name := range []string{"a", "b", "c"} {
		if !seen[name] {
			t.Fatalf("All missing %q", name)
		}
	}
}
