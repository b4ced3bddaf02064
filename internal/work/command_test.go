package work

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestCommandSuccess(t *testing.T) {
	t.Parallel()
	c := Command{Path: "/bin/sh", Args: []string{"-c", "exit 0"}}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
}

func TestCommandFailureIncludesOutput(t *testing.T) {
	t.Parallel()
	c := Command{Path: "/bin/sh", Args: []string{"-c", "echo something broke >&2; exit 3"}}
	err := c.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "exit status 3") {
		t.Fatalf("error %q lacks exit status", err)
	}
	if !strings.Contains(err.Error(), "something broke") {
		t.Fatalf("error %q lacks command output", err)
	}
}

func TestCommandKilledOnContextCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := Command{Path: "/bin/sh", Args: []string{"-c", "sleep 10"}}
	start := time.Now()
	err := c.Run(ctx)
	if err == nil {
		t.Fatal("expected error from killed command")
	}
	if took := time.Since(start); took > 5*time.Second {
		t.Fatalf("command was not killed promptly: %v", took)
	}
}

func TestFuncAdapter(t *testing.T) {
	t.Parallel()
	called := false
	var w Work = Func(func(context.Context) error {
		called = true
		return nil
	})
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !called {
		t.Fatal("adapter did not invoke the function")
	}
}
