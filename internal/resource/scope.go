// Package resource brackets task executions around a shared backing
// resource with scoped acquire/use/release semantics.
package resource

import "context"

// Scope acquires a shared resource, runs fn, and releases the resource on
// every exit path (return, error, timeout-driven cancellation).
type Scope interface {
	With(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopScope runs fn directly. Used when no shared resource is configured.
type NopScope struct{}

func (NopScope) With(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
