// Package task holds the registry of named periodic tasks and their
// resolved configuration.
//
// # Configuration layering
//
// A task's final configuration is resolved once, at registration time, by
// strict layering (low to high precedence):
//
//	built-in defaults  <  PERIODICAL env override (by name)  <  call-site options
//
// The work unit and description always come from the registration call; the
// environment can only activate a task and change its execution interval.
//
// # Lifecycle
//
// The registry is populated during process startup and read-only afterwards:
// single writer at startup, many readers for the process lifetime. It is an
// explicitly constructed object injected into the runner, the manual invoker
// and the liveness query.
package task
