package runner

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"periodical/internal/metrics"
	"periodical/internal/report"
	"periodical/internal/resource"
	"periodical/internal/task"
	"periodical/pkg/logx"
)

// Runner drives the recurring execution of every active task in the
// registry. Construct once, call Run once; the registry is read-only by the
// time Run is called.
type Runner struct {
	reg   *task.Registry
	obs   *report.Observer
	scope resource.Scope
	mets  *metrics.Metrics
	log   logx.Logger
	now   func() time.Time

	mu      sync.Mutex
	settled map[string]time.Time
}

type Option func(*Runner)

// WithScope brackets every execution in the given acquire/release scope.
func WithScope(s resource.Scope) Option {
	return func(r *Runner) {
		if s != nil {
			r.scope = s
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.mets = m }
}

func WithLogger(log logx.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// withClock overrides the time source; tests only.
func withClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func New(reg *task.Registry, obs *report.Observer, opts ...Option) *Runner {
	r := &Runner{
		reg:     reg,
		obs:     obs,
		scope:   resource.NopScope{},
		log:     logx.Nop(),
		now:     time.Now,
		settled: map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle is the live timer of one scheduled task.
type Handle struct {
	Name string

	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the task's schedule (and any in-flight run) and waits for its
// goroutine to exit.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed when the task's goroutine has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Run starts one recurring, self-timing execution per active task and
// returns their handles. Inactive tasks contribute nothing. The schedules
// stop when ctx is cancelled or their handle is stopped.
func (r *Runner) Run(ctx context.Context) []*Handle {
	var handles []*Handle
	for _, cfg := range r.reg.All() {
		if !cfg.Active {
			continue
		}
		taskCtx, cancel := context.WithCancel(ctx)
		h := &Handle{Name: cfg.Name, cancel: cancel, done: make(chan struct{})}
		go r.loop(taskCtx, cfg, h.done)
		handles = append(handles, h)
		r.log.Info("task scheduled",
			logx.String("task", cfg.Name),
			logx.Duration("interval", cfg.ExecutionInterval),
			logx.Duration("timeout", cfg.TimeoutInterval),
			logx.Bool("consistent_start", cfg.ConsistentStartTime))
	}
	return handles
}

// LastSettled returns when the task's most recent run settled, if it ran at
// all in this process. Feeds the liveness/watchdog checks.
func (r *Runner) LastSettled(name string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.settled[name]
	return t, ok
}

func (r *Runner) loop(ctx context.Context, cfg task.Config, done chan struct{}) {
	defer close(done)

	switch {
	case cfg.ConsistentStartTime:
		delay := alignDelay(r.now(), cfg.ExecutionInterval)
		r.log.Debug("aligning first run", logx.String("task", cfg.Name), logx.Duration("delay", delay))
		if !sleepCtx(ctx, delay) {
			return
		}
	case !cfg.RunImmediatelyOnStart:
		if !sleepCtx(ctx, cfg.ExecutionInterval) {
			return
		}
	}

	for {
		r.execute(ctx, cfg)
		if ctx.Err() != nil {
			return
		}
		// Fixed delay: re-arm only after the previous run has settled.
		if !sleepCtx(ctx, cfg.ExecutionInterval) {
			return
		}
	}
}

// execute performs one bounded run and delivers its outcome.
func (r *Runner) execute(ctx context.Context, cfg task.Config) {
	started := r.now()
	err := r.invoke(ctx, cfg)
	settledAt := r.now()

	r.mu.Lock()
	r.settled[cfg.Name] = settledAt
	r.mu.Unlock()

	took := settledAt.Sub(started)
	if err == nil {
		r.mets.ObserveRun(cfg.Name, metrics.ResultOK, took)
		r.log.Debug("task ok", logx.String("task", cfg.Name), logx.Duration("took", took))
		return
	}
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		// Shutdown, not a task failure.
		r.log.Debug("run cancelled by shutdown", logx.String("task", cfg.Name))
		return
	}

	result := metrics.ResultError
	var te *TimeoutError
	if errors.As(err, &te) {
		result = metrics.ResultTimeout
	}
	r.mets.ObserveRun(cfg.Name, result, took)
	r.obs.Report(ctx, report.Failure{
		Task:  cfg.Name,
		At:    started,
		Err:   err,
		Stack: stackOf(err),
	})
}

// invoke runs the work unit inside the resource scope, bounded by the task's
// timeout. The work runs on its own goroutine so a work unit that ignores
// its context cannot wedge the schedule: on overrun the run is abandoned and
// a TimeoutError synthesized (the scope still releases when the work unit
// eventually returns).
func (r *Runner) invoke(ctx context.Context, cfg task.Config) error {
	runCtx, cancel := context.WithTimeout(ctx, cfg.TimeoutInterval)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- &panicError{value: p, stack: debug.Stack()}
			}
		}()
		done <- r.scope.With(runCtx, cfg.Work.Run)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil && runCtx.Err() != nil && errors.Is(err, context.DeadlineExceeded) {
			// The work unit returned its context error on overrun; still a timeout.
			return &TimeoutError{Task: cfg.Name, Bound: cfg.TimeoutInterval}
		}
		return err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TimeoutError{Task: cfg.Name, Bound: cfg.TimeoutInterval}
	}
}

// alignDelay computes interval - (now mod interval), the wait until the next
// multiple of interval from the Unix epoch.
func alignDelay(now time.Time, interval time.Duration) time.Duration {
	rem := time.Duration(now.UnixNano()) % interval
	return interval - rem
}

// sleepCtx waits for d; false means ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func stackOf(err error) string {
	var pe *panicError
	if errors.As(err, &pe) {
		return string(pe.stack)
	}
	return ""
}
