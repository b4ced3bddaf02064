package runner

import (
	"context"

	"periodical/internal/report"
)

// RunOnce executes one task's work unit synchronously under its configured
// timeout. It is the bridge for external periodic triggers (a system cron
// invoking the process once): failures are reported through the observer and
// then returned, so the invoking process can exit non-zero.
//
// An unknown name returns the registry's not-found error without reporting;
// that is a programming error, not a task failure.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	cfg, err := r.reg.Get(name)
	if err != nil {
		return err
	}
	if err := r.invoke(ctx, cfg); err != nil {
		// No timestamp here: the external trigger owns the notion of time.
		r.obs.Report(ctx, report.Failure{Task: name, Err: err, Stack: stackOf(err)})
		return err
	}
	return nil
}
