package health

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"periodical/internal/task"
	"periodical/pkg/logx"
)

// NotifyReady tells systemd the scheduler is up. No-op outside systemd.
func NotifyReady(log logx.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		log.Warn("sd_notify failed", logx.Err(err))
		return
	}
	if sent {
		log.Debug("notified systemd ready")
	}
}

// Watchdog pets the systemd watchdog for as long as no active task is
// overdue, so a wedged scheduler gets restarted by the service manager.
type Watchdog struct {
	reg   *task.Registry
	query *Query
	// last returns when the named task last settled, per the runner.
	last func(name string) (time.Time, bool)
	log  logx.Logger
}

func NewWatchdog(reg *task.Registry, query *Query, last func(string) (time.Time, bool), log logx.Logger) *Watchdog {
	return &Watchdog{reg: reg, query: query, last: last, log: log}
}

// Run blocks until ctx is done. It returns immediately (nil) when the
// process is not under a systemd watchdog.
func (w *Watchdog) Run(ctx context.Context) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return err
	}
	if interval == 0 {
		w.log.Debug("systemd watchdog not configured")
		return nil
	}

	// Pet at half the advertised interval, the customary margin.
	tick := time.NewTicker(interval / 2)
	defer tick.Stop()
	w.log.Info("systemd watchdog enabled", logx.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if name, ok := w.overdueTask(); ok {
				w.log.Warn("withholding watchdog ping, task overdue", logx.String("task", name))
				continue
			}
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				w.log.Warn("watchdog ping failed", logx.Err(err))
			}
		}
	}
}

// overdueTask returns the first active task whose last settle is overdue.
// Tasks that have not settled yet (long first interval) are not counted.
func (w *Watchdog) overdueTask() (string, bool) {
	for _, cfg := range w.reg.All() {
		if !cfg.Active {
			continue
		}
		since, ran := w.last(cfg.Name)
		if !ran {
			continue
		}
		overdue, err := w.query.Overdue(cfg.Name, since)
		if err != nil {
			continue
		}
		if overdue {
			return cfg.Name, true
		}
	}
	return "", false
}
