// Package app wires configuration, logging, the task registry, the runner
// and the ambient services into one process lifecycle.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"periodical/internal/config"
	"periodical/internal/health"
	"periodical/internal/metrics"
	"periodical/internal/report"
	"periodical/internal/resource"
	"periodical/internal/runner"
	"periodical/internal/task"
	"periodical/internal/work"
	"periodical/pkg/logx"
)

type App struct {
	cfgPath string
	cfg     *config.Config

	logs *logx.Service
	log  logx.Logger

	reg *task.Registry
	obs *report.Observer

	pool    *pgxpool.Pool
	run     *runner.Runner
	handles []*runner.Handle

	bg sync.WaitGroup
}

// New loads the config, initializes logging and populates the registry.
// Registration is the only write to the registry; everything after New
// only reads it.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logs, log, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	a := &App{cfgPath: cfgPath, cfg: cfg, logs: logs, log: log}

	overrides, err := task.OverridesFromEnv()
	if err != nil {
		// Malformed PERIODICAL aborts initialization, it is never ignored.
		return nil, err
	}
	a.reg = task.NewRegistry(overrides)
	if err := a.registerTasks(); err != nil {
		return nil, err
	}

	tracker, ratePerSec, err := a.buildTracker()
	if err != nil {
		return nil, err
	}
	a.obs = report.NewObserver(log.With(logx.String("component", "report")), tracker, ratePerSec)

	return a, nil
}

func (a *App) registerTasks() error {
	for i, t := range a.cfg.Tasks {
		opts := []task.Option{}
		path := fmt.Sprintf("tasks[%d]", i)
		if t.Interval != "" {
			d, err := config.ParseDurationOrDefault(path+".interval", t.Interval, time.Minute)
			if err != nil {
				return err
			}
			opts = append(opts, task.WithInterval(d))
		}
		if t.Timeout != "" {
			d, err := config.ParseDurationOrDefault(path+".timeout", t.Timeout, 10*time.Second)
			if err != nil {
				return err
			}
			opts = append(opts, task.WithTimeout(d))
		}
		if t.Active {
			// Explicit activation; an omitted "active" leaves the decision
			// to the PERIODICAL environment override.
			opts = append(opts, task.WithActive(true))
		}
		if t.RunImmediately != nil {
			opts = append(opts, task.WithRunImmediately(*t.RunImmediately))
		}
		if t.ConsistentStartTime {
			opts = append(opts, task.WithConsistentStartTime())
		}
		w := work.Command{Path: t.Command, Args: t.Args}
		if err := a.reg.Register(t.Name, t.Description, w, opts...); err != nil {
			return err
		}
	}
	a.log.Info("tasks registered", logx.Int("count", a.reg.Len()))
	return nil
}

func (a *App) buildTracker() (report.Tracker, int, error) {
	rc := a.cfg.Reporting
	if rc == nil || rc.Telegram == nil {
		return report.NopTracker{}, 0, nil
	}
	tracker, err := report.NewTelegramTracker(rc.Telegram.Token, rc.Telegram.ChatID)
	if err != nil {
		return nil, 0, err
	}
	return tracker, rc.RatePerSec, nil
}

// buildRunner assembles the runner, connecting the resource pool first when
// one is configured. Shared by Start and RunOnce.
func (a *App) buildRunner(ctx context.Context, mets *metrics.Metrics) error {
	opts := []runner.Option{
		runner.WithLogger(a.log.With(logx.String("component", "runner"))),
	}
	if a.cfg.Database != nil && a.cfg.Database.URL != "" {
		pool, err := resource.NewPool(ctx, a.cfg.Database.URL)
		if err != nil {
			return err
		}
		a.pool = pool
		opts = append(opts, runner.WithScope(resource.NewPgxScope(pool)))
	}
	if mets != nil {
		opts = append(opts, runner.WithMetrics(mets))
	}
	a.run = runner.New(a.reg, a.obs, opts...)
	return nil
}

// Start brings up the recurring scheduler plus the metrics listener, config
// watcher and systemd watchdog. It returns once everything is running.
func (a *App) Start(ctx context.Context) error {
	var mets *metrics.Metrics
	if a.cfg.Metrics != nil && a.cfg.Metrics.Enabled {
		mets = metrics.New(prometheus.DefaultRegisterer)
	}
	if err := a.buildRunner(ctx, mets); err != nil {
		return err
	}

	a.handles = a.run.Run(ctx)
	a.log.Info("scheduler started", logx.Int("active", len(a.handles)))

	if mets != nil {
		addr := a.cfg.Metrics.Addr
		a.goBg(func() {
			if err := metrics.Serve(ctx, addr, a.log); err != nil {
				a.log.Error("metrics server failed", logx.Err(err))
			}
		})
	}

	query := health.NewQuery(a.reg)
	wd := health.NewWatchdog(a.reg, query, a.run.LastSettled, a.log.With(logx.String("component", "watchdog")))
	a.goBg(func() {
		if err := wd.Run(ctx); err != nil {
			a.log.Warn("watchdog stopped", logx.Err(err))
		}
	})

	watcher := config.NewWatcher(a.cfgPath, a.log.With(logx.String("component", "config")), a.applyReload)
	a.goBg(func() {
		if err := watcher.Run(ctx); err != nil {
			a.log.Warn("config watcher stopped", logx.Err(err))
		}
	})

	health.NotifyReady(a.log)
	return nil
}

// applyReload applies what is safe to change at runtime. Task declarations
// and intervals are immutable once scheduling has begun.
func (a *App) applyReload(cfg *config.Config) {
	if cfg.Logging.Level != a.cfg.Logging.Level {
		a.logs.SetLevel(cfg.Logging.Level)
		a.log.Info("log level changed", logx.String("level", cfg.Logging.Level))
	}
	if len(cfg.Tasks) != len(a.cfg.Tasks) {
		a.log.Warn("task list changed on disk; restart to apply")
	}
	a.cfg.Logging = cfg.Logging
}

// RunOnce executes one task synchronously for an external trigger (cron).
// The returned error is the task's own failure; the caller turns it into a
// non-zero exit status.
func (a *App) RunOnce(ctx context.Context, name string) error {
	if err := a.buildRunner(ctx, nil); err != nil {
		return err
	}
	defer a.closePool()
	return a.run.RunOnce(ctx, name)
}

// Stop waits for the task goroutines and background services to wind down.
// Callers cancel the context passed to Start before calling Stop.
func (a *App) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		for _, h := range a.handles {
			h.Stop()
		}
		a.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.log.Warn("shutdown timed out, abandoning tasks")
	}

	a.closePool()
	a.log.Info("scheduler stopped")
	return a.logs.Close()
}

func (a *App) closePool() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

func (a *App) goBg(fn func()) {
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		fn()
	}()
}
