package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periodical/internal/app"
)

func main() {
	var (
		cfgPath string
		once    string
	)
	flag.StringVar(&cfgPath, "config", "./periodical.yaml", "path to config file (yaml or json)")
	flag.StringVar(&once, "once", "", "run the named task once and exit (for external cron triggers)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	if once != "" {
		// Exit status carries the outcome outward; the failure itself has
		// already been reported through the observer.
		if err := a.RunOnce(ctx, once); err != nil {
			fmt.Fprintf(os.Stderr, "task %s failed: %v\n", once, err)
			os.Exit(1)
		}
		return
	}

	if err := a.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal start:", err)
		os.Exit(1)
	}

	<-ctx.Done()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	_ = a.Stop(stopCtx)
}
