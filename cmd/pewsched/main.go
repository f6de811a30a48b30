package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/pflag"

	"pewsched/internal/app"
)

func main() {
	var (
		cfgPath string
		once    bool
		atRaw   string
	)
	pflag.StringVarP(&cfgPath, "config", "c", "./pewsched.yaml", "path to config (json or yaml)")
	pflag.BoolVar(&once, "once", false, "evaluate every rule once and exit")
	pflag.StringVar(&atRaw, "at", "", "civil date-time to evaluate at, e.g. 2006-01-02T15:04:05 (implies --once)")
	pflag.Parse()

	if once || atRaw != "" {
		if err := evaluateOnce(cfgPath, atRaw); err != nil {
			fmt.Fprintln(os.Stderr, "fatal:", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewApp(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	if err := a.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal start:", err)
		os.Exit(1)
	}

	reason := app.StopSignal
	select {
	case <-ctx.Done():
	case <-a.Done():
		reason = app.StopFatalError
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	_ = a.Stop(stopCtx, reason)
	if err := a.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func evaluateOnce(cfgPath, atRaw string) error {
	var (
		dt  civil.DateTime
		err error
	)
	if atRaw != "" {
		dt, err = civil.ParseDateTime(atRaw)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
	} else {
		dt, err = app.Now(cfgPath)
		if err != nil {
			return err
		}
	}

	states, err := app.Evaluate(cfgPath, dt)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "# %s\n", dt)
	for _, st := range states {
		state := "off"
		if st.Active {
			state = "on"
		}
		fmt.Fprintf(tw, "%s\t%s\n", st.Rule, state)
	}
	return tw.Flush()
}
