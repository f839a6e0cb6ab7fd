package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/ryosukesatoh/hn-digest/internal/logging"
	"github.com/ryosukesatoh/hn-digest/internal/runner"
)

func newRunCmd(load func() (*app, error)) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the export, report and publish pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), a, once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run the pipeline once and exit")
	return cmd
}

func runPipeline(parent context.Context, a *app, once bool) error {
	log := a.logger
	cfg := a.cfg

	var gen runner.Generator
	if a.generator != nil {
		gen = a.generator
	}
	r := runner.New(a.exporter, gen, cfg.Report.Type, a.publishers, log)

	// Single-run mode: run the pipeline once and exit
	if once {
		log.Info("running digest (once mode)")
		if err := r.Run(parent); err != nil {
			return fmt.Errorf("pipeline failed: %w", err)
		}
		log.Info("done")
		return nil
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(logging.CronLogger{L: log})))
	_, err := c.AddFunc(cfg.Schedule, func() {
		log.Info("cron triggered, running digest")
		if err := r.Run(ctx); err != nil {
			log.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to set up cron schedule %q: %w", cfg.Schedule, err)
	}

	if a.web != nil {
		if err := a.web.Start(); err != nil {
			return err
		}
	}

	if cfg.RunOnStart {
		log.Info("running initial digest")
		if err := r.Run(ctx); err != nil {
			log.Error("initial run failed", "error", err)
		}
	}

	c.Start()
	log.Info("scheduled digest", "schedule", cfg.Schedule)

	<-ctx.Done()
	log.Info("shutting down")

	// Wait for a running job to finish.
	<-c.Stop().Done()

	if a.web != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.web.Shutdown(shutdownCtx); err != nil {
			log.Error("web server shutdown error", "error", err)
		}
	}

	log.Info("shutdown complete")
	return nil
}
