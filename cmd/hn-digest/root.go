package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryosukesatoh/hn-digest/internal/config"
	"github.com/ryosukesatoh/hn-digest/internal/exporter"
	"github.com/ryosukesatoh/hn-digest/internal/fetcher"
	"github.com/ryosukesatoh/hn-digest/internal/logging"
	"github.com/ryosukesatoh/hn-digest/internal/publisher"
	"github.com/ryosukesatoh/hn-digest/internal/report"
	"github.com/ryosukesatoh/hn-digest/internal/summarizer"
)

// app holds the components built from one configuration.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	exporter   *exporter.Exporter
	generator  *report.Generator
	publishers []publisher.Publisher
	web        *publisher.WebPublisher
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "hn-digest",
		Short:        "Hacker News front page exporter and digest",
		Long:         "hn-digest snapshots the Hacker News front page into dated markdown files and turns them into LLM-written reports.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	load := func() (*app, error) {
		return loadApp(configPath)
	}

	root.AddCommand(newExportCmd(load))
	root.AddCommand(newReportCmd(load))
	root.AddCommand(newRunCmd(load))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hn-digest %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// loadApp reads the configuration and builds every component it names.
// The generator is nil when no summarizer is configured.
func loadApp(configPath string) (*app, error) {
	cfg, err := config.Load(config.Resolve(configPath))
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		exporter: exporter.New(f, cfg.OutputDir, logger),
	}

	if cfg.SummarizerEnabled() {
		llm, err := summarizer.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.generator, err = report.New(llm, cfg.Report.Types,
			report.WithPromptsDir(cfg.Report.PromptsDir),
			report.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
	}

	a.publishers, a.web, err = publisher.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}
