package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ryosukesatoh/hn-digest/internal/logging"
	"github.com/ryosukesatoh/hn-digest/internal/publisher"
	"github.com/ryosukesatoh/hn-digest/internal/report"
)

// Exporter writes the current top stories and returns the artifact path,
// or "" when there was nothing to export.
type Exporter interface {
	Export(ctx context.Context, date, hour string) (string, error)
}

// Generator turns an export artifact into a report.
type Generator interface {
	Generate(ctx context.Context, path string, req report.Request) (*report.Report, error)
}

// Runner orchestrates the export -> report -> publish pipeline.
type Runner struct {
	exporter   Exporter
	generator  Generator
	reportType string
	publishers []publisher.Publisher
	logger     *slog.Logger
}

// New builds a Runner. generator may be nil, in which case runs stop after
// the export.
func New(e Exporter, g Generator, reportType string, pubs []publisher.Publisher, logger *slog.Logger) *Runner {
	return &Runner{
		exporter:   e,
		generator:  g,
		reportType: reportType,
		publishers: pubs,
		logger:     logging.OrDiscard(logger),
	}
}

// Run executes the full pipeline once.
func (r *Runner) Run(ctx context.Context) error {
	log := r.logger.With("run_id", uuid.NewString())
	log.Info("starting pipeline")

	// Step 1: Export the front page
	path, err := r.exporter.Export(ctx, "", "")
	if err != nil {
		return fmt.Errorf("runner: export failed: %w", err)
	}
	if path == "" {
		log.Warn("nothing exported, skipping report")
		return nil
	}
	log.Info("exported", "path", path)

	if r.generator == nil {
		log.Info("pipeline completed (no summarizer configured)")
		return nil
	}

	// Step 2: Generate the report
	rep, err := r.generator.Generate(ctx, path, report.Request{Mode: report.ModeDaily, ReportType: r.reportType})
	if err != nil {
		return fmt.Errorf("runner: report failed: %w", err)
	}
	log.Info("generated report", "path", rep.Path)

	// Step 3: Publish - Continue with other publishers even if one fails
	var publishErrors []error
	for _, pub := range r.publishers {
		if err := pub.Publish(ctx, rep); err != nil {
			publishErrors = append(publishErrors, fmt.Errorf("publish via %T failed: %w", pub, err))
			log.Warn("publish failed", "publisher", fmt.Sprintf("%T", pub), "error", err)
		} else {
			log.Debug("published", "publisher", fmt.Sprintf("%T", pub))
		}
	}

	if len(publishErrors) == len(r.publishers) && len(r.publishers) > 0 {
		return fmt.Errorf("runner: all publishers failed: %w", errors.Join(publishErrors...))
	}

	if len(publishErrors) > 0 {
		log.Warn("pipeline completed with publisher failures", "failed", len(publishErrors), "publishers", len(r.publishers))
	} else {
		log.Info("pipeline completed successfully")
	}

	return nil
}
