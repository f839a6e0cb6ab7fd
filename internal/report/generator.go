// Package report turns export artifacts into LLM-written report artifacts.
package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ryosukesatoh/hn-digest/internal/logging"
)

const (
	DefaultPromptsDir = "../prompts"

	reportSuffix = "_report.md"
)

var (
	// ErrPromptNotFound is returned by New when a prompt file is missing.
	ErrPromptNotFound = errors.New("prompt file not found")
	// ErrUnknownReportType is returned when a request names a report type
	// whose prompt was not preloaded.
	ErrUnknownReportType = errors.New("unknown report type")
)

// Generator reads export artifacts and writes summaries next to them.
type Generator struct {
	llm         Summarizer
	reportTypes []string
	promptsDir  string
	prompts     map[string]string
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithPromptsDir sets the directory prompt files are loaded from.
func WithPromptsDir(dir string) Option {
	return func(g *Generator) { g.promptsDir = dir }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = logging.OrDiscard(l) }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New builds a Generator and preloads {reportType}_{model}_prompt.txt for
// every report type. Any missing prompt fails construction.
func New(llm Summarizer, reportTypes []string, opts ...Option) (*Generator, error) {
	if llm == nil {
		return nil, errors.New("report: summarizer is required")
	}
	g := &Generator{
		llm:         llm,
		reportTypes: reportTypes,
		promptsDir:  DefaultPromptsDir,
		now:         time.Now,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}

	prompts, err := loadPrompts(g.promptsDir, reportTypes, llm.Model())
	if err != nil {
		g.logger.Error("failed to preload prompts", "error", err)
		return nil, err
	}
	g.prompts = prompts
	return g, nil
}

// PromptPath is where the prompt for a report type and model lives.
func PromptPath(dir, reportType, model string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_prompt.txt", reportType, model))
}

func loadPrompts(dir string, reportTypes []string, model string) (map[string]string, error) {
	prompts := make(map[string]string, len(reportTypes))
	for _, rt := range reportTypes {
		path := PromptPath(dir, rt, model)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("report: %w: %s", ErrPromptNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("report: read prompt %s: %w", path, err)
		}
		prompts[rt] = string(data)
	}
	return prompts, nil
}

// Prompt returns the preloaded prompt for a report type.
func (g *Generator) Prompt(reportType string) (string, bool) {
	p, ok := g.prompts[reportType]
	return p, ok
}

// ReportPath derives the report artifact path from a source file path.
func ReportPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + reportSuffix
}

// Generate summarizes the markdown file at path and writes the result to
// ReportPath(path), replacing any previous report.
func (g *Generator) Generate(ctx context.Context, path string, req Request) (*Report, error) {
	if req.Mode == "" {
		req.Mode = ModeDaily
	}
	switch req.Mode {
	case ModeDaily, ModeDateRange:
	default:
		return nil, fmt.Errorf("report: unsupported mode %q", req.Mode)
	}

	var prompt string
	if req.ReportType != "" {
		p, ok := g.prompts[req.ReportType]
		if !ok {
			return nil, fmt.Errorf("report: %w: %q", ErrUnknownReportType, req.ReportType)
		}
		prompt = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: read %s: %w", path, err)
	}

	content, err := g.summarize(ctx, prompt, string(data))
	if err != nil {
		return nil, fmt.Errorf("report: generate from %s: %w", path, err)
	}

	reportPath := ReportPath(path)
	if err := os.WriteFile(reportPath, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("report: write %s: %w", reportPath, err)
	}

	g.logger.Info("report saved", "path", reportPath, "mode", req.Mode, "days", req.Days, "report_type", req.ReportType)

	return &Report{
		Content:     content,
		Path:        reportPath,
		SourcePath:  path,
		Mode:        req.Mode,
		Days:        req.Days,
		ReportType:  req.ReportType,
		GeneratedAt: g.now(),
	}, nil
}

func (g *Generator) summarize(ctx context.Context, prompt, markdown string) (string, error) {
	if ps, ok := g.llm.(PromptSummarizer); ok && prompt != "" {
		return ps.GenerateReport(ctx, prompt, markdown)
	}
	return g.llm.GenerateDailyReport(ctx, markdown)
}

// GenerateDailyReport summarizes the file at path and returns the report
// text and the report path.
func (g *Generator) GenerateDailyReport(ctx context.Context, path string) (string, string, error) {
	r, err := g.Generate(ctx, path, Request{Mode: ModeDaily})
	if err != nil {
		return "", "", err
	}
	return r.Content, r.Path, nil
}

// GenerateReportByDateRange is GenerateDailyReport in date range mode.
// days is recorded and logged only.
func (g *Generator) GenerateReportByDateRange(ctx context.Context, path string, days int) (string, string, error) {
	r, err := g.Generate(ctx, path, Request{Mode: ModeDateRange, Days: days})
	if err != nil {
		return "", "", err
	}
	return r.Content, r.Path, nil
}
