// Package exporter writes scraped top stories to dated markdown files laid
// out as {dir}/{YYYY-MM-DD}/{HH}.md.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ryosukesatoh/hn-digest/internal/fetcher"
	"github.com/ryosukesatoh/hn-digest/internal/logging"
)

const (
	DefaultDir = "hacker_news"

	dateLayout = "2006-01-02"
	hourLayout = "15"
)

// Exporter fetches the current top stories and writes them as one export
// artifact per (date, hour).
type Exporter struct {
	fetcher fetcher.Fetcher
	dir     string
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock overrides the time source used for default date and hour.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

func New(f fetcher.Fetcher, dir string, logger *slog.Logger, opts ...Option) *Exporter {
	if dir == "" {
		dir = DefaultDir
	}
	e := &Exporter{
		fetcher: f,
		dir:     dir,
		now:     time.Now,
		logger:  logging.OrDiscard(logger),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the root directory exports are written under.
func (e *Exporter) Dir() string {
	return e.dir
}

// Export fetches the top stories and writes them to Path(date, hour). Empty
// date or hour default to the current local date and zero-padded hour.
//
// A failed fetch or an empty story list is not an error: it is logged and
// Export returns an empty path without touching the filesystem. Only
// filesystem errors are returned.
func (e *Exporter) Export(ctx context.Context, date, hour string) (string, error) {
	e.logger.Debug("exporting top stories")

	stories, err := e.fetcher.Fetch(ctx)
	if err != nil {
		e.logger.Error("failed to fetch top stories", "error", err)
		stories = nil
	}
	if len(stories) == 0 {
		e.logger.Warn("no top stories found to export")
		return "", nil
	}

	now := e.now()
	if date == "" {
		date = now.Format(dateLayout)
	}
	if hour == "" {
		hour = now.Format(hourLayout)
	}

	path := e.Path(date, hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("exporter: create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(Render(date, hour, stories)), 0o644); err != nil {
		return "", fmt.Errorf("exporter: write %s: %w", path, err)
	}

	e.logger.Info("exported top stories", "path", path, "count", len(stories))
	return path, nil
}

// Path is the export artifact location for a date and hour.
func (e *Exporter) Path(date, hour string) string {
	return filepath.Join(e.dir, date, hour+".md")
}

// Render formats stories as the export document: a header, a blank line,
// then one numbered markdown link per story.
func Render(date, hour string, stories []fetcher.Story) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Hacker News Top Stories (%s %s:00)\n\n", date, hour)
	for i, s := range stories {
		fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, s.Title, s.Link)
	}
	return sb.String()
}
