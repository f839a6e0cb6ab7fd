package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ryosukesatoh/hn-digest/internal/config"
)

// Story is one ranked headline from the front page.
type Story struct {
	Title string
	Link  string
}

// Fetcher is an interface for fetching the current top stories. The
// returned slice is in display order.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Story, error)
}

// New creates a new fetcher based on the configuration
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "html":
		return NewHTMLFetcher(cfg.Fetcher.URL, cfg.Fetcher.Timeout, cfg.Fetcher.UserAgent, logger), nil
	case "rss":
		return NewRSSFetcher(cfg.Fetcher.URL, cfg.Fetcher.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFetcherType, cfg.Fetcher.Type)
	}
}

// ErrUnsupportedFetcherType is returned when an unsupported fetcher type is specified
var ErrUnsupportedFetcherType = fmt.Errorf("unsupported fetcher type")
