package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ryosukesatoh/hn-digest/internal/logging"
)

const defaultFeedURL = "https://news.ycombinator.com/rss"

// RSSFetcher reads the front page through the site's RSS feed instead of
// scraping markup.
type RSSFetcher struct {
	url    string
	parser *gofeed.Parser
	logger *slog.Logger
}

func NewRSSFetcher(feedURL string, timeout time.Duration, logger *slog.Logger) *RSSFetcher {
	if feedURL == "" {
		feedURL = defaultFeedURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	return &RSSFetcher{
		url:    feedURL,
		parser: p,
		logger: logging.OrDiscard(logger),
	}
}

func (f *RSSFetcher) Fetch(ctx context.Context) ([]Story, error) {
	f.logger.Debug("fetching top stories feed", "url", f.url)

	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("hackernews: fetch feed %s: %w", f.url, err)
	}

	stories := make([]Story, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		stories = append(stories, Story{
			Title: strings.TrimSpace(item.Title),
			Link:  strings.TrimSpace(item.Link),
		})
	}

	f.logger.Info("parsed top stories feed", "count", len(stories))
	return stories, nil
}
