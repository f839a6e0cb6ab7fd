package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/ryosukesatoh/hn-digest/internal/logging"
)

const (
	defaultFrontPageURL = "https://news.ycombinator.com/"
	defaultTimeout      = 10 * time.Second
)

// HTMLFetcher scrapes the Hacker News front page.
type HTMLFetcher struct {
	url       string
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

func NewHTMLFetcher(pageURL string, timeout time.Duration, userAgent string, logger *slog.Logger) *HTMLFetcher {
	if pageURL == "" {
		pageURL = defaultFrontPageURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTMLFetcher{
		url:       pageURL,
		timeout:   timeout,
		userAgent: userAgent,
		logger:    logging.OrDiscard(logger),
	}
}

// FetchDocument issues a single GET for the front page and returns the raw
// markup. Transport errors, timeouts and non-2xx responses come back as the
// error; nothing is retried.
func (f *HTMLFetcher) FetchDocument(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// A fresh collector per call: colly remembers visited URLs.
	c := colly.NewCollector()
	if f.userAgent != "" {
		c.UserAgent = f.userAgent
	}
	c.SetRequestTimeout(f.timeout)
	// Let every status reach OnResponse; colly alone rejects 203 and up.
	c.ParseHTTPErrorResponse = true

	var (
		doc    string
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		doc = string(r.Body)
	})

	if err := c.Visit(f.url); err != nil {
		return "", fmt.Errorf("hackernews: fetch %s: %w", f.url, err)
	}
	if status/100 != 2 {
		return "", fmt.Errorf("hackernews: fetch %s: unexpected status %d", f.url, status)
	}
	return doc, nil
}

// Fetch downloads and parses the front page. Relative links (Ask HN and
// friends) are resolved against the page URL.
func (f *HTMLFetcher) Fetch(ctx context.Context) ([]Story, error) {
	f.logger.Debug("fetching top stories", "url", f.url)

	doc, err := f.FetchDocument(ctx)
	if err != nil {
		return nil, err
	}

	stories := Parse(doc)
	for i := range stories {
		stories[i].Link = resolveLink(f.url, stories[i].Link)
	}

	f.logger.Info("parsed top stories", "count", len(stories))
	return stories, nil
}

// Parse extracts stories from front-page markup. Every tr.athing row
// contributes the first anchor inside its span.titleline; rows without one
// are skipped. Markup that cannot be read yields no stories.
//
// Links are returned exactly as written in the href, relative ones
// included. Fetch is what resolves them against the page URL.
func Parse(doc string) []Story {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	var stories []Story
	d.Find("tr.athing").Each(func(_ int, row *goquery.Selection) {
		a := row.Find("span.titleline a").First()
		if a.Length() == 0 {
			return
		}
		href, _ := a.Attr("href")
		stories = append(stories, Story{
			Title: strings.TrimSpace(a.Text()),
			Link:  strings.TrimSpace(href),
		})
	})
	return stories
}

func resolveLink(base, href string) string {
	if href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
