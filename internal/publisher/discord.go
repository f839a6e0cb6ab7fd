package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ryosukesatoh/hn-digest/internal/report"
	"github.com/ryosukesatoh/hn-digest/internal/retry"
)

// Discord message limits.
const (
	maxEmbedDescription = 4096
	maxEmbedsPerMessage = 10
	maxCharsPerMessage  = 6000
)

type discordEmbedFooter struct {
	Text string `json:"text"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// DiscordPublisher publishes reports to a Discord channel via webhook.
type DiscordPublisher struct {
	webhookURL  string
	client      *http.Client
	retryConfig retry.Config
}

// NewDiscordPublisher creates a new DiscordPublisher.
func NewDiscordPublisher(webhookURL string) *DiscordPublisher {
	return &DiscordPublisher{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		retryConfig: retry.Config{
			MaxRetries: 3,
			BaseDelay:  1 * time.Second,
		},
	}
}

// Publish sends the report to Discord as one or more messages of embeds.
func (d *DiscordPublisher) Publish(ctx context.Context, r *report.Report) error {
	embeds := buildEmbeds(r)
	batches := batchEmbeds(embeds)

	for i, batch := range batches {
		err := retry.WithBackoff(ctx, d.retryConfig, func(ctx context.Context) error {
			return d.sendWebhook(ctx, batch)
		})
		if err != nil {
			return fmt.Errorf("discord: failed to send batch %d: %w", i+1, err)
		}

		// Delay between batches to avoid rate limits.
		if i < len(batches)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
	}
	return nil
}

// buildEmbeds splits the report body across embeds. Only the first carries
// the title, only the last the footer.
func buildEmbeds(r *report.Report) []discordEmbed {
	chunks := splitChunks(r.Content, maxEmbedDescription)
	if len(chunks) == 0 {
		chunks = []string{"(empty report)"}
	}

	embeds := make([]discordEmbed, len(chunks))
	for i, c := range chunks {
		embeds[i] = discordEmbed{
			Description: c,
			Color:       0xFF6600,
		}
	}
	embeds[0].Title = title(r)
	last := &embeds[len(embeds)-1]
	last.Footer = &discordEmbedFooter{Text: r.Path}
	if !r.GeneratedAt.IsZero() {
		last.Timestamp = r.GeneratedAt.Format(time.RFC3339)
	}
	return embeds
}

// splitChunks cuts s into pieces of at most max bytes, breaking on line
// boundaries where possible and never inside a UTF-8 sequence.
func splitChunks(s string, max int) []string {
	s = strings.TrimSpace(s)
	var chunks []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
		}
	}

	for _, line := range strings.SplitAfter(s, "\n") {
		if cur.Len()+len(line) <= max {
			cur.WriteString(line)
			continue
		}
		flush()
		for len(line) > max {
			cut := max
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		cur.WriteString(line)
	}
	flush()
	return chunks
}

// batchEmbeds splits embeds into batches respecting Discord limits:
// max 10 embeds per message, max 6000 total characters per message.
func batchEmbeds(embeds []discordEmbed) [][]discordEmbed {
	var batches [][]discordEmbed
	var current []discordEmbed
	currentChars := 0

	for _, e := range embeds {
		ec := embedCharCount(e)

		if len(current) > 0 && (len(current) >= maxEmbedsPerMessage || currentChars+ec > maxCharsPerMessage) {
			batches = append(batches, current)
			current = nil
			currentChars = 0
		}

		current = append(current, e)
		currentChars += ec
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches
}

// sendWebhook posts a batch of embeds to the Discord webhook.
func (d *DiscordPublisher) sendWebhook(ctx context.Context, embeds []discordEmbed) error {
	payload := discordWebhookPayload{Embeds: embeds}

	body, err := json.Marshal(payload)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &retry.StatusError{Code: resp.StatusCode}
	}

	return nil
}

// embedCharCount returns the total character count of an embed for batching purposes.
func embedCharCount(e discordEmbed) int {
	n := len(e.Title) + len(e.Description)
	if e.Footer != nil {
		n += len(e.Footer.Text)
	}
	return n
}
