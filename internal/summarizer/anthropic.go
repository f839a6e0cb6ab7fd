package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ryosukesatoh/hn-digest/internal/logging"
	"github.com/ryosukesatoh/hn-digest/internal/report"
	"github.com/ryosukesatoh/hn-digest/internal/retry"
)

var _ report.PromptSummarizer = (*AnthropicSummarizer)(nil)

// AnthropicSummarizer uses the Anthropic Messages API to write reports.
type AnthropicSummarizer struct {
	client       *anthropic.Client
	model        anthropic.Model
	maxTokens    int64
	systemPrompt string
	retryConfig  retry.Config
	logger       *slog.Logger
}

// NewAnthropicSummarizer builds the client. Extra request options are
// appended after the API key; retries are handled here, not by the SDK.
func NewAnthropicSummarizer(apiKey, model string, maxTokens int, systemPrompt string, logger *slog.Logger, opts ...option.RequestOption) *AnthropicSummarizer {
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := anthropic.NewClient(reqOpts...)

	if model == "" {
		model = "claude-haiku-4-5" // value of anthropic.ModelClaudeHaiku4_5 (absent in SDK v1.9.0)
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &AnthropicSummarizer{
		client:       &client,
		model:        anthropic.Model(model),
		maxTokens:    int64(maxTokens),
		systemPrompt: systemPromptOrDefault(systemPrompt),
		retryConfig:  retry.DefaultConfig(),
		logger:       logging.OrDiscard(logger),
	}
}

// Model names the provider; it is the {model} part of prompt file names.
func (s *AnthropicSummarizer) Model() string {
	return "anthropic"
}

func (s *AnthropicSummarizer) GenerateDailyReport(ctx context.Context, markdown string) (string, error) {
	return s.GenerateReport(ctx, s.systemPrompt, markdown)
}

func (s *AnthropicSummarizer) GenerateReport(ctx context.Context, systemPrompt, markdown string) (string, error) {
	s.logger.Debug("requesting report", "provider", "anthropic", "model", s.model, "input_bytes", len(markdown))

	var out string
	err := retry.WithBackoff(ctx, s.retryConfig, func(ctx context.Context) error {
		resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     s.model,
			MaxTokens: s.maxTokens,
			System: []anthropic.TextBlockParam{
				{Text: systemPromptOrDefault(systemPrompt)},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(markdown)),
			},
		})
		if err != nil {
			var apiErr *anthropic.Error
			if errors.As(err, &apiErr) {
				return fmt.Errorf("anthropic: API error: %v: %w", err, &retry.StatusError{Code: apiErr.StatusCode})
			}
			return fmt.Errorf("anthropic: request failed: %w", err)
		}

		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return retry.Permanent(errors.New("anthropic: empty response"))
		}
		out = strings.TrimSpace(sb.String())
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
