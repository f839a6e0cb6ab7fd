package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ryosukesatoh/hn-digest/internal/logging"
	"github.com/ryosukesatoh/hn-digest/internal/report"
	"github.com/ryosukesatoh/hn-digest/internal/retry"
)

var _ report.PromptSummarizer = (*OpenAISummarizer)(nil)

// OpenAISummarizer uses the Chat Completions API to write reports.
type OpenAISummarizer struct {
	client       *openai.Client
	model        openai.ChatModel
	maxTokens    int64
	systemPrompt string
	retryConfig  retry.Config
	logger       *slog.Logger
}

func NewOpenAISummarizer(apiKey, model string, maxTokens int, systemPrompt string, logger *slog.Logger, opts ...option.RequestOption) *OpenAISummarizer {
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := openai.NewClient(reqOpts...)

	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &OpenAISummarizer{
		client:       &client,
		model:        openai.ChatModel(model),
		maxTokens:    int64(maxTokens),
		systemPrompt: systemPromptOrDefault(systemPrompt),
		retryConfig:  retry.DefaultConfig(),
		logger:       logging.OrDiscard(logger),
	}
}

func (s *OpenAISummarizer) Model() string {
	return "openai"
}

func (s *OpenAISummarizer) GenerateDailyReport(ctx context.Context, markdown string) (string, error) {
	return s.GenerateReport(ctx, s.systemPrompt, markdown)
}

func (s *OpenAISummarizer) GenerateReport(ctx context.Context, systemPrompt, markdown string) (string, error) {
	s.logger.Debug("requesting report", "provider", "openai", "model", s.model, "input_bytes", len(markdown))

	var out string
	err := retry.WithBackoff(ctx, s.retryConfig, func(ctx context.Context) error {
		resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: s.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPromptOrDefault(systemPrompt)),
				openai.UserMessage(markdown),
			},
			MaxCompletionTokens: openai.Int(s.maxTokens),
		})
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) {
				return fmt.Errorf("openai: API error: %v: %w", err, &retry.StatusError{Code: apiErr.StatusCode})
			}
			return fmt.Errorf("openai: request failed: %w", err)
		}

		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return retry.Permanent(errors.New("openai: empty response"))
		}
		out = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
