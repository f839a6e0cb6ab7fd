package summarizer

import (
	"fmt"
	"log/slog"
	"strings"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"

	"github.com/ryosukesatoh/hn-digest/internal/config"
	"github.com/ryosukesatoh/hn-digest/internal/report"
)

// DefaultSystemPrompt is used when neither the config nor a report type
// supplies one.
const DefaultSystemPrompt = `You are a technology news analyst. The user message is a numbered markdown list of the current Hacker News top stories.

Write a concise report in markdown:
1. A short overview of the dominant themes.
2. The stories grouped by topic, each with its original link.
3. One line on why the most notable stories matter.

Do not invent stories or links that are not in the list.`

// New creates a new summarizer based on the configuration
func New(cfg *config.Config, logger *slog.Logger) (report.PromptSummarizer, error) {
	sc := cfg.Summarizer
	switch sc.Type {
	case "anthropic":
		var opts []anthropicoption.RequestOption
		if sc.BaseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(sc.BaseURL))
		}
		return NewAnthropicSummarizer(sc.APIKey, sc.Model, sc.MaxTokens, sc.SystemPrompt, logger, opts...), nil
	case "openai":
		var opts []openaioption.RequestOption
		if sc.BaseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(sc.BaseURL))
		}
		return NewOpenAISummarizer(sc.APIKey, sc.Model, sc.MaxTokens, sc.SystemPrompt, logger, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSummarizerType, cfg.Summarizer.Type)
	}
}

// ErrUnsupportedSummarizerType is returned when an unsupported summarizer type is specified
var ErrUnsupportedSummarizerType = fmt.Errorf("unsupported summarizer type")

func systemPromptOrDefault(p string) string {
	if strings.TrimSpace(p) == "" {
		return DefaultSystemPrompt
	}
	return p
}
