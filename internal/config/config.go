package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appName = "hn-digest"

type Config struct {
	Schedule   string           `yaml:"schedule"`
	RunOnStart bool             `yaml:"run_on_start"`
	OutputDir  string           `yaml:"output_dir"`
	Log        LogConfig        `yaml:"log"`
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Report     ReportConfig     `yaml:"report"`
	Publisher  PublisherConfig  `yaml:"publisher"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type FetcherConfig struct {
	Type      string        `yaml:"type"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type SummarizerConfig struct {
	Type         string `yaml:"type"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	// BaseURL overrides the provider endpoint, e.g. for a proxy.
	BaseURL      string `yaml:"base_url"`
	MaxTokens    int    `yaml:"max_tokens"`
	SystemPrompt string `yaml:"system_prompt"`
}

type ReportConfig struct {
	PromptsDir string   `yaml:"prompts_dir"`
	Types      []string `yaml:"types"`
	// Type is the report type the scheduled runner generates.
	Type string `yaml:"type"`
}

type PublisherConfig struct {
	Type    string        `yaml:"type"`
	Email   EmailConfig   `yaml:"email"`
	Web     WebConfig     `yaml:"web"`
	Discord DiscordConfig `yaml:"discord"`
}

type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

type EmailConfig struct {
	SMTPHost string   `yaml:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

type WebConfig struct {
	Addr string `yaml:"addr"`
}

// SummarizerEnabled reports whether report generation is configured.
func (c *Config) SummarizerEnabled() bool {
	return c.Summarizer.Type != "none"
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func setDefaults(cfg *Config) {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 * * * *"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "hacker_news"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Fetcher.Type == "" {
		cfg.Fetcher.Type = "html"
	}
	if cfg.Fetcher.URL == "" {
		switch cfg.Fetcher.Type {
		case "rss":
			cfg.Fetcher.URL = "https://news.ycombinator.com/rss"
		default:
			cfg.Fetcher.URL = "https://news.ycombinator.com/"
		}
	}
	if cfg.Fetcher.Timeout == 0 {
		cfg.Fetcher.Timeout = 10 * time.Second
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "none"
	}
	if cfg.Summarizer.Model == "" {
		switch cfg.Summarizer.Type {
		case "anthropic":
			cfg.Summarizer.Model = "claude-haiku-4-5"
		case "openai":
			cfg.Summarizer.Model = "gpt-4o-mini"
		}
	}
	if cfg.Summarizer.MaxTokens == 0 {
		cfg.Summarizer.MaxTokens = 4096
	}
	if cfg.Report.PromptsDir == "" {
		cfg.Report.PromptsDir = "../prompts"
	}
	if len(cfg.Report.Types) == 0 {
		cfg.Report.Types = []string{"hacker_news_hours_topic"}
	}
	if cfg.Report.Type == "" {
		cfg.Report.Type = cfg.Report.Types[0]
	}
	if cfg.Publisher.Type == "" {
		cfg.Publisher.Type = "stdout"
	}
	if cfg.Publisher.Web.Addr == "" {
		cfg.Publisher.Web.Addr = ":8080"
	}
	if cfg.Publisher.Email.SMTPPort == 0 {
		cfg.Publisher.Email.SMTPPort = 587
	}
}

func validate(cfg *Config) error {
	switch cfg.Fetcher.Type {
	case "html", "rss":
	default:
		return fmt.Errorf("config: unsupported fetcher type %q (supported: html, rss)", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.Timeout < 0 {
		return fmt.Errorf("config: fetcher.timeout must be positive")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unsupported log level %q (supported: debug, info, warn, error)", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q (supported: text, json)", cfg.Log.Format)
	}
	switch cfg.Summarizer.Type {
	case "none":
	case "anthropic", "openai":
		if cfg.Summarizer.APIKey == "" {
			return fmt.Errorf("config: summarizer.api_key is required for %s summarizer", cfg.Summarizer.Type)
		}
	default:
		return fmt.Errorf("config: unsupported summarizer type %q (supported: none, anthropic, openai)", cfg.Summarizer.Type)
	}
	if !contains(cfg.Report.Types, cfg.Report.Type) {
		return fmt.Errorf("config: report.type %q is not listed in report.types", cfg.Report.Type)
	}
	switch cfg.Publisher.Type {
	case "none", "stdout", "email", "web", "discord":
	default:
		return fmt.Errorf("config: unsupported publisher type %q (supported: none, stdout, email, web, discord)", cfg.Publisher.Type)
	}
	if cfg.Publisher.Type == "discord" {
		if cfg.Publisher.Discord.WebhookURL == "" {
			return fmt.Errorf("config: publisher.discord.webhook_url is required for discord publisher")
		}
	}
	if cfg.Publisher.Type == "email" {
		if cfg.Publisher.Email.SMTPHost == "" {
			return fmt.Errorf("config: publisher.email.smtp_host is required for email publisher")
		}
		if len(cfg.Publisher.Email.To) == 0 {
			return fmt.Errorf("config: publisher.email.to is required for email publisher")
		}
		if cfg.Publisher.Email.From == "" {
			return fmt.Errorf("config: publisher.email.from is required for email publisher")
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Resolve picks the config file to load. An explicit path always wins;
// otherwise ./config.yaml, then $XDG_CONFIG_HOME/hn-digest/config.yaml.
// An empty result means no file was found and defaults apply.
func Resolve(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	if p, err := xdg.SearchConfigFile(filepath.Join(appName, "config.yaml")); err == nil {
		return p
	}
	return ""
}

// Load reads the config file, expands environment variables, applies defaults,
// and validates the configuration. Variables from a .env file in the working
// directory are loaded first; an empty path loads defaults only.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}

		expanded := expandEnvVars(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
