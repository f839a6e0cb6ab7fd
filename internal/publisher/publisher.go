package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ryosukesatoh/hn-digest/internal/config"
	"github.com/ryosukesatoh/hn-digest/internal/report"
)

// Publisher publishes a report to some output destination.
type Publisher interface {
	Publish(ctx context.Context, r *report.Report) error
}

// New builds the publishers named by the configuration. The web publisher
// is returned separately as well so the caller can start and stop it.
func New(cfg *config.Config, logger *slog.Logger) ([]Publisher, *WebPublisher, error) {
	switch cfg.Publisher.Type {
	case "none":
		return nil, nil, nil
	case "stdout":
		return []Publisher{NewStdoutPublisher()}, nil, nil
	case "email":
		e := cfg.Publisher.Email
		return []Publisher{NewEmailPublisher(e.SMTPHost, e.SMTPPort, e.Username, e.Password, e.From, e.To)}, nil, nil
	case "web":
		wp := NewWebPublisher(cfg.Publisher.Web.Addr, logger)
		return []Publisher{wp}, wp, nil
	case "discord":
		return []Publisher{NewDiscordPublisher(cfg.Publisher.Discord.WebhookURL)}, nil, nil
	default:
		return nil, nil, fmt.Errorf("publisher: unsupported type %q", cfg.Publisher.Type)
	}
}

// title names a report for headers and subjects, e.g.
// "Hacker News Report 2024-01-01 09:00".
func title(r *report.Report) string {
	date := filepath.Base(filepath.Dir(r.SourcePath))
	hour := strings.TrimSuffix(filepath.Base(r.SourcePath), filepath.Ext(r.SourcePath))
	if len(date) == len("2006-01-02") && len(hour) == 2 {
		return fmt.Sprintf("Hacker News Report %s %s:00", date, hour)
	}
	return "Hacker News Report " + r.GeneratedAt.Format("2006-01-02 15:04")
}
