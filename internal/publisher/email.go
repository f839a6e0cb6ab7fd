package publisher

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/ryosukesatoh/hn-digest/internal/report"
)

// EmailPublisher sends the report as an HTML email via SMTP.
type EmailPublisher struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailPublisher(host string, port int, username, password, from string, to []string) *EmailPublisher {
	return &EmailPublisher{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		send:     smtp.SendMail,
	}
}

func (p *EmailPublisher) Publish(_ context.Context, r *report.Report) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		p.from,
		strings.Join(p.to, ","),
		title(r),
		buildHTMLBody(r),
	)

	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	var auth smtp.Auth
	if p.username != "" {
		auth = smtp.PlainAuth("", p.username, p.password, p.host)
	}

	if err := p.send(addr, auth, p.from, p.to, []byte(msg)); err != nil {
		return fmt.Errorf("email: failed to send: %w", err)
	}

	return nil
}

// buildHTMLBody wraps the report markdown in a minimal page. The markdown
// is escaped and shown preformatted.
func buildHTMLBody(r *report.Report) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 760px; margin: 0 auto; padding: 20px; color: #333; }
h1 { color: #1a1a2e; border-bottom: 2px solid #ff6600; padding-bottom: 10px; }
.meta { color: #666; font-size: 0.9em; margin-bottom: 10px; }
pre { white-space: pre-wrap; word-wrap: break-word; font-family: inherit; line-height: 1.5; }
</style></head><body>`)

	sb.WriteString(fmt.Sprintf("<h1>%s</h1>", html.EscapeString(title(r))))
	sb.WriteString(fmt.Sprintf(`<div class="meta">Generated %s</div>`, r.GeneratedAt.Format("January 2, 2006 15:04")))
	sb.WriteString(fmt.Sprintf("<pre>%s</pre>", html.EscapeString(r.Content)))

	sb.WriteString("</body></html>")
	return sb.String()
}
