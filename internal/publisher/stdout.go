package publisher

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ryosukesatoh/hn-digest/internal/report"
)

// StdoutPublisher prints the report to stdout.
type StdoutPublisher struct {
	w io.Writer
}

func NewStdoutPublisher() *StdoutPublisher {
	return &StdoutPublisher{w: os.Stdout}
}

func (p *StdoutPublisher) Publish(_ context.Context, r *report.Report) error {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("=", 72) + "\n")
	sb.WriteString(title(r) + "\n")
	fmt.Fprintf(&sb, "Source: %s\n", r.SourcePath)
	fmt.Fprintf(&sb, "Report: %s\n", r.Path)
	sb.WriteString(strings.Repeat("=", 72) + "\n\n")
	sb.WriteString(strings.TrimRight(r.Content, "\n") + "\n\n")
	sb.WriteString(strings.Repeat("=", 72) + "\n")

	_, err := io.WriteString(p.w, sb.String())
	return err
}
