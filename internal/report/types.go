package report

import (
	"context"
	"time"
)

// Summarizer is the text-in/text-out capability that writes report content
// from an export artifact. Model names the backend and selects which prompt
// files are loaded.
type Summarizer interface {
	Model() string
	GenerateDailyReport(ctx context.Context, markdown string) (string, error)
}

// PromptSummarizer is implemented by summarizers that accept a system
// prompt per call. When available the preloaded prompt for the requested
// report type is passed along.
type PromptSummarizer interface {
	Summarizer
	GenerateReport(ctx context.Context, systemPrompt, markdown string) (string, error)
}

// Mode selects the kind of report being generated.
type Mode string

const (
	ModeDaily     Mode = "daily"
	ModeDateRange Mode = "date_range"
)

// Request parameterizes Generate.
type Request struct {
	Mode Mode
	// Days is carried for date range reports but does not select input
	// files; the single source file is always what gets summarized.
	Days       int
	ReportType string
}

// Report is a generated report artifact.
type Report struct {
	Content     string    `json:"content"`
	Path        string    `json:"path"`
	SourcePath  string    `json:"source_path"`
	Mode        Mode      `json:"mode"`
	Days        int       `json:"days,omitempty"`
	ReportType  string    `json:"report_type,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
