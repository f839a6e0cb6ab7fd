package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type fakeSummarizer struct {
	model  string
	out    string
	err    error
	inputs []string
}

func (f *fakeSummarizer) Model() string { return f.model }

func (f *fakeSummarizer) GenerateDailyReport(_ context.Context, markdown string) (string, error) {
	f.inputs = append(f.inputs, markdown)
	return f.out, f.err
}

type fakePromptSummarizer struct {
	fakeSummarizer
	prompts []string
}

func (f *fakePromptSummarizer) GenerateReport(_ context.Context, systemPrompt, markdown string) (string, error) {
	f.prompts = append(f.prompts, systemPrompt)
	f.inputs = append(f.inputs, markdown)
	return f.out, f.err
}

func writePrompt(t *testing.T, dir, reportType, model, content string) {
	t.Helper()
	if err := os.WriteFile(PromptPath(dir, reportType, model), []byte(content), 0o644); err != nil {
		t.Fatalf("write prompt: %v", err)
	}
}

func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func TestNewPreloadsPrompts(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "hacker_news_hours_topic", "openai", "topics prompt")
	writePrompt(t, dir, "hacker_news_daily_report", "openai", "daily prompt")

	g, err := New(&fakeSummarizer{model: "openai"}, []string{"hacker_news_hours_topic", "hacker_news_daily_report"}, WithPromptsDir(dir))
	assert.Equal(t, err, nil)

	p, ok := g.Prompt("hacker_news_hours_topic")
	assert.Equal(t, ok, true)
	assert.Equal(t, p, "topics prompt")

	p, ok = g.Prompt("hacker_news_daily_report")
	assert.Equal(t, ok, true)
	assert.Equal(t, p, "daily prompt")

	_, ok = g.Prompt("github")
	assert.Equal(t, ok, false)
}

func TestNewMissingPromptFails(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "hacker_news_hours_topic", "openai", "topics prompt")

	g, err := New(&fakeSummarizer{model: "openai"}, []string{"hacker_news_hours_topic", "github"}, WithPromptsDir(dir))
	if err == nil {
		t.Fatal("Expected error for missing prompt file")
	}
	if g != nil {
		t.Error("Expected no generator on failed construction")
	}
	assert.Equal(t, errors.Is(err, ErrPromptNotFound), true)
	if !strings.Contains(err.Error(), "github_openai_prompt.txt") {
		t.Errorf("Expected error to name the missing file, got: %v", err)
	}
}

func TestNewPromptFileIsModelSpecific(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "hacker_news_hours_topic", "openai", "topics prompt")

	_, err := New(&fakeSummarizer{model: "anthropic"}, []string{"hacker_news_hours_topic"}, WithPromptsDir(dir))
	assert.Equal(t, errors.Is(err, ErrPromptNotFound), true)
}

func TestNewRequiresSummarizer(t *testing.T) {
	_, err := New(nil, nil)
	assert.NotEqual(t, err, nil)
}

func TestGenerateDailyReport(t *testing.T) {
	dir := t.TempDir()
	src := writeExport(t, dir, "foo.md", "# Hacker News Top Stories (2024-01-01 09:00)\n\n1. [A](http://a)\n")
	llm := &fakeSummarizer{model: "openai", out: "SUMMARY"}

	g, err := New(llm, nil, WithPromptsDir(dir))
	assert.Equal(t, err, nil)

	text, path, err := g.GenerateDailyReport(context.Background(), src)
	assert.Equal(t, err, nil)
	assert.Equal(t, text, "SUMMARY")
	assert.Equal(t, path, filepath.Join(dir, "foo_report.md"))

	data, err := os.ReadFile(path)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(data), "SUMMARY")

	assert.Equal(t, len(llm.inputs), 1)
	assert.Equal(t, llm.inputs[0], "# Hacker News Top Stories (2024-01-01 09:00)\n\n1. [A](http://a)\n")
}

func TestGenerateReportByDateRangeMatchesDaily(t *testing.T) {
	dir := t.TempDir()
	src := writeExport(t, dir, "foo.md", "stories")
	g, err := New(&fakeSummarizer{model: "openai", out: "SUMMARY"}, nil, WithPromptsDir(dir))
	assert.Equal(t, err, nil)

	text, path, err := g.GenerateReportByDateRange(context.Background(), src, 7)
	assert.Equal(t, err, nil)
	assert.Equal(t, text, "SUMMARY")
	assert.Equal(t, path, filepath.Join(dir, "foo_report.md"))
}

func TestGenerateReportByDateRangeIgnoresDays(t *testing.T) {
	for _, days := range []int{0, -1} {
		dir := t.TempDir()
		src := writeExport(t, dir, "foo.md", "stories")
		g, err := New(&fakeSummarizer{model: "openai", out: "SUMMARY"}, nil, WithPromptsDir(dir))
		assert.Equal(t, err, nil)

		text, path, err := g.GenerateReportByDateRange(context.Background(), src, days)
		assert.Equal(t, err, nil)
		assert.Equal(t, text, "SUMMARY")
		assert.Equal(t, path, filepath.Join(dir, "foo_report.md"))

		data, err := os.ReadFile(path)
		assert.Equal(t, err, nil)
		assert.Equal(t, string(data), "SUMMARY")
	}
}

func TestGenerateRecordsDays(t *testing.T) {
	dir := t.TempDir()
	src := writeExport(t, dir, "foo.md", "stories")
	g, err := New(&fakeSummarizer{model: "openai", out: "SUMMARY"}, nil, WithPromptsDir(dir))
	assert.Equal(t, err, nil)

	r, err := g.Generate(context.Background(), src, Request{Mode: ModeDateRange, Days: 3})
	assert.Equal(t, err, nil)
	assert.Equal(t, r.Mode, ModeDateRange)
	assert.Equal(t, r.Days, 3)
}

func TestGenerateOverwritesPreviousReport(t *testing.T) {
	dir := t.TempDir()
	src := writeExport(t, dir, "09.md", "stories")
	writeExport(t, dir, "09_report.md", "an old and much longer report body")

	g, err := New(&fakeSummarizer{model: "openai", out: "new"}, nil, WithPromptsDir(dir))
	assert.Equal(t, err, nil)

	_, path, err := g.GenerateDailyReport(context.Background(), src)
	assert.Equal(t, err, nil)

	data, _ := os.ReadFile(path)
	assert.Equal(t, string(data), "new")
}

func TestGenerateUsesPromptForReportType(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "hacker_news_hours_topic", "anthropic", "You summarize HN topics.")
	src := writeExport(t, dir, "10.md", "stories")

	llm := &fakePromptSummarizer{fakeSummarizer: fakeSummarizer{model: "anthropic", out: "topics"}}
	now := time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC)
	g, err := New(llm, []string{"hacker_news_hours_topic"}, WithPromptsDir(dir), WithClock(func() time.Time { return now }))
	assert.Equal(t, err, nil)

	r, err := g.Generate(context.Background(), src, Request{ReportType: "hacker_news_hours_topic"})
	assert.Equal(t, err, nil)
	assert.Equal(t, r.Content, "topics")
	assert.Equal(t, r.Mode, ModeDaily)
	assert.Equal(t, r.SourcePath, src)
	assert.Equal(t, r.ReportType, "hacker_news_hours_topic")
	assert.Equal(t, r.GeneratedAt, now)
	assert.Equal(t, llm.prompts, []string{"You summarize HN topics."})
}

func TestGenerateWithoutReportTypeSkipsPrompt(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "hacker_news_hours_topic", "anthropic", "prompt")
	src := writeExport(t, dir, "10.md", "stories")

	llm := &fakePromptSummarizer{fakeSummarizer: fakeSummarizer{model: "anthropic", out: "plain"}}
	g, err := New(llm, []string{"hacker_news_hours_topic"}, WithPromptsDir(dir))
	assert.Equal(t, err, nil)

	_, _, err = g.GenerateDailyReport(context.Background(), src)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(llm.prompts), 0)
	assert.Equal(t, len(llm.inputs), 1)
}

func TestGenerateErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeExport(t, dir, "foo.md", "stories")

	g, err := New(&fakeSummarizer{model: "openai", err: errors.New("rate limited")}, nil, WithPromptsDir(dir))
	assert.Equal(t, err, nil)

	t.Run("missing source", func(t *testing.T) {
		_, _, err := g.GenerateDailyReport(context.Background(), filepath.Join(dir, "missing.md"))
		assert.NotEqual(t, err, nil)
	})

	t.Run("summarizer failure writes nothing", func(t *testing.T) {
		_, _, err := g.GenerateDailyReport(context.Background(), src)
		assert.NotEqual(t, err, nil)
		_, statErr := os.Stat(ReportPath(src))
		assert.Equal(t, os.IsNotExist(statErr), true)
	})

	t.Run("unknown report type", func(t *testing.T) {
		_, err := g.Generate(context.Background(), src, Request{ReportType: "github"})
		assert.Equal(t, errors.Is(err, ErrUnknownReportType), true)
	})

	t.Run("unsupported mode", func(t *testing.T) {
		_, err := g.Generate(context.Background(), src, Request{Mode: "weekly"})
		assert.NotEqual(t, err, nil)
	})
}

func TestReportPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"foo.md", "foo_report.md"},
		{filepath.Join("hacker_news", "2024-01-01", "09.md"), filepath.Join("hacker_news", "2024-01-01", "09_report.md")},
		{"notes", "notes_report.md"},
	}
	for _, tt := range tests {
		assert.Equal(t, ReportPath(tt.in), tt.want)
	}
}
