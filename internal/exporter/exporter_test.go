package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ryosukesatoh/hn-digest/internal/fetcher"
)

type mockFetcher struct {
	stories []fetcher.Story
	err     error
	calls   int
}

func (m *mockFetcher) Fetch(ctx context.Context) ([]fetcher.Story, error) {
	m.calls++
	return m.stories, m.err
}

func sampleStories() []fetcher.Story {
	return []fetcher.Story{
		{Title: "A", Link: "http://a"},
		{Title: "B", Link: "http://b"},
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 5, 7, 30, 0, 0, time.Local)
}

func TestExportWritesMarkdown(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hacker_news")
	e := New(&mockFetcher{stories: sampleStories()}, dir, nil)

	path, err := e.Export(context.Background(), "2024-01-01", "09")
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	wantPath := filepath.Join(dir, "2024-01-01", "09.md")
	if path != wantPath {
		t.Errorf("Expected path %q, got %q", wantPath, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}

	want := "# Hacker News Top Stories (2024-01-01 09:00)\n\n1. [A](http://a)\n2. [B](http://b)\n"
	if string(data) != want {
		t.Errorf("Unexpected export content:\n%s\nwant:\n%s", data, want)
	}
}

func TestExportLineLayout(t *testing.T) {
	var stories []fetcher.Story
	for i := 1; i <= 30; i++ {
		stories = append(stories, fetcher.Story{Title: fmt.Sprintf("Story %d", i), Link: fmt.Sprintf("https://example.com/%d", i)})
	}

	e := New(&mockFetcher{stories: stories}, t.TempDir(), nil)
	path, err := e.Export(context.Background(), "2024-01-01", "23")
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 2+len(stories) {
		t.Fatalf("Expected %d lines, got %d", 2+len(stories), len(lines))
	}
	if lines[1] != "" {
		t.Errorf("Expected blank second line, got %q", lines[1])
	}
	for i, s := range stories {
		want := fmt.Sprintf("%d. [%s](%s)", i+1, s.Title, s.Link)
		if lines[i+2] != want {
			t.Errorf("line %d = %q, want %q", i+2, lines[i+2], want)
		}
	}
}

func TestExportDefaultsToCurrentDateAndHour(t *testing.T) {
	dir := t.TempDir()
	e := New(&mockFetcher{stories: sampleStories()}, dir, nil, WithClock(fixedClock))

	path, err := e.Export(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	wantPath := filepath.Join(dir, "2024-03-05", "07.md")
	if path != wantPath {
		t.Errorf("Expected zero-padded default path %q, got %q", wantPath, path)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# Hacker News Top Stories (2024-03-05 07:00)\n") {
		t.Errorf("Unexpected header: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestExportEmptyStoriesWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hacker_news")
	e := New(&mockFetcher{}, dir, nil)

	path, err := e.Export(context.Background(), "2024-01-01", "09")
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if path != "" {
		t.Errorf("Expected no path, got %q", path)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Expected export dir not to be created, stat err: %v", err)
	}
}

func TestExportFetchFailureDegradesToNoArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hacker_news")
	e := New(&mockFetcher{err: errors.New("connection refused")}, dir, nil)

	path, err := e.Export(context.Background(), "2024-01-01", "09")
	if err != nil {
		t.Fatalf("Fetch failure should not surface as an error, got: %v", err)
	}
	if path != "" {
		t.Errorf("Expected no path, got %q", path)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Expected no files written, stat err: %v", err)
	}
}

func TestExportOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	f := &mockFetcher{stories: sampleStories()}
	e := New(f, dir, nil)

	if _, err := e.Export(context.Background(), "2024-01-01", "09"); err != nil {
		t.Fatalf("first Export returned error: %v", err)
	}

	f.stories = []fetcher.Story{{Title: "C", Link: "http://c"}}
	path, err := e.Export(context.Background(), "2024-01-01", "09")
	if err != nil {
		t.Fatalf("second Export returned error: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "# Hacker News Top Stories (2024-01-01 09:00)\n\n1. [C](http://c)\n"
	if string(data) != want {
		t.Errorf("Expected file overwritten wholesale, got:\n%s", data)
	}
	if f.calls != 2 {
		t.Errorf("Expected 2 fetches, got %d", f.calls)
	}
}

func TestExportFilesystemErrorPropagates(t *testing.T) {
	// A regular file where the export dir should go makes MkdirAll fail.
	root := t.TempDir()
	blocker := filepath.Join(root, "hacker_news")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	e := New(&mockFetcher{stories: sampleStories()}, blocker, nil)
	if _, err := e.Export(context.Background(), "2024-01-01", "09"); err == nil {
		t.Fatal("Expected filesystem error")
	}
}

func TestPath(t *testing.T) {
	e := New(nil, "", nil)
	if got := e.Path("2024-01-01", "09"); got != filepath.Join("hacker_news", "2024-01-01", "09.md") {
		t.Errorf("Unexpected default path %q", got)
	}
	if e.Dir() != DefaultDir {
		t.Errorf("Expected default dir %q, got %q", DefaultDir, e.Dir())
	}
}
