package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/pipeline"
)

const testTree = `
files:
  - path: reqs/spec.trlc
    items:
      - section: Overview
        level: 0
      - level: 0
        record:
          name: REQ-1
          type: Requirement
          fields:
            description: Boot
  - path: reqs/legacy/old.trlc
    items:
      - level: 0
        record:
          name: OLD-1
          type: Requirement
          fields:
            description: Gone
`

// captureOutput redirects status lines into a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := output
	output = &buf
	t.Cleanup(func() { output = old })
	return &buf
}

func writeTree(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.yaml")
	if err := os.WriteFile(path, []byte(testTree), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runRoot(t *testing.T, stdout io.Writer, args ...string) error {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestMarkdownCommand(t *testing.T) {
	isolateConfig(t)
	status := captureOutput(t)
	tree := writeTree(t)
	out := filepath.Join(t.TempDir(), "out")

	err := runRoot(t, io.Discard, "markdown", tree, "-o", out, "-x", "reqs/legacy", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(out, "spec.md"))
	if err != nil {
		t.Fatal(err)
	}
	want := "# Overview\n" +
		"\n" +
		"| ID | Description |\n" +
		"| --- | ----------- |\n" +
		"| REQ\\-1 | Boot |\n" +
		"\n"
	if got := string(data); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if _, err := os.Stat(filepath.Join(out, "old.md")); !os.IsNotExist(err) {
		t.Error("excluded file was converted")
	}
	if !strings.Contains(status.String(), "Converted 1 records to markdown") {
		t.Errorf("status output:\n%s", status.String())
	}
}

func TestSingleDocumentCommand(t *testing.T) {
	isolateConfig(t)
	captureOutput(t)
	tree := writeTree(t)
	out := filepath.Join(t.TempDir(), "out")

	err := runRoot(t, io.Discard, "rst", tree, "-o", out, "--single-document", "-n", "handbook", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(out, "handbook.rst")); err != nil {
		t.Errorf("single document not written: %v", err)
	}
}

func TestConvertCommandErrors(t *testing.T) {
	isolateConfig(t)
	captureOutput(t)
	tree := writeTree(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing tree", []string{"markdown", filepath.Join(t.TempDir(), "none.yaml"), "--no-cache"}, errors.ErrCodeNotFound},
		{"svg in docx", []string{"docx", tree, "--diagram-format", "svg", "--no-cache"}, errors.ErrCodeInvalidFormat},
		{"bad name", []string{"markdown", tree, "--single-document", "-n", "../x", "--no-cache"}, errors.ErrCodeInvalidPath},
		{"missing config", []string{"markdown", tree, "--config", filepath.Join(t.TempDir(), "none.yaml")}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runRoot(t, io.Discard, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDumpCommand(t *testing.T) {
	isolateConfig(t)
	status := captureOutput(t)
	tree := writeTree(t)
	var stdout bytes.Buffer

	if err := runRoot(t, &stdout, "dump", tree, "-x", "reqs/legacy"); err != nil {
		t.Fatal(err)
	}

	got := stdout.String()
	if !strings.Contains(got, "file reqs/spec.trlc\n") || strings.Contains(got, "old.trlc") {
		t.Errorf("dump output:\n%s", got)
	}
	if status.Len() != 0 {
		t.Errorf("dump printed status lines:\n%s", status.String())
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	var stdout bytes.Buffer

	if err := runRoot(t, &stdout, "cache", "path"); err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(stdout.String()), filepath.Join(dir, appName); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	status := captureOutput(t)

	if err := runRoot(t, io.Discard, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status.String(), "Cache is empty") {
		t.Errorf("status output:\n%s", status.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	var stdout bytes.Buffer
	if err := runRoot(t, &stdout, "completion", "bash"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), appName) {
		t.Error("completion script does not mention the command")
	}
}

func TestConvertCompletions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"tree argument", []string{"markdown", ""}, "yaml\nyml\njson\n:8\n"},
		{"no second argument", []string{"markdown", "tree.yaml", ""}, ":4\n"},
		{"markdown diagram formats", []string{"markdown", "tree.yaml", "--diagram-format", ""}, "jpeg\njpg\npng\nsvg\n:4\n"},
		{"docx diagram formats", []string{"docx", "tree.yaml", "--diagram-format", ""}, "jpeg\njpg\npng\n:4\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			if err := runRoot(t, &stdout, append([]string{"__complete"}, tt.args...)...); err != nil {
				t.Fatal(err)
			}
			if got := stdout.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummaryTable(t *testing.T) {
	got := summaryTable(pipeline.Stats{Files: 3, Excluded: 1, Sections: 4, Records: 17, Skipped: 2, Diagrams: 5})
	for _, want := range []string{"Files", "Records", "17", "Diagrams", "5"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary table missing %q:\n%s", want, got)
		}
	}
}

func TestWatchFiles(t *testing.T) {
	captureOutput(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, []byte("files: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, New(io.Discard, LogInfo).Logger, []string{path}, 100*time.Millisecond, func(context.Context) error {
			runs <- struct{}{}
			return nil
		})
	}()

	wait := func(what string) {
		t.Helper()
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", what)
		}
	}
	wait("initial run")

	if err := os.WriteFile(path, []byte("files: []\n# changed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wait("run after change")

	// Files other than the watched ones do not trigger a run.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-runs:
		t.Error("unrelated file triggered a run")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchFiles returned %v", err)
	}
}

func TestWatchFilesReportsFailure(t *testing.T) {
	status := captureOutput(t)
	path := filepath.Join(t.TempDir(), "tree.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, New(io.Discard, LogInfo).Logger, []string{path}, time.Millisecond, func(context.Context) error {
			ran <- struct{}{}
			return errors.New(errors.ErrCodeNotFound, "diagram fig.png not found")
		})
	}()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the initial run")
	}
	time.Sleep(100 * time.Millisecond)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("watchFiles returned %v, want nil after a failed run", err)
	}
	if !strings.Contains(status.String(), "diagram fig.png not found") {
		t.Errorf("status output:\n%s", status.String())
	}
}
