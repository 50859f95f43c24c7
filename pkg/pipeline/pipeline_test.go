package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/reqdoc/pkg/errors"
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
      - level: 0
        record:
          name: Figure
          type: Diagram
          fields:
            file_path: fig.png
            caption: Context
  - path: reqs/legacy/old.trlc
    items:
      - level: 0
        record:
          name: OLD-1
          type: Requirement
          fields:
            description: Gone
`

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// setup writes the test tree and the image it references into a temp dir
// and returns the tree path and an output directory.
func setup(t *testing.T) (tree, out string) {
	t.Helper()
	dir := t.TempDir()
	tree = filepath.Join(dir, "tree.yaml")
	writeFile(t, tree, testTree)
	writeFile(t, filepath.Join(dir, "fig.png"), "png")
	return tree, filepath.Join(dir, "out")
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"markdown", false},
		{"rst", false},
		{"docx", false},
		{"dump", false},
		{"md", true},
		{"DOCX", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateDiagramFormat(t *testing.T) {
	tests := []struct {
		format, output string
		wantErr        bool
	}{
		{"png", FormatMarkdown, false},
		{"svg", FormatMarkdown, false},
		{"svg", FormatRST, false},
		{"png", FormatDOCX, false},
		{"jpg", FormatDOCX, false},
		{"svg", FormatDOCX, true},
		{"pdf", FormatMarkdown, true},
	}

	for _, tt := range tests {
		err := ValidateDiagramFormat(tt.format, tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDiagramFormat(%q, %q) error = %v, wantErr %v", tt.format, tt.output, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{TreePath: "tree.yaml", Format: FormatMarkdown, DiagramFormat: "PNG"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	if opts.OutDir != DefaultOutDir {
		t.Errorf("OutDir = %q, want %q", opts.OutDir, DefaultOutDir)
	}
	if opts.Name != DefaultName {
		t.Errorf("Name = %q, want %q", opts.Name, DefaultName)
	}
	if opts.TopLevel != DefaultTopLevel {
		t.Errorf("TopLevel = %q, want %q", opts.TopLevel, DefaultTopLevel)
	}
	if opts.Empty != DefaultEmpty {
		t.Errorf("Empty = %q, want %q", opts.Empty, DefaultEmpty)
	}
	if opts.DiagramFormat != "png" {
		t.Errorf("DiagramFormat = %q, want png", opts.DiagramFormat)
	}
	if opts.Logger == nil || opts.Stdout == nil {
		t.Error("runtime defaults not set")
	}

	// Idempotent
	opts.Name = ""
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Name != "" {
		t.Errorf("second call changed Name to %q", opts.Name)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no tree", Options{Format: FormatMarkdown}, errors.ErrCodeInvalidInput},
		{"no format", Options{TreePath: "t.yaml"}, errors.ErrCodeInvalidFormat},
		{"name with path", Options{TreePath: "t.yaml", Format: FormatRST, Name: "a/b"}, errors.ErrCodeInvalidPath},
		{"svg in docx", Options{TreePath: "t.yaml", Format: FormatDOCX, DiagramFormat: "svg"}, errors.ErrCodeInvalidFormat},
		{"bad exclude", Options{TreePath: "t.yaml", Format: FormatDump, Exclude: []string{""}}, errors.ErrCodeInvalidPath},
		{"bad server", Options{TreePath: "t.yaml", Format: FormatMarkdown, PlantUML: "ftp://plantuml"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWatchPaths(t *testing.T) {
	opts := Options{TreePath: "tree.yaml", Project: "p.toml"}
	got := opts.WatchPaths()
	if len(got) != 2 || got[0] != "tree.yaml" || got[1] != "p.toml" {
		t.Errorf("WatchPaths() = %v", got)
	}
}

func TestExecuteMarkdown(t *testing.T) {
	tree, out := setup(t)
	r := NewRunner(nil, nil)

	res, err := r.Execute(context.Background(), Options{
		TreePath: tree,
		Format:   FormatMarkdown,
		OutDir:   out,
		Exclude:  []string{"reqs/legacy"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Stats.Files != 1 || res.Stats.Excluded != 1 {
		t.Errorf("files = %d, excluded = %d, want 1, 1", res.Stats.Files, res.Stats.Excluded)
	}
	if res.Stats.Records != 2 || res.Stats.Diagrams != 1 {
		t.Errorf("records = %d, diagrams = %d, want 2, 1", res.Stats.Records, res.Stats.Diagrams)
	}
	wantOut := filepath.Join(out, "spec.md")
	if len(res.Outputs) != 1 || res.Outputs[0] != wantOut {
		t.Fatalf("outputs = %v, want [%s]", res.Outputs, wantOut)
	}

	want := "# Overview\n" +
		"\n" +
		"| ID | Description |\n" +
		"| --- | ----------- |\n" +
		"| REQ\\-1 | Boot |\n" +
		"\n" +
		"![Context](./fig.png)\n"
	if got := readFile(t, wantOut); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if got := readFile(t, filepath.Join(out, "fig.png")); got != "png" {
		t.Errorf("placed image = %q", got)
	}
}

func TestExecuteSingleDocument(t *testing.T) {
	tree, out := setup(t)
	r := NewRunner(nil, nil)

	res, err := r.Execute(context.Background(), Options{
		TreePath:       tree,
		Format:         FormatMarkdown,
		OutDir:         out,
		SingleDocument: true,
		Name:           "all",
		TopLevel:       "Reqs",
	})
	if err != nil {
		t.Fatal(err)
	}

	wantOut := filepath.Join(out, "all.md")
	if len(res.Outputs) != 1 || res.Outputs[0] != wantOut {
		t.Fatalf("outputs = %v, want [%s]", res.Outputs, wantOut)
	}
	got := readFile(t, wantOut)
	if !strings.HasPrefix(got, "# Reqs\n\n## Overview\n") {
		t.Errorf("document starts with %q", got[:min(len(got), 40)])
	}
	if !strings.Contains(got, "| OLD\\-1 | Gone |") {
		t.Error("second file missing from single document")
	}
}

func TestExecuteProject(t *testing.T) {
	dir := t.TempDir()
	tree := filepath.Join(dir, "tree.yaml")
	writeFile(t, tree, `
files:
  - path: spec.trlc
    items:
      - level: 0
        record: {name: REQ-1, type: Requirement, fields: {description: Boot}}
      - level: 0
        record: {name: N-1, type: Note, fields: {text: hidden}}
`)
	proj := filepath.Join(dir, "req2markdown.toml")
	writeFile(t, proj, `
[types.Requirement]
kind = "paragraph"
`)

	r := NewRunner(nil, nil)
	res, err := r.Execute(context.Background(), Options{
		TreePath: tree,
		Format:   FormatMarkdown,
		OutDir:   filepath.Join(dir, "out"),
		Project:  proj,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Note has no handler under the default skip fallback.
	if res.Stats.Skipped != 1 || res.Stats.Records != 1 {
		t.Errorf("skipped = %d, records = %d, want 1, 1", res.Stats.Skipped, res.Stats.Records)
	}
	if got, want := readFile(t, filepath.Join(dir, "out", "spec.md")), "Boot\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExecuteRepeatedRunsShareNoState(t *testing.T) {
	dir := t.TempDir()
	tree := filepath.Join(dir, "tree.yaml")
	writeFile(t, tree, `
files:
  - path: spec.trlc
    items:
      - section: Overview
        level: 0
      - section: Boot
        level: 1
`)
	proj := filepath.Join(dir, "numbered.toml")
	writeFile(t, proj, "[section]\nhook = \"numbered\"\n")
	out := filepath.Join(dir, "out")

	r := NewRunner(nil, nil)
	want := "# 1\\. Overview\n\n## 1\\.1\\. Boot\n"
	for run := 1; run <= 2; run++ {
		if _, err := r.Execute(context.Background(), Options{
			TreePath: tree,
			Format:   FormatMarkdown,
			OutDir:   out,
			Project:  proj,
		}); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if got := readFile(t, filepath.Join(out, "spec.md")); got != want {
			t.Errorf("run %d: got %q, want %q", run, got, want)
		}
	}
}

func TestExecuteDump(t *testing.T) {
	tree, _ := setup(t)
	var buf bytes.Buffer

	r := NewRunner(nil, nil)
	res, err := r.Execute(context.Background(), Options{
		TreePath: tree,
		Format:   FormatDump,
		Exclude:  []string{"reqs/legacy"},
		Stdout:   &buf,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Outputs) != 0 {
		t.Errorf("dump wrote documents: %v", res.Outputs)
	}
	got := buf.String()
	if !strings.Contains(got, "file reqs/spec.trlc\n") || strings.Contains(got, "old.trlc") {
		t.Errorf("dump output:\n%s", got)
	}
}

func TestExecuteErrors(t *testing.T) {
	tree, out := setup(t)
	dir := filepath.Dir(tree)
	writeFile(t, filepath.Join(dir, "bad.toml"), "[types.X]\nkind = \"chart\"")
	writeFile(t, filepath.Join(dir, "nofig.yaml"), `
files:
  - path: a.trlc
    items:
      - level: 0
        record: {name: F, type: Diagram, fields: {file_path: missing.png}}
`)

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing tree", Options{TreePath: filepath.Join(dir, "none.yaml"), Format: FormatMarkdown, OutDir: out}, errors.ErrCodeNotFound},
		{"bad project", Options{TreePath: tree, Format: FormatMarkdown, OutDir: out, Project: filepath.Join(dir, "bad.toml")}, errors.ErrCodeProjectOverride},
		{"missing diagram", Options{TreePath: filepath.Join(dir, "nofig.yaml"), Format: FormatRST, OutDir: out}, errors.ErrCodeNotFound},
		{"invalid options", Options{TreePath: tree, Format: "html"}, errors.ErrCodeInvalidFormat},
	}

	r := NewRunner(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestNewRendererUnsupported(t *testing.T) {
	if _, err := NewRenderer(FormatDump, nil); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("got %v, want UNSUPPORTED", err)
	}
}

func TestNewResolver(t *testing.T) {
	opts := Options{TreePath: "build/tree.yaml", OutDir: "out", NoCache: true}
	r := NewResolver(opts, NewRunner(nil, nil).Cache, nil)
	if r.Cache != nil {
		t.Error("cache set despite NoCache")
	}
	if len(r.Roots) != 1 || r.Roots[0] != "build" {
		t.Errorf("roots = %v, want [build]", r.Roots)
	}

	opts.Sources = []string{"a", "b"}
	if r := NewResolver(opts, nil, nil); len(r.Roots) != 2 {
		t.Errorf("roots = %v, want [a b]", r.Roots)
	}
}

func TestExecuteExampleTree(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(nil, nil)

	res, err := r.Execute(context.Background(), Options{
		TreePath: filepath.Join("..", "..", "examples", "requirements", "tree.yaml"),
		Format:   FormatDump,
		Stdout:   &buf,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Files != 2 || res.Stats.Records != 6 {
		t.Errorf("files = %d, records = %d, want 2, 6", res.Stats.Files, res.Stats.Records)
	}
	if !strings.Contains(buf.String(), "sw_req_boot") {
		t.Errorf("dump output:\n%s", buf.String())
	}
}
