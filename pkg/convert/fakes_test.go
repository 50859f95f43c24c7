package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/reqdoc/pkg/model"
)

// fakeRenderer writes a compact line format per block:
//
//	H<level> text | O<level> name (type) | T titles | R cells | P text | D file caption
//
// Table ends and separators are empty lines.
type fakeRenderer struct {
	docs    map[string]*strings.Builder
	order   []string
	current string
	openErr error
	opens   int
	closes  int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{docs: make(map[string]*strings.Builder)}
}

func (f *fakeRenderer) Ext() string { return ".fake" }

func (f *fakeRenderer) Open(path string) error {
	if f.openErr != nil {
		return f.openErr
	}
	if f.current != "" {
		return fmt.Errorf("%s still open", f.current)
	}
	name := filepath.Base(path)
	f.docs[name] = &strings.Builder{}
	f.order = append(f.order, name)
	f.current = name
	f.opens++
	return nil
}

func (f *fakeRenderer) Close() error {
	if f.current == "" {
		return nil
	}
	f.current = ""
	f.closes++
	return nil
}

func (f *fakeRenderer) out() *strings.Builder { return f.docs[f.current] }

func (f *fakeRenderer) Heading(text string, level int) error {
	fmt.Fprintf(f.out(), "H%d %s\n", level, f.Escape(text))
	return nil
}

func (f *fakeRenderer) ObjectHeading(name, typeName string, level int) error {
	fmt.Fprintf(f.out(), "O%d %s (%s)\n", level, f.Escape(name), typeName)
	return nil
}

func (f *fakeRenderer) TableHead(titles []string) error {
	fmt.Fprintf(f.out(), "T %s\n", strings.Join(titles, "|"))
	return nil
}

func (f *fakeRenderer) TableRow(cells []string) error {
	fmt.Fprintf(f.out(), "R %s\n", strings.Join(cells, "|"))
	return nil
}

func (f *fakeRenderer) TableEnd() error {
	f.out().WriteString("\n")
	return nil
}

func (f *fakeRenderer) Paragraph(text string) error {
	fmt.Fprintf(f.out(), "P %s\n", f.Escape(text))
	return nil
}

func (f *fakeRenderer) Diagram(path, caption string) error {
	fmt.Fprintf(f.out(), "D %s %s\n", filepath.Base(path), f.Escape(caption))
	return nil
}

func (f *fakeRenderer) Separator() error {
	f.out().WriteString("\n")
	return nil
}

func (f *fakeRenderer) Escape(text string) string {
	return strings.ReplaceAll(text, "*", `\*`)
}

func (f *fakeRenderer) Link(text, target string) string {
	return "[" + f.Escape(text) + "](" + target + ")"
}

func (f *fakeRenderer) ColoredText(text, color string) string {
	return "{" + color + ":" + f.Escape(text) + "}"
}

func (f *fakeRenderer) RefTarget(doc, name string) string {
	return doc + "#" + name
}

func (f *fakeRenderer) doc(name string) string {
	if b, ok := f.docs[name]; ok {
		return b.String()
	}
	return ""
}

// fakePlacer returns out/<base> for every declared path, or err.
type fakePlacer struct {
	err      error
	declared []string
}

func (p *fakePlacer) Place(_ context.Context, declared string) (string, error) {
	p.declared = append(p.declared, declared)
	if p.err != nil {
		return "", p.err
	}
	base := filepath.Base(declared)
	return filepath.Join("out", strings.TrimSuffix(base, filepath.Ext(base))+".png"), nil
}

// recorder is a Converter recording every event.
type recorder struct {
	events  []string
	failOn  string
	failErr error
	closes  int
}

func (r *recorder) record(event string) error {
	r.events = append(r.events, event)
	if r.failOn != "" && event == r.failOn {
		return r.failErr
	}
	return nil
}

func (r *recorder) Begin(context.Context) error { return r.record("begin") }
func (r *recorder) EnterFile(_ context.Context, file string) error {
	return r.record("enter " + file)
}
func (r *recorder) VisitSection(_ context.Context, s model.Section) error {
	return r.record(fmt.Sprintf("section %s %d", s.Name, s.Level))
}
func (r *recorder) VisitRecord(_ context.Context, rec *model.Record, level int) error {
	return r.record(fmt.Sprintf("record %s %d", rec.Name, level))
}
func (r *recorder) LeaveFile(_ context.Context, file string) error {
	return r.record("leave " + file)
}
func (r *recorder) Finish(context.Context) error { return r.record("finish") }
func (r *recorder) Close() error {
	r.closes++
	return nil
}

func requirement(name, description string) *model.Record {
	return &model.Record{
		Name: name,
		Type: "Requirement",
		Fields: []model.Field{
			{Name: "description", Value: model.Scalar(description)},
		},
	}
}

func specTree() *model.Tree {
	return &model.Tree{Files: []model.File{{
		Path: "reqs/spec.trlc",
		Items: []model.Item{
			model.SectionItem("reqs/spec.trlc", "Overview", 0),
			model.RecordItem("reqs/spec.trlc", requirement("REQ-1", "The system shall boot."), 0),
		},
	}}}
}
