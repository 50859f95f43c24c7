package rst

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/render"
)

// blockIndent is the indentation of tables inside an admonition.
const blockIndent = "    "

// Renderer writes reStructuredText documents.
type Renderer struct {
	open render.Opener
	w    *render.Writer
	doc  string

	// indent is set after an object heading, so the record's table becomes
	// the admonition body.
	indent bool

	head []string
	rows [][]string
}

// New returns a Renderer creating files with open. Nil creates files on disk.
func New(open render.Opener) *Renderer {
	if open == nil {
		open = render.CreateFile
	}
	return &Renderer{open: open}
}

func (r *Renderer) Ext() string { return Ext }

func (r *Renderer) Open(path string) error {
	if r.w != nil {
		return errors.New(errors.ErrCodeInvalidState, "%s is still open", r.doc)
	}
	w, err := render.OpenWriter(r.open, path)
	if err != nil {
		return err
	}
	r.w = w
	r.doc = filepath.Base(path)
	r.indent = false
	r.head, r.rows = nil, nil
	return nil
}

func (r *Renderer) Close() error {
	if r.w == nil {
		return nil
	}
	err := r.w.Close()
	r.w = nil
	return err
}

func (r *Renderer) write(s string) error {
	if r.w == nil {
		return errors.New(errors.ErrCodeInvalidState, "no document open")
	}
	r.w.WriteString(s)
	return r.w.Err()
}

func (r *Renderer) Heading(text string, level int) error {
	r.indent = false
	return r.write(Heading(text, level, r.doc))
}

func (r *Renderer) ObjectHeading(name, _ string, _ int) error {
	r.indent = true
	return r.write(ObjectHeading(name, r.doc))
}

func (r *Renderer) TableHead(titles []string) error {
	if r.w == nil {
		return errors.New(errors.ErrCodeInvalidState, "no document open")
	}
	r.head = append([]string(nil), titles...)
	r.rows = nil
	return nil
}

func (r *Renderer) TableRow(cells []string) error {
	if r.head == nil {
		return errors.New(errors.ErrCodeInvalidState, "table row without table head")
	}
	flat := make([]string, len(cells))
	for i, c := range cells {
		flat[i] = strings.ReplaceAll(c, "\n", " ")
	}
	r.rows = append(r.rows, flat)
	return nil
}

// TableEnd writes the buffered table and the blank line after it.
func (r *Renderer) TableEnd() error {
	if r.head == nil {
		return nil
	}
	escaped := make([]string, len(r.head))
	for i, t := range r.head {
		escaped[i] = Escape(t)
	}
	widths := Widths(escaped, r.rows)
	indent := ""
	if r.indent {
		indent = blockIndent
	}

	var b strings.Builder
	b.WriteString(TableHead(r.head, widths, indent))
	for _, row := range r.rows {
		b.WriteString(TableRow(row, widths, indent))
	}
	b.WriteString("\n")
	r.head, r.rows = nil, nil
	// The admonition body ends with its table.
	r.indent = false
	return r.write(b.String())
}

func (r *Renderer) Paragraph(text string) error {
	r.indent = false
	return r.write(Escape(text) + "\n")
}

func (r *Renderer) Diagram(path, caption string) error {
	r.indent = false
	return r.write(Image(filepath.Base(path), caption))
}

func (r *Renderer) Separator() error { return r.write("\n") }

func (r *Renderer) Escape(text string) string { return Escape(text) }

func (r *Renderer) Link(text, target string) string { return Link(text, target) }

// ColoredText returns the escaped text unchanged: reStructuredText has no
// inline color without a custom role.
func (r *Renderer) ColoredText(text, _ string) string { return Escape(text) }

func (r *Renderer) RefTarget(doc, name string) string { return Label(doc, name) }
