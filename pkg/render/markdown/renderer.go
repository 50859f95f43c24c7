package markdown

import (
	"path/filepath"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/render"
)

// Renderer writes Markdown documents.
type Renderer struct {
	open render.Opener
	w    *render.Writer
	doc  string
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

// Heading writes the heading line; the blank line after it is written by
// the next Separator.
func (r *Renderer) Heading(text string, level int) error {
	return r.write(headingLine(Escape(text), level))
}

// ObjectHeading writes the record name as a heading, so that record links
// resolve to its anchor.
func (r *Renderer) ObjectHeading(name, _ string, level int) error {
	return r.write(headingLine(Escape(name), level))
}

func (r *Renderer) TableHead(titles []string) error { return r.write(TableHead(titles)) }

func (r *Renderer) TableRow(cells []string) error { return r.write(TableRowRaw(cells)) }

func (r *Renderer) TableEnd() error { return r.write("\n") }

func (r *Renderer) Paragraph(text string) error { return r.write(Escape(text) + "\n") }

func (r *Renderer) Diagram(path, caption string) error {
	return r.write(Image(filepath.Base(path), caption))
}

func (r *Renderer) Separator() error { return r.write("\n") }

func (r *Renderer) Escape(text string) string { return Escape(text) }

func (r *Renderer) Link(text, target string) string { return Link(text, target) }

func (r *Renderer) ColoredText(text, color string) string { return ColoredText(text, color) }

// RefTarget returns "#anchor" inside the current document and
// "doc#anchor" across documents.
func (r *Renderer) RefTarget(doc, name string) string {
	if doc == r.doc {
		return "#" + Anchor(name)
	}
	return doc + "#" + Anchor(name)
}
