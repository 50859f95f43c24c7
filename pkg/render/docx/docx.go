// Package docx renders requirement documents as Word documents.
//
// Inline content such as table cells and link text is produced in Markdown
// inline syntax, the same as the markdown back-end, and converted to Word
// runs when a paragraph or cell is written. Documents are built in memory
// and serialized when closed.
package docx

import (
	"io"
	"path/filepath"
	"strconv"

	"github.com/fumiama/go-docx"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/render"
	"github.com/matzehuels/reqdoc/pkg/render/markdown"
)

// Ext is the Word document file extension.
const Ext = ".docx"

const headShade = "D9D9D9"

// headingSizes holds run sizes in half-points per heading level.
var headingSizes = []string{"36", "32", "28", "26", "24"}

// Renderer writes Word documents.
type Renderer struct {
	open render.Opener
	out  io.WriteCloser
	doc  *docx.Docx
	name string

	head    []string
	rows    [][]string
	figures int
}

// New returns a Renderer creating files with open. Nil creates files on disk.
func New(open render.Opener) *Renderer {
	if open == nil {
		open = render.CreateFile
	}
	return &Renderer{open: open}
}

func (r *Renderer) Ext() string { return Ext }

// Open creates the output file right away so that an unwritable target
// fails before any content is built.
func (r *Renderer) Open(path string) error {
	if r.doc != nil {
		return errors.New(errors.ErrCodeInvalidState, "%s is still open", r.name)
	}
	out, err := r.open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "create %s", path)
	}
	r.out = out
	r.doc = docx.New().WithDefaultTheme()
	r.name = filepath.Base(path)
	r.head, r.rows = nil, nil
	r.figures = 0
	return nil
}

func (r *Renderer) Close() error {
	if r.doc == nil {
		return nil
	}
	_, err := r.doc.WriteTo(r.out)
	if cerr := r.out.Close(); err == nil {
		err = cerr
	}
	r.doc, r.out = nil, nil
	if err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "write %s", r.name)
	}
	return nil
}

func (r *Renderer) paragraph() (*docx.Paragraph, error) {
	if r.doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidState, "no document open")
	}
	return r.doc.AddParagraph(), nil
}

func (r *Renderer) Heading(text string, level int) error {
	p, err := r.paragraph()
	if err != nil {
		return err
	}
	p.AddText(text).Bold().Size(headingSize(level))
	return nil
}

func (r *Renderer) ObjectHeading(name, typeName string, level int) error {
	p, err := r.paragraph()
	if err != nil {
		return err
	}
	p.AddText(name).Bold().Size(headingSize(level))
	if typeName != "" {
		p.AddText(" (" + typeName + ")").Italic().Size(headingSize(level + 1))
	}
	return nil
}

func headingSize(level int) string {
	i := min(max(level, 1), len(headingSizes)) - 1
	return headingSizes[i]
}

func (r *Renderer) TableHead(titles []string) error {
	if r.doc == nil {
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
	r.rows = append(r.rows, append([]string(nil), cells...))
	return nil
}

// TableEnd adds the buffered table. Word tables are sized on creation, so
// rows are collected until the table ends.
func (r *Renderer) TableEnd() error {
	if r.head == nil {
		return nil
	}
	tbl := r.doc.AddTable(len(r.rows)+1, len(r.head), 0, nil)
	for j, title := range r.head {
		cell := tbl.TableRows[0].TableCells[j]
		cell.Shade("clear", "auto", headShade)
		cell.AddParagraph().AddText(title).Bold()
	}
	for i, row := range r.rows {
		for j, c := range row {
			if j < len(r.head) {
				addMarkdown(tbl.TableRows[i+1].TableCells[j].AddParagraph(), c)
			}
		}
	}
	r.head, r.rows = nil, nil
	return nil
}

func (r *Renderer) Paragraph(text string) error {
	p, err := r.paragraph()
	if err != nil {
		return err
	}
	addMarkdown(p, text)
	return nil
}

// Diagram embeds the image at path followed by a numbered caption. Only
// raster images can be embedded.
func (r *Renderer) Diagram(path, caption string) error {
	p, err := r.paragraph()
	if err != nil {
		return err
	}
	p.Justification("center")
	if _, err := p.AddInlineDrawingFrom(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "embed diagram %s", path)
	}
	r.figures++
	r.doc.AddParagraph().Justification("center").
		AddText("Figure " + strconv.Itoa(r.figures) + ": " + caption).Italic()
	return nil
}

// Separator is a no-op: paragraphs carry their own spacing.
func (r *Renderer) Separator() error {
	if r.doc == nil {
		return errors.New(errors.ErrCodeInvalidState, "no document open")
	}
	return nil
}

func (r *Renderer) Escape(text string) string { return markdown.Escape(text) }

func (r *Renderer) Link(text, target string) string { return markdown.Link(text, target) }

func (r *Renderer) ColoredText(text, color string) string {
	return markdown.ColoredText(text, color)
}

func (r *Renderer) RefTarget(doc, name string) string {
	if doc == r.name {
		return "#" + markdown.Anchor(name)
	}
	return doc + "#" + markdown.Anchor(name)
}
