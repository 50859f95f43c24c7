// Package rst renders requirement documents as reStructuredText.
//
// Headings carry a label so records can be cross-referenced with :ref:.
// Tables are grid tables; their column widths depend on every row, so
// [Renderer] buffers a table until it ends and writes it in one piece.
package rst

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/matzehuels/reqdoc/pkg/render"
)

// Ext is the reStructuredText file extension.
const Ext = ".rst"

// underlines holds the heading adornment per level, starting at level 1.
const underlines = "=#~^\"+'"

// Escape escapes the reserved characters with a backslash.
func Escape(text string) string {
	return render.EscapeReserved(text)
}

// Label returns the label of a heading or record in document doc.
func Label(doc, text string) string {
	return doc + "-" + strings.ReplaceAll(strings.ToLower(text), " ", "-")
}

// Heading returns a labeled section title. The underline matches the
// display width of the escaped title.
func Heading(text string, level int, doc string) string {
	esc := Escape(text)
	return ".. _" + Label(doc, text) + ":\n\n" +
		esc + "\n" + strings.Repeat(underline(level), max(1, Width(esc))) + "\n"
}

// ObjectHeading returns a labeled admonition introducing a record.
func ObjectHeading(text, doc string) string {
	return ".. _" + Label(doc, text) + ":\n\n" +
		".. admonition:: " + Escape(text) + "\n"
}

func underline(level int) string {
	i := min(max(level, 1), len(underlines)) - 1
	return underlines[i : i+1]
}

// Width returns the display width of s in terminal cells.
func Width(s string) int {
	return uniseg.StringWidth(s)
}

// Widths returns the column widths of a grid table: the widest cell of
// each column over the head and all rows.
func Widths(head []string, rows [][]string) []int {
	widths := make([]int, len(head))
	for i, h := range head {
		widths[i] = Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], Width(c))
			}
		}
	}
	return widths
}

// TableHead returns the top border, title row and head separator of a grid
// table. Titles are escaped; widths must be computed from escaped text.
func TableHead(titles []string, widths []int, indent string) string {
	escaped := make([]string, len(titles))
	for i, t := range titles {
		escaped[i] = Escape(t)
	}
	return border(widths, '-', indent) + line(escaped, widths, indent) + border(widths, '=', indent)
}

// TableRow returns one grid table row of cells already in reStructuredText,
// followed by its separator.
func TableRow(cells []string, widths []int, indent string) string {
	return line(cells, widths, indent) + border(widths, '-', indent)
}

func border(widths []int, fill byte, indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat(string(fill), w+2))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}

func line(cells []string, widths []int, indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	b.WriteByte('|')
	for i, w := range widths {
		c := ""
		if i < len(cells) {
			c = cells[i]
		}
		b.WriteByte(' ')
		b.WriteString(c)
		b.WriteString(strings.Repeat(" ", max(0, w-Width(c))))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
	return b.String()
}

// Link returns a cross-reference to target. The text is escaped.
func Link(text, target string) string {
	return ":ref:`" + Escape(text) + " <" + target + ">`"
}

// Image returns an image directive for file relative to the document.
func Image(file, caption string) string {
	return ".. image:: ./" + file + "\n   :alt: " + Escape(caption) + "\n"
}
