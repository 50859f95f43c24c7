// Package markdown renders requirement documents as Markdown.
//
// The package has two layers. The primitive functions ([Escape], [Heading],
// [TableHead], [TableRow], [Link], [Image], [ColoredText], [Anchor]) are pure
// and return format-safe fragments. [Renderer] writes those fragments into
// output documents for the conversion state machine.
//
// Primitives escape their text arguments. The Raw variants take text that is
// already in Markdown and must not be escaped again.
package markdown

import (
	"strings"
	"unicode"

	"github.com/matzehuels/reqdoc/pkg/render"
)

// Ext is the Markdown file extension.
const Ext = ".md"

// Escape escapes the reserved Markdown characters with a backslash.
func Escape(text string) string {
	return render.EscapeReserved(text)
}

// Heading returns an ATX heading followed by a blank line.
func Heading(text string, level int) string {
	return HeadingRaw(Escape(text), level)
}

// HeadingRaw is Heading without escaping.
func HeadingRaw(text string, level int) string {
	return headingLine(text, level) + "\n"
}

func headingLine(text string, level int) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text + "\n"
}

// TableHead returns the title row and the delimiter row of a pipe table.
func TableHead(titles []string) string {
	escaped := make([]string, len(titles))
	dashes := make([]string, len(titles))
	for i, t := range titles {
		escaped[i] = Escape(t)
		dashes[i] = strings.Repeat("-", max(3, len(escaped[i])))
	}
	return "| " + strings.Join(escaped, " | ") + " |\n" +
		"| " + strings.Join(dashes, " | ") + " |\n"
}

// TableRow returns a table row of escaped values.
func TableRow(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = Escape(v)
	}
	return TableRowRaw(escaped)
}

// TableRowRaw returns a table row of cells already in Markdown. Line breaks
// inside a cell become <br>.
func TableRowRaw(cells []string) string {
	flat := make([]string, len(cells))
	for i, c := range cells {
		flat[i] = strings.ReplaceAll(c, "\n", "<br>")
	}
	return "| " + strings.Join(flat, " | ") + " |\n"
}

// Link returns an inline link. The text is escaped, the target is not.
func Link(text, target string) string {
	return LinkRaw(Escape(text), target)
}

// LinkRaw is Link without escaping.
func LinkRaw(text, target string) string {
	return "[" + text + "](" + target + ")"
}

// Image returns an image reference to file relative to the document.
func Image(file, caption string) string {
	return "![" + Escape(caption) + "](./" + file + ")\n"
}

// ColoredText returns text in an HTML span with the given color.
func ColoredText(text, color string) string {
	return `<span style="color:` + color + `">` + Escape(text) + "</span>"
}

// Anchor returns the heading anchor for text: lower case, spaces replaced by
// "-", and everything except letters, digits, "-" and "_" removed.
func Anchor(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
