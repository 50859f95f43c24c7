package docx

import (
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	md       = goldmark.New()
	spanOpen = regexp.MustCompile(`^<span\s+style="color:\s*([#\w]+);?">$`)
)

// style is the character formatting of the runs being written.
type style struct {
	bold   int
	italic int
	colors []string
}

// addMarkdown appends Markdown inline text to p as runs. Emphasis, strong
// emphasis, code spans, links and colored spans are kept as formatting;
// block structure is flattened into line breaks.
func addMarkdown(p *docx.Paragraph, src string) {
	source := []byte(src)
	root := md.Parser().Parse(text.NewReader(source))

	var st style
	blocks := 0
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			if entering {
				if blocks > 0 {
					p.AddText("\n")
				}
				blocks++
			}
		case *ast.Emphasis:
			d := 1
			if !entering {
				d = -1
			}
			if n.Level >= 2 {
				st.bold += d
			} else {
				st.italic += d
			}
		case *ast.Text:
			if !entering {
				return ast.WalkContinue, nil
			}
			st.run(p, string(util.UnescapePunctuations(n.Segment.Value(source))))
			if n.HardLineBreak() {
				p.AddText("\n")
			} else if n.SoftLineBreak() {
				st.run(p, " ")
			}
		case *ast.String:
			if entering {
				st.run(p, string(n.Value))
			}
		case *ast.CodeSpan:
			if entering {
				r := p.AddText(plainText(n, source))
				r.Font("Courier New", "Courier New", "Courier New", "")
				st.apply(r)
				return ast.WalkSkipChildren, nil
			}
		case *ast.Link:
			if entering {
				p.AddLink(plainText(n, source), string(n.Destination))
				return ast.WalkSkipChildren, nil
			}
		case *ast.AutoLink:
			if entering {
				url := string(n.URL(source))
				p.AddLink(url, url)
			}
		case *ast.RawHTML:
			if entering {
				st.html(rawHTML(n, source))
			}
		}
		return ast.WalkContinue, nil
	})
}

func (st *style) run(p *docx.Paragraph, s string) {
	if s == "" {
		return
	}
	st.apply(p.AddText(s))
}

func (st *style) apply(r *docx.Run) {
	if st.bold > 0 {
		r.Bold()
	}
	if st.italic > 0 {
		r.Italic()
	}
	if n := len(st.colors); n > 0 {
		r.Color(st.colors[n-1])
	}
}

// html tracks colored spans; other inline HTML is dropped.
func (st *style) html(tag string) {
	tag = strings.TrimSpace(tag)
	if m := spanOpen.FindStringSubmatch(tag); m != nil {
		st.colors = append(st.colors, hexColor(m[1]))
		return
	}
	if tag == "</span>" && len(st.colors) > 0 {
		st.colors = st.colors[:len(st.colors)-1]
	}
}

func rawHTML(n *ast.RawHTML, source []byte) string {
	var b strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

// plainText returns the concatenated text below n.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(util.UnescapePunctuations(c.Segment.Value(source)))
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

var namedColors = map[string]string{
	"black":      "000000",
	"blue":       "0000FF",
	"gray":       "808080",
	"green":      "008000",
	"grey":       "808080",
	"lightcoral": "F08080",
	"lightgreen": "90EE90",
	"orange":     "FFA500",
	"red":        "FF0000",
	"white":      "FFFFFF",
	"yellow":     "FFFF00",
}

// hexColor converts a CSS color name or #RRGGBB to the hex form Word uses.
func hexColor(c string) string {
	if hex, ok := namedColors[strings.ToLower(c)]; ok {
		return hex
	}
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}
