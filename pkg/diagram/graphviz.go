package diagram

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/reqdoc/pkg/errors"
)

// GraphvizTool renders DOT files in-process.
type GraphvizTool struct{}

func (GraphvizTool) Name() string { return "graphviz" }

func (GraphvizTool) Render(ctx context.Context, src, format, outDir string) error {
	var f graphviz.Format
	switch format {
	case "png":
		f = graphviz.PNG
	case "svg":
		f = graphviz.SVG
	case "jpg", "jpeg":
		f = graphviz.JPG
	default:
		return errors.New(errors.ErrCodeUnsupported, "graphviz cannot render %s", format)
	}

	dot, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", src)
	}
	out, err := RenderDOT(ctx, dot, f)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTool, err, "graphviz %s", src)
	}
	dst := ExpectedName(src, format, outDir)
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "write %s", dst)
	}
	return nil
}

// RenderDOT renders a DOT graph to format.
func RenderDOT(ctx context.Context, dot []byte, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the svg element by one sized to its viewBox, so
// the image scales in Markdown viewers instead of using point units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
