// Package diagram locates diagrams referenced by records and places them
// next to the generated documents.
//
// # Resolution
//
// [Resolver.Place] looks the declared path up as given, then below each
// source root in order. Images are copied into the output directory under
// their base name. Diagram descriptions are rendered by a [Tool]:
//
//   - PlantUML (.plantuml, .puml, .wsd): a local plantuml.jar, a plantuml
//     executable or a PlantUML server, see [NewPlantUML]
//   - Graphviz (.dot, .gv): rendered in-process, see [GraphvizTool]
//
// A rendered diagram must appear as <base name>.<format> in the output
// directory. PlantUML names its output after "@startuml name" when a name is
// given; such a diagram fails with NOT_FOUND instead of producing a document
// with a broken image link.
//
// # Caching
//
// Rendered images are cached by tool, format and source content, so an
// unchanged diagram is rendered once. The cache never changes the result.
package diagram

import (
	"context"
	"path/filepath"
	"strings"
)

// DefaultFormat is the image format diagrams are rendered to.
const DefaultFormat = "png"

// Kind classifies a diagram file by extension.
type Kind int

const (
	KindImage Kind = iota
	KindPlantUML
	KindGraphviz
)

func (k Kind) String() string {
	switch k {
	case KindPlantUML:
		return "plantuml"
	case KindGraphviz:
		return "graphviz"
	}
	return "image"
}

var extKinds = map[string]Kind{
	".plantuml": KindPlantUML,
	".puml":     KindPlantUML,
	".wsd":      KindPlantUML,
	".dot":      KindGraphviz,
	".gv":       KindGraphviz,
}

// Classify returns the kind of the diagram at path.
func Classify(path string) Kind {
	return extKinds[strings.ToLower(filepath.Ext(path))]
}

// Tool renders diagram descriptions to images.
type Tool interface {
	// Name identifies the tool in logs and cache keys.
	Name() string

	// Render renders src to format inside outDir. A well-behaved tool
	// writes [ExpectedName](src, format, outDir).
	Render(ctx context.Context, src, format, outDir string) error
}

// ExpectedName returns the path a tool is expected to write for src.
func ExpectedName(src, format, outDir string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, stem+"."+format)
}
