package pipeline

import (
	"github.com/matzehuels/reqdoc/pkg/cache"
	"github.com/matzehuels/reqdoc/pkg/convert"
	"github.com/matzehuels/reqdoc/pkg/diagram"
	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/httputil"
	"github.com/matzehuels/reqdoc/pkg/project"
	"github.com/matzehuels/reqdoc/pkg/render"
	"github.com/matzehuels/reqdoc/pkg/render/docx"
	"github.com/matzehuels/reqdoc/pkg/render/markdown"
	"github.com/matzehuels/reqdoc/pkg/render/rst"
)

// NewRenderer returns the document renderer for an output format. Documents
// are created with open; nil creates files on disk.
func NewRenderer(format string, open render.Opener) (convert.Renderer, error) {
	switch format {
	case FormatMarkdown:
		return markdown.New(open), nil
	case FormatRST:
		return rst.New(open), nil
	case FormatDOCX:
		return docx.New(open), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "format %q has no document renderer", format)
}

// NewResolver returns the diagram resolver for opts. c may be nil.
func NewResolver(opts Options, c cache.Cache, client *httputil.Client) *diagram.Resolver {
	if opts.NoCache {
		c = nil
	}
	return &diagram.Resolver{
		Roots:    sourceRoots(opts),
		OutDir:   opts.OutDir,
		Format:   opts.DiagramFormat,
		PlantUML: diagram.NewPlantUML(opts.PlantUML, client),
		Graphviz: diagram.GraphvizTool{},
		Cache:    c,
		Logger:   opts.Logger,
	}
}

// NewDocument wires a renderer, a resolver and the dispatcher of proj into a
// converter for opts.
func NewDocument(opts Options, r convert.Renderer, placer convert.Placer, proj *project.File, reg *project.Registry) *convert.Document {
	d := convert.DefaultDispatcher()
	proj.Apply(d, reg)

	return convert.NewDocument(r, convert.Config{
		Mode:        opts.Mode(),
		OutDir:      opts.OutDir,
		OutputName:  opts.Name,
		TopLevel:    opts.TopLevel,
		Placeholder: opts.Empty,
		Placer:      placer,
		Dispatcher:  d,
		Logger:      opts.Logger,
	})
}
