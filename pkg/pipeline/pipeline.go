// Package pipeline provides the conversion pipeline of reqdoc.
//
// The pipeline loads a requirement tree, applies an optional project file
// and feeds the tree to a converter for one output format. The CLI, the
// watch loop and tests share it, so that every entry point applies the same
// defaults and validation.
//
// # Stages
//
//  1. Load: read the tree file and the project file
//  2. Build: create the format renderer, the diagram resolver and the
//     record dispatcher
//  3. Convert: drive the tree through the converter
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    TreePath: "build/tree.yaml",
//	    Format:   pipeline.FormatMarkdown,
//	    OutDir:   "docs",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Outputs)
package pipeline

import (
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reqdoc/pkg/convert"
	"github.com/matzehuels/reqdoc/pkg/diagram"
	"github.com/matzehuels/reqdoc/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Watch Mode
// =============================================================================

const (
	// DefaultOutDir is the output directory.
	DefaultOutDir = "."

	// DefaultName is the single-document output name, without extension.
	DefaultName = convert.DefaultOutputName

	// DefaultTopLevel is the synthetic top heading in single-document mode.
	DefaultTopLevel = convert.DefaultTopLevel

	// DefaultEmpty replaces null and empty values.
	DefaultEmpty = convert.DefaultPlaceholder

	// DefaultDiagramFormat is the image format of rendered diagrams.
	DefaultDiagramFormat = diagram.DefaultFormat
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatRST      = "rst"
	FormatDOCX     = "docx"
	FormatDump     = "dump"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatMarkdown: true,
	FormatRST:      true,
	FormatDOCX:     true,
	FormatDump:     true,
}

// ValidDiagramFormats is the set of supported diagram image formats.
var ValidDiagramFormats = map[string]bool{
	"png":  true,
	"svg":  true,
	"jpg":  true,
	"jpeg": true,
}

// rasterFormats can be embedded in DOCX documents.
var rasterFormats = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration of a conversion run.
type Options struct {
	// Input
	TreePath string   `json:"tree" mapstructure:"tree"`
	Exclude  []string `json:"exclude,omitempty" mapstructure:"exclude"`
	Project  string   `json:"project,omitempty" mapstructure:"project"`

	// Output
	Format         string `json:"format" mapstructure:"format"`
	OutDir         string `json:"out,omitempty" mapstructure:"out"`
	SingleDocument bool   `json:"single_document,omitempty" mapstructure:"single_document"`
	Name           string `json:"name,omitempty" mapstructure:"name"`
	TopLevel       string `json:"top_level,omitempty" mapstructure:"top_level"`
	Empty          string `json:"empty,omitempty" mapstructure:"empty"`

	// Diagrams
	Sources       []string `json:"source,omitempty" mapstructure:"source"`
	PlantUML      string   `json:"plantuml,omitempty" mapstructure:"plantuml"`
	DiagramFormat string   `json:"diagram_format,omitempty" mapstructure:"diagram_format"`
	NoCache       bool     `json:"no_cache,omitempty" mapstructure:"no_cache"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" mapstructure:"-"`
	// Stdout receives the dump output.
	Stdout io.Writer `json:"-" mapstructure:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outcome of a conversion run.
type Result struct {
	// Format is the output format.
	Format string

	// Outputs lists the written documents in order.
	Outputs []string

	// Stats contains counts and timings.
	Stats Stats
}

// Stats contains conversion statistics.
type Stats struct {
	Files    int
	Excluded int
	Sections int
	Records  int
	Skipped  int
	Diagrams int

	LoadTime    time.Duration
	ConvertTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that an output format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: markdown, rst, docx, dump)", format)
	}
	return nil
}

// ValidateDiagramFormat checks that a diagram format can be used with an
// output format. DOCX documents embed raster images only.
func ValidateDiagramFormat(format, output string) error {
	if !ValidDiagramFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid diagram format: %q (must be one of: png, svg, jpg)", format)
	}
	if output == FormatDOCX && !rasterFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"diagram format %q cannot be embedded in docx (use png or jpg)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if strings.TrimSpace(o.TreePath) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "tree file is required")
	}
	if err := errors.ValidatePath(o.TreePath); err != nil {
		return err
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}

	if o.OutDir == "" {
		o.OutDir = DefaultOutDir
	}
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.TopLevel == "" {
		o.TopLevel = DefaultTopLevel
	}
	if o.Empty == "" {
		o.Empty = DefaultEmpty
	}
	if o.DiagramFormat == "" {
		o.DiagramFormat = DefaultDiagramFormat
	}
	o.DiagramFormat = strings.ToLower(o.DiagramFormat)

	if err := errors.ValidateOutputName(o.Name); err != nil {
		return err
	}
	if err := ValidateDiagramFormat(o.DiagramFormat, o.Format); err != nil {
		return err
	}
	for _, p := range slices.Concat(o.Sources, o.Exclude) {
		if err := errors.ValidatePath(p); err != nil {
			return err
		}
	}
	// A setting with a scheme names a PlantUML server, anything else a jar.
	if strings.Contains(o.PlantUML, "://") {
		if err := errors.ValidateURL(o.PlantUML); err != nil {
			return err
		}
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	o.validated = true
	return nil
}

// Mode returns the document mode selected by the options.
func (o *Options) Mode() convert.Mode {
	if o.SingleDocument {
		return convert.SingleDocument
	}
	return convert.MultiDocument
}

// IsDump reports whether the run prints the dump instead of writing
// documents.
func (o *Options) IsDump() bool {
	return o.Format == FormatDump
}

// WatchPaths returns the files whose change should trigger a new run.
func (o *Options) WatchPaths() []string {
	paths := []string{o.TreePath}
	if o.Project != "" {
		paths = append(paths, o.Project)
	}
	return paths
}
