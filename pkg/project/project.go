// Package project loads project override files.
//
// A project file adapts the conversion to one kind of requirements tree: it
// declares how each record type is rendered, replacing the built-in
// handlers. Project files are TOML:
//
//	fallback = "skip"              # or "attributes"
//
//	[init]
//	close_table = true             # close open tables when a file starts
//
//	[section]
//	hook = "numbered"              # Go section hook from the Registry
//
//	[types.SwReq]
//	kind = "table"
//	columns = [
//	  { title = "ID", field = "$name" },
//	  { title = "Description", field = "description" },
//	  { title = "Derived from", field = "derived_from", link = true, strip_prefix = "Reqs." },
//	]
//
//	[types.SwReqDiagram]
//	kind = "diagram"               # file = "file_path", caption = "caption"
//
//	[types.SwTestCaseResult]
//	kind = "table"
//	columns = [
//	  { title = "Result", field = "result", colors = { PASSED = "lightgreen", FAILED = "red" } },
//	]
//
//	[types.Note]
//	kind = "attributes"
//	labels = { description = "Text" }
//
// Kinds are table, diagram, paragraph, attributes, skip and hook. A hook
// kind names a Go handler registered with a [Registry]; a hook that is not
// registered fails with PROJECT_OVERRIDE when a record needs it.
//
// Without a project file, unknown record types get the attribute table
// fallback. With a project file the fallback defaults to skip: a project
// lists the types it documents.
package project

import (
	"fmt"
	"maps"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/reqdoc/pkg/errors"
)

// Handler kinds.
const (
	KindTable      = "table"
	KindDiagram    = "diagram"
	KindParagraph  = "paragraph"
	KindAttributes = "attributes"
	KindSkip       = "skip"
	KindHook       = "hook"
)

// Fallback values.
const (
	FallbackSkip       = "skip"
	FallbackAttributes = "attributes"
)

// File is a decoded project file.
type File struct {
	Fallback string          `toml:"fallback"`
	Init     *InitConfig     `toml:"init"`
	Section  *SectionConfig  `toml:"section"`
	Types    map[string]Type `toml:"types"`

	// Path is the file the project was loaded from.
	Path string `toml:"-"`
}

// InitConfig configures the per-file reset.
type InitConfig struct {
	CloseTable bool `toml:"close_table"`
}

// SectionConfig replaces section headings by a registered hook.
type SectionConfig struct {
	Hook string `toml:"hook"`
}

// Type declares the handler of one record type.
type Type struct {
	Kind string `toml:"kind"`

	// table
	Columns []Column `toml:"columns"`

	// diagram
	File    string `toml:"file"`
	Caption string `toml:"caption"`

	// paragraph
	Field string `toml:"field"`

	// attributes
	Labels map[string]string `toml:"labels"`

	// hook
	Hook string `toml:"hook"`
}

// Column declares one table column.
type Column struct {
	Title       string            `toml:"title"`
	Field       string            `toml:"field"`
	Link        bool              `toml:"link"`
	StripPrefix string            `toml:"strip_prefix"`
	Colors      map[string]string `toml:"colors"`
}

// Load reads and validates the project file at path.
func Load(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProjectOverride, err, "load project %s", path)
	}
	f.Path = path
	if err := checkUndecoded(md); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProjectOverride, err, "load project %s", path)
	}
	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProjectOverride, err, "load project %s", path)
	}
	return &f, nil
}

// Parse decodes and validates a project from TOML text.
func Parse(data string) (*File, error) {
	var f File
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProjectOverride, err, "parse project")
	}
	if err := checkUndecoded(md); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProjectOverride, err, "parse project")
	}
	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProjectOverride, err, "parse project")
	}
	return &f, nil
}

// checkUndecoded rejects unknown keys; a misspelt key would otherwise be
// ignored silently.
func checkUndecoded(md toml.MetaData) error {
	if keys := md.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("unknown key %q", keys[0].String())
	}
	return nil
}

// Validate checks kinds, type names, colors and hook names.
func (f *File) Validate() error {
	switch f.Fallback {
	case "", FallbackSkip, FallbackAttributes:
	default:
		return fmt.Errorf("fallback must be %q or %q, got %q", FallbackSkip, FallbackAttributes, f.Fallback)
	}
	if f.Section != nil && f.Section.Hook == "" {
		return fmt.Errorf("[section] needs a hook")
	}

	for _, name := range f.TypeNames() {
		t := f.Types[name]
		if err := errors.ValidateTypeName(name); err != nil {
			return err
		}
		if err := t.validate(); err != nil {
			return fmt.Errorf("types.%s: %w", name, err)
		}
	}
	return nil
}

func (t Type) validate() error {
	switch t.Kind {
	case KindTable:
		if len(t.Columns) == 0 {
			return fmt.Errorf("table needs at least one column")
		}
		for i, c := range t.Columns {
			if c.Title == "" || c.Field == "" {
				return fmt.Errorf("column %d needs a title and a field", i+1)
			}
			for _, color := range c.Colors {
				if err := errors.ValidateColor(color); err != nil {
					return err
				}
			}
		}
	case KindHook:
		if t.Hook == "" {
			return fmt.Errorf("hook kind needs a hook name")
		}
	case KindDiagram, KindParagraph, KindAttributes, KindSkip:
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", t.Kind)
	}
	return nil
}

// TypeNames returns the declared type names, sorted.
func (f *File) TypeNames() []string {
	return slices.Sorted(maps.Keys(f.Types))
}
