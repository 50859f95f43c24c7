package project

import (
	"context"

	"github.com/matzehuels/reqdoc/pkg/convert"
)

// Default field names of declarative handlers.
const (
	DefaultFileField      = "file_path"
	DefaultCaptionField   = "caption"
	DefaultParagraphField = "description"
)

// Apply installs the project's handlers into d. Hooks are looked up in reg
// when a record needs them. A nil project leaves d unchanged.
func (f *File) Apply(d *convert.Dispatcher, reg *Registry) {
	if f == nil {
		return
	}
	if reg == nil {
		reg = NewRegistry()
	}

	o := convert.Overrides{Records: make(map[string]convert.Handler, len(f.Types))}
	for name, t := range f.Types {
		o.Records[name] = t.handler(name, reg)
	}
	if f.Section != nil {
		o.Section = reg.section(f.Section.Hook)
	}
	if f.Init != nil && f.Init.CloseTable {
		o.Init = func(_ context.Context, d *convert.Document, _ string) error {
			return d.CloseTable()
		}
	}
	d.SetOverrides(o)

	if f.Fallback == FallbackAttributes {
		d.SetFallback(convert.AttributesHandler(nil))
	} else {
		d.SetFallback(nil)
	}
}

func (t Type) handler(name string, reg *Registry) convert.Handler {
	switch t.Kind {
	case KindTable:
		cols := make([]convert.Column, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = convert.Column{
				Title:       c.Title,
				Field:       c.Field,
				Link:        c.Link,
				StripPrefix: c.StripPrefix,
				Colors:      c.Colors,
			}
		}
		return convert.TableHandler(cols...)
	case KindDiagram:
		return convert.DiagramHandler(or(t.File, DefaultFileField), or(t.Caption, DefaultCaptionField))
	case KindParagraph:
		return convert.ParagraphHandler(or(t.Field, DefaultParagraphField))
	case KindAttributes:
		return convert.AttributesHandler(t.Labels)
	case KindHook:
		return reg.record(t.Hook, name)
	}
	return convert.SkipHandler
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
