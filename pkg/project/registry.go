package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/reqdoc/pkg/convert"
	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/model"
)

// Registry holds Go handlers that project files refer to by name.
type Registry struct {
	records  map[string]convert.Handler
	sections map[string]func() convert.SectionHandler
}

// NewRegistry returns a registry with the stock hooks:
//
//	numbered   section hook writing "<n>. <name>" with n counting sections
//	           per heading level
func NewRegistry() *Registry {
	r := &Registry{
		records:  make(map[string]convert.Handler),
		sections: make(map[string]func() convert.SectionHandler),
	}
	r.HandleSectionFunc("numbered", NumberedSections)
	return r
}

// Handle registers a record hook.
func (r *Registry) Handle(name string, h convert.Handler) {
	r.records[name] = h
}

// HandleSection registers a section hook.
func (r *Registry) HandleSection(name string, h convert.SectionHandler) {
	r.sections[name] = func() convert.SectionHandler { return h }
}

// HandleSectionFunc registers a section hook with per-run state: newHook is
// called once for every conversion the project is applied to.
func (r *Registry) HandleSectionFunc(name string, newHook func() convert.SectionHandler) {
	r.sections[name] = newHook
}

// record returns a handler resolving hook name when a record needs it.
func (r *Registry) record(name, typeName string) convert.Handler {
	return func(ctx context.Context, d *convert.Document, rec *model.Record, level int) error {
		h, ok := r.records[name]
		if !ok {
			return errors.New(errors.ErrCodeProjectOverride, "hook %q for type %s is not registered", name, typeName)
		}
		return h(ctx, d, rec, level)
	}
}

// section builds the section hook for one conversion. A missing hook fails
// when the first section needs it.
func (r *Registry) section(name string) convert.SectionHandler {
	if newHook, ok := r.sections[name]; ok {
		return newHook()
	}
	return func(context.Context, *convert.Document, string, int) error {
		return errors.New(errors.ErrCodeProjectOverride, "section hook %q is not registered", name)
	}
}

// NumberedSections returns a section hook that prefixes headings with
// their number, such as "2.1. Boot". Numbers restart in every source file.
func NumberedSections() convert.SectionHandler {
	var counts []int
	var file string
	return func(ctx context.Context, d *convert.Document, name string, level int) error {
		if d.File() != file {
			file, counts = d.File(), nil
		}
		level = max(level, 0)
		for len(counts) <= level {
			counts = append(counts, 0)
		}
		counts = counts[:level+1]
		counts[level]++

		parts := make([]string, len(counts))
		for i, n := range counts {
			parts[i] = fmt.Sprint(n)
		}
		return d.Heading(strings.Join(parts, ".")+". "+name, level)
	}
}
