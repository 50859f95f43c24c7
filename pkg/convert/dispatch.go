package convert

import (
	"context"

	"github.com/matzehuels/reqdoc/pkg/model"
)

// Handler converts one record. Handlers write through the Document so the
// table and blank line invariants hold.
type Handler func(ctx context.Context, d *Document, rec *model.Record, level int) error

// SectionHandler replaces the default section heading.
type SectionHandler func(ctx context.Context, d *Document, name string, level int) error

// InitHandler runs after a source file has been entered.
type InitHandler func(ctx context.Context, d *Document, file string) error

// Overrides holds project-supplied handlers. Nil slots are absent.
type Overrides struct {
	Init    InitHandler
	Section SectionHandler
	Records map[string]Handler
}

// Source reports which precedence level served a record type.
type Source int

const (
	SourceNone Source = iota
	SourceOverride
	SourceBuiltin
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceBuiltin:
		return "builtin"
	case SourceFallback:
		return "fallback"
	}
	return "none"
}

// Dispatcher maps record type names to handlers.
//
// Lookup precedence: project override, built-in handler, fallback. A type
// without any handler is skipped.
type Dispatcher struct {
	builtins  map[string]Handler
	fallback  Handler
	overrides Overrides
}

// NewDispatcher returns an empty dispatcher: every record is skipped until
// handlers are registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{builtins: make(map[string]Handler)}
}

// DefaultDispatcher returns a dispatcher with the built-in handlers and the
// attribute table fallback.
func DefaultDispatcher() *Dispatcher {
	d := NewDispatcher()
	RegisterBuiltins(d)
	d.SetFallback(AttributesHandler(nil))
	return d
}

// RegisterBuiltins registers the built-in handlers:
//
//	Requirement  table "ID | Description" from $name and description
//	Info         paragraph from description
//	Diagram      diagram from file_path with caption
func RegisterBuiltins(d *Dispatcher) {
	d.Register("Requirement", TableHandler(
		Column{Title: "ID", Field: "$name"},
		Column{Title: "Description", Field: "description"},
	))
	d.Register("Info", ParagraphHandler("description"))
	d.Register("Diagram", DiagramHandler("file_path", "caption"))
}

// Register sets the built-in handler for a type name.
func (d *Dispatcher) Register(typeName string, h Handler) {
	d.builtins[typeName] = h
}

// SetFallback sets the handler for types without a specific handler. Nil
// removes the fallback.
func (d *Dispatcher) SetFallback(h Handler) {
	d.fallback = h
}

// SetOverrides installs project overrides.
func (d *Dispatcher) SetOverrides(o Overrides) {
	d.overrides = o
}

// Overrides returns the installed project overrides.
func (d *Dispatcher) Overrides() Overrides {
	return d.overrides
}

// Lookup returns the handler for a type name and the level that served it.
// The handler is nil with SourceNone when the record is to be skipped.
func (d *Dispatcher) Lookup(typeName string) (Handler, Source) {
	if h, ok := d.overrides.Records[typeName]; ok && h != nil {
		return h, SourceOverride
	}
	if h, ok := d.builtins[typeName]; ok && h != nil {
		return h, SourceBuiltin
	}
	if d.fallback != nil {
		return d.fallback, SourceFallback
	}
	return nil, SourceNone
}
