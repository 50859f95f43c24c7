package convert

import "context"

// Renderer writes one output format. A Renderer holds at most one open
// output document at a time.
//
// Block methods take plain text and escape it themselves. TableRow takes
// cells that are already in target markup. Inline methods return markup for
// use in cells.
type Renderer interface {
	// Ext returns the output file extension including the dot, e.g. ".md".
	Ext() string

	// Open starts a new output document at path. Opening while a document
	// is open is an error.
	Open(path string) error

	// Close flushes and releases the open document. Close without an open
	// document does nothing.
	Close() error

	Heading(text string, level int) error
	ObjectHeading(name, typeName string, level int) error
	TableHead(titles []string) error
	TableRow(cells []string) error
	// TableEnd finishes the table and writes the blank line after it.
	TableEnd() error
	Paragraph(text string) error
	// Diagram references a placed image; path is inside the output directory.
	Diagram(path, caption string) error
	// Separator writes the blank line between two blocks.
	Separator() error

	Escape(text string) string
	Link(text, target string) string
	ColoredText(text, color string) string
	// RefTarget returns the link target for the record name in the output
	// document doc (a base file name such as "spec.md").
	RefTarget(doc, name string) string
}

// Placer locates a declared diagram or image and places it in the output
// directory, returning the placed path.
type Placer interface {
	Place(ctx context.Context, declared string) (string, error)
}
