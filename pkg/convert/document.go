package convert

import (
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/model"
	"github.com/matzehuels/reqdoc/pkg/observability"
)

// Mode selects how input files map to output documents.
type Mode int

const (
	// MultiDocument writes one output document per input file.
	MultiDocument Mode = iota
	// SingleDocument writes every input file into one output document.
	SingleDocument
)

// Default settings.
const (
	DefaultOutputName  = "output"
	DefaultTopLevel    = "Specification"
	DefaultPlaceholder = "N/A"
)

// Config configures a Document.
type Config struct {
	Mode   Mode
	OutDir string

	// OutputName is the single-document file name. The renderer extension
	// is appended when the name has none.
	OutputName string

	// TopLevel is the synthetic top heading in single-document mode.
	TopLevel string

	// Placeholder replaces null and empty values.
	Placeholder string

	// Placer resolves diagrams. Diagram records fail without one.
	Placer Placer

	// Dispatcher routes records. Nil uses DefaultDispatcher.
	Dispatcher *Dispatcher

	Logger *log.Logger
}

type phase int

const (
	phaseNotStarted phase = iota
	phaseReady
	phaseOpen
	phaseClosed
)

// Counters reports what a Document wrote.
type Counters struct {
	Sections int
	Records  int
	Skipped  int
	Diagrams int
	Outputs  []string
}

// Document is the converter state machine. It owns the heading base level,
// the open-table state and the blank line placement of the output document
// it is writing, and routes records through its Dispatcher.
//
// A Document is used for one conversion run and is not safe for concurrent
// use.
type Document struct {
	r        Renderer
	cfg      Config
	dispatch *Dispatcher
	logger   *log.Logger

	phase     phase
	sinkOpen  bool
	baseLevel int

	tableOpen        bool
	tableTitles      []string
	emptyLinePending bool

	file    string // current source file
	docName string // base name of the current output document

	counters Counters
}

// NewDocument returns a Document writing through r.
func NewDocument(r Renderer, cfg Config) *Document {
	if cfg.OutputName == "" {
		cfg.OutputName = DefaultOutputName
	}
	if filepath.Ext(cfg.OutputName) == "" {
		cfg.OutputName += r.Ext()
	}
	if cfg.TopLevel == "" {
		cfg.TopLevel = DefaultTopLevel
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholder
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = DefaultDispatcher()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Document{
		r:         r,
		cfg:       cfg,
		dispatch:  cfg.Dispatcher,
		logger:    logger,
		baseLevel: 1,
	}
}

// Counters returns what has been written so far.
func (d *Document) Counters() Counters {
	c := d.counters
	c.Outputs = append([]string(nil), d.counters.Outputs...)
	return c
}

// =============================================================================
// Lifecycle
// =============================================================================

// Begin starts the run. In single-document mode it opens the output and
// writes the top heading.
func (d *Document) Begin(ctx context.Context) error {
	if d.phase != phaseNotStarted {
		return errors.New(errors.ErrCodeInvalidState, "begin called twice")
	}
	d.phase = phaseReady
	if d.cfg.Mode != SingleDocument {
		return nil
	}
	if err := d.open(d.cfg.OutputName); err != nil {
		return err
	}
	if err := d.heading(d.cfg.TopLevel, 1); err != nil {
		return err
	}
	d.baseLevel = 2
	return nil
}

// EnterFile starts a source file. In multi-document mode it opens the
// file's output document.
func (d *Document) EnterFile(ctx context.Context, file string) error {
	switch {
	case d.phase == phaseNotStarted:
		return errors.New(errors.ErrCodeInvalidState, "enter %s before begin", file)
	case d.phase == phaseClosed:
		return errors.New(errors.ErrCodeInvalidState, "enter %s after finish", file)
	case d.cfg.Mode == MultiDocument && d.sinkOpen:
		return errors.New(errors.ErrCodeInvalidState, "enter %s while %s is open", file, d.docName)
	}

	d.file = file
	if d.cfg.Mode == MultiDocument {
		if err := d.open(d.docFor(file)); err != nil {
			return err
		}
	}

	if init := d.dispatch.overrides.Init; init != nil {
		return init(ctx, d, file)
	}
	return nil
}

// VisitSection writes a section heading, or hands the section to the
// project section hook.
func (d *Document) VisitSection(ctx context.Context, s model.Section) error {
	d.counters.Sections++
	if hook := d.dispatch.overrides.Section; hook != nil {
		return hook(ctx, d, s.Name, s.Level)
	}
	return d.Heading(s.Name, s.Level)
}

// VisitRecord dispatches a record to its handler. Records without a handler
// are skipped.
func (d *Document) VisitRecord(ctx context.Context, rec *model.Record, level int) error {
	h, src := d.dispatch.Lookup(rec.Type)
	observability.Convert().OnRecordDispatched(ctx, rec.Type, src.String())
	if h == nil {
		d.counters.Skipped++
		d.logger.Debug("no handler, skipping", "record", rec.Name, "type", rec.Type)
		return nil
	}
	d.counters.Records++
	if err := h(ctx, d, rec, level); err != nil {
		return errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err,
			"%s: record %s (%s)", rec.Location, rec.Name, rec.Type)
	}
	return nil
}

// LeaveFile ends a source file. Any open table is closed; in
// multi-document mode the file's output document is closed too.
func (d *Document) LeaveFile(ctx context.Context, file string) error {
	if err := d.closeTable(); err != nil {
		return err
	}
	if d.cfg.Mode == MultiDocument {
		return d.closeSink()
	}
	return nil
}

// Finish ends the run and closes the single-document output.
func (d *Document) Finish(ctx context.Context) error {
	if d.phase == phaseNotStarted {
		return errors.New(errors.ErrCodeInvalidState, "finish before begin")
	}
	if err := d.closeTable(); err != nil {
		return err
	}
	if err := d.closeSink(); err != nil {
		return err
	}
	d.phase = phaseClosed
	return nil
}

// Close releases the open output document, if any. It does not close
// tables and may be called any number of times.
func (d *Document) Close() error {
	d.phase = phaseClosed
	d.tableOpen = false
	return d.closeSink()
}

func (d *Document) open(name string) error {
	path := filepath.Join(d.cfg.OutDir, name)
	if err := d.r.Open(path); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "open %s", path)
	}
	d.sinkOpen = true
	d.phase = phaseOpen
	d.docName = name
	d.tableOpen = false
	d.tableTitles = nil
	d.emptyLinePending = false
	d.counters.Outputs = append(d.counters.Outputs, path)
	return nil
}

func (d *Document) closeSink() error {
	if !d.sinkOpen {
		return nil
	}
	d.sinkOpen = false
	if d.phase == phaseOpen {
		d.phase = phaseReady
	}
	if err := d.r.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "close %s", d.docName)
	}
	return nil
}

// docFor returns the output document name for a source file.
func (d *Document) docFor(file string) string {
	if d.cfg.Mode == SingleDocument {
		return d.cfg.OutputName
	}
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base)) + d.r.Ext()
}

// =============================================================================
// Blocks
// =============================================================================

// beginBlock prepares the sink for a non-row block: an open table is closed
// (which writes the blank line after it), otherwise a blank line is written
// unless this is the first block of the document.
func (d *Document) beginBlock() error {
	if !d.sinkOpen {
		return errors.New(errors.ErrCodeInvalidState, "no output document is open")
	}
	if err := d.closeTable(); err != nil {
		return err
	}
	if d.emptyLinePending {
		if err := d.r.Separator(); err != nil {
			return d.sinkErr(err)
		}
	}
	d.emptyLinePending = true
	return nil
}

func (d *Document) closeTable() error {
	if !d.tableOpen {
		return nil
	}
	d.tableOpen = false
	d.tableTitles = nil
	d.emptyLinePending = false
	if err := d.r.TableEnd(); err != nil {
		return d.sinkErr(err)
	}
	return nil
}

func (d *Document) sinkErr(err error) error {
	return errors.Wrap(errors.ErrCodeSink, err, "write %s", d.docName)
}

func (d *Document) heading(text string, level int) error {
	if err := d.beginBlock(); err != nil {
		return err
	}
	if err := d.r.Heading(text, level); err != nil {
		return d.sinkErr(err)
	}
	return nil
}

// Heading writes a heading at the given local level.
func (d *Document) Heading(text string, level int) error {
	return d.heading(text, d.HeadingLevel(level))
}

// ObjectHeading writes a record heading at the given local level.
func (d *Document) ObjectHeading(name, typeName string, level int) error {
	if err := d.beginBlock(); err != nil {
		return err
	}
	if err := d.r.ObjectHeading(name, typeName, d.HeadingLevel(level)); err != nil {
		return d.sinkErr(err)
	}
	return nil
}

// OpenTable starts a table with the given column titles. If a table with
// the same titles is already open, rows continue that table; a table with
// different titles is closed first.
func (d *Document) OpenTable(titles ...string) error {
	if d.tableOpen && slices.Equal(d.tableTitles, titles) {
		return nil
	}
	if err := d.beginBlock(); err != nil {
		return err
	}
	if err := d.r.TableHead(titles); err != nil {
		return d.sinkErr(err)
	}
	d.tableOpen = true
	d.tableTitles = append([]string(nil), titles...)
	return nil
}

// Row appends a row of plain values, escaping each once.
func (d *Document) Row(values ...string) error {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = d.r.Escape(v)
	}
	return d.RawRow(cells...)
}

// RawRow appends a row of cells that are already in target markup.
func (d *Document) RawRow(cells ...string) error {
	if !d.tableOpen {
		return errors.New(errors.ErrCodeInvalidState, "table row without an open table")
	}
	if len(cells) != len(d.tableTitles) {
		return errors.New(errors.ErrCodeInvalidInput, "table row has %d cells, table has %d columns",
			len(cells), len(d.tableTitles))
	}
	if err := d.r.TableRow(cells); err != nil {
		return d.sinkErr(err)
	}
	return nil
}

// CloseTable closes the open table. Closing without an open table does
// nothing.
func (d *Document) CloseTable() error {
	return d.closeTable()
}

// TableOpen reports whether a table is open.
func (d *Document) TableOpen() bool { return d.tableOpen }

// Paragraph writes plain text as a paragraph.
func (d *Document) Paragraph(text string) error {
	if err := d.beginBlock(); err != nil {
		return err
	}
	if err := d.r.Paragraph(text); err != nil {
		return d.sinkErr(err)
	}
	return nil
}

// Diagram places the declared diagram or image in the output directory and
// references it with the given caption.
func (d *Document) Diagram(ctx context.Context, declared, caption string) error {
	if d.cfg.Placer == nil {
		return errors.New(errors.ErrCodeInvalidState, "no diagram resolver configured for %s", declared)
	}
	placed, err := d.cfg.Placer.Place(ctx, declared)
	if err != nil {
		return err
	}
	if err := d.beginBlock(); err != nil {
		return err
	}
	if err := d.r.Diagram(placed, caption); err != nil {
		return d.sinkErr(err)
	}
	d.counters.Diagrams++
	return nil
}

// =============================================================================
// Inline values
// =============================================================================

// HeadingLevel returns the absolute heading level for a local level.
func (d *Document) HeadingLevel(level int) int { return d.baseLevel + level }

// File returns the source file being converted.
func (d *Document) File() string { return d.file }

// Placeholder returns the text used for null and empty values.
func (d *Document) Placeholder() string { return d.cfg.Placeholder }

// Escape escapes plain text for the output format.
func (d *Document) Escape(text string) string { return d.r.Escape(text) }

// Link returns a link cell. The text is escaped, the target is not.
func (d *Document) Link(text, target string) string { return d.r.Link(text, target) }

// LocalLink returns a link to the record named text in the current
// output document.
func (d *Document) LocalLink(text string) string {
	return d.r.Link(text, d.r.RefTarget(d.docName, text))
}

// RefLink returns a link to the referenced record in the output document
// generated from the record's source file.
func (d *Document) RefLink(ref *model.Reference) string {
	doc := d.docFor(ref.Location.File)
	return d.r.Link(ref.QualifiedName(), d.r.RefTarget(doc, ref.Name))
}

// Colored returns colored text. The text is escaped.
func (d *Document) Colored(text, color string) string { return d.r.ColoredText(text, color) }

// Text returns the plain text of v, or the placeholder for null and empty
// values.
func (d *Document) Text(v model.Value) string {
	if isEmpty(v) {
		return d.cfg.Placeholder
	}
	return v.String()
}

// Cell returns v as a table cell in target markup: null and empty values
// become the escaped placeholder, references become links, arrays are
// joined with ", ".
func (d *Document) Cell(v model.Value) string {
	if isEmpty(v) {
		return d.r.Escape(d.cfg.Placeholder)
	}
	switch v.Kind {
	case model.KindReference:
		return d.RefLink(v.Ref)
	case model.KindArray:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = d.Cell(item)
		}
		return strings.Join(parts, ", ")
	}
	return d.r.Escape(v.Text)
}

// FieldValue returns the named field of rec. The names $name, $type and
// $location select the record's name, type and source location. Missing
// fields are null.
func FieldValue(rec *model.Record, name string) model.Value {
	switch name {
	case "$name":
		return model.Scalar(rec.Name)
	case "$type":
		return model.Scalar(rec.Type)
	case "$location":
		return model.Scalar(rec.Location.String())
	}
	v, _ := rec.Get(name)
	return v
}

func isEmpty(v model.Value) bool {
	return v.IsNull() || (v.Kind == model.KindArray && len(v.Items) == 0)
}

