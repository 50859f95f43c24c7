// Package convert implements the format-independent conversion core.
//
// # Overview
//
// A conversion walks a [model.Tree] file by file and item by item. The
// [Driver] groups and filters files and feeds every item into a [Converter].
// The main converter is [Document]: a per-run state machine that owns the
// heading-level offset, the open-table flag and the blank-line placement, and
// writes through a format [Renderer] (Markdown, reStructuredText, DOCX).
// Records are routed by type name through a [Dispatcher] to a [Handler].
//
// # Lifecycle
//
//	Begin → (EnterFile → VisitSection/VisitRecord... → LeaveFile)... → Finish
//
// In single-document mode Begin opens the only output and writes a synthetic
// top heading, which moves every other heading one level down. In
// multi-document mode every EnterFile opens one output and LeaveFile closes
// it. Close releases whatever is still open and is safe to call on every exit
// path; the driver always calls it.
//
// # Dispatch precedence
//
//  1. project override for the exact type name ([Overrides.Records])
//  2. built-in handler for the type name ([Dispatcher.Register])
//  3. generic fallback ([Dispatcher.SetFallback])
//  4. skip, successfully and without output
//
// # Tables
//
// Handlers open tables with [Document.OpenTable] and append rows with
// [Document.Row] (values escaped once) or [Document.RawRow] (cells already in
// target markup, see [Document.Cell], [Document.Link], [Document.Colored]).
// Any other block closes an open table first; closing writes the separating
// blank line exactly once and is idempotent.
//
// # Escaping
//
// Every text that reaches a Document method as plain text is escaped exactly
// once by the renderer. Cells produced by [Document.Cell] and friends are
// already escaped and must go through RawRow; passing them to Row escapes
// them a second time.
package convert
