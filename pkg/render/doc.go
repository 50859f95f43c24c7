// Package render provides the output back-ends for requirement documents.
//
// # Overview
//
// Every back-end implements [convert.Renderer]: block operations (headings,
// tables, paragraphs, diagrams) and inline operations (escaping, links,
// colored text) for one output format. The conversion state machine in
// [convert] decides when blocks start and end; back-ends only format.
//
//   - [markdown]: Markdown with pipe tables
//   - [rst]: reStructuredText with grid tables and labels
//   - [docx]: Word documents built with go-docx
//   - [dump]: a [convert.Converter] printing the lifecycle events
//
// # Shared helpers
//
// [EscapeReserved] escapes the reserved character set shared by Markdown and
// reStructuredText. [Writer] is a buffered output document with a sticky
// error, opened through an [Opener] so tests can capture output in memory:
//
//	w, err := render.OpenWriter(render.CreateFile, "out/spec.md")
//	w.WriteString("# Overview\n")
//	err = w.Close()
//
// [convert.Renderer]: github.com/matzehuels/reqdoc/pkg/convert.Renderer
// [convert.Converter]: github.com/matzehuels/reqdoc/pkg/convert.Converter
// [convert]: github.com/matzehuels/reqdoc/pkg/convert
// [markdown]: github.com/matzehuels/reqdoc/pkg/render/markdown
// [rst]: github.com/matzehuels/reqdoc/pkg/render/rst
// [docx]: github.com/matzehuels/reqdoc/pkg/render/docx
// [dump]: github.com/matzehuels/reqdoc/pkg/render/dump
package render
