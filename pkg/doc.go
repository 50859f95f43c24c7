// Package pkg provides the core libraries of reqdoc, which turns requirement
// trees into Markdown, reStructuredText and DOCX documents.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [model] and [io] - the requirement tree and its YAML/JSON interchange
//  2. [convert] - the conversion state machine, dispatcher and driver
//  3. [render] - output back-ends for Markdown, reStructuredText and DOCX
//  4. [diagram] - PlantUML and Graphviz rendering of referenced diagrams
//  5. [project] - per-project record types loaded from TOML
//  6. [pipeline] - orchestration (load → build → convert)
//  7. [cache], [httputil], [errors], [observability] - infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Tree file (YAML/JSON)
//	         ↓
//	    [io] package (import the tree)
//	         ↓
//	    [convert] package (driver → document → dispatcher → handlers)
//	         ↓
//	    [render] back-end + [diagram] resolver
//	         ↓
//	    .md / .rst / .docx documents and images
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil)
//	defer runner.Close()
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    TreePath: "reqs.yaml",
//	    Format:   pipeline.FormatMarkdown,
//	    OutDir:   "docs",
//	})
//
// [model]: github.com/matzehuels/reqdoc/pkg/model
// [io]: github.com/matzehuels/reqdoc/pkg/io
// [convert]: github.com/matzehuels/reqdoc/pkg/convert
// [render]: github.com/matzehuels/reqdoc/pkg/render
// [diagram]: github.com/matzehuels/reqdoc/pkg/diagram
// [project]: github.com/matzehuels/reqdoc/pkg/project
// [pipeline]: github.com/matzehuels/reqdoc/pkg/pipeline
// [cache]: github.com/matzehuels/reqdoc/pkg/cache
// [httputil]: github.com/matzehuels/reqdoc/pkg/httputil
// [errors]: github.com/matzehuels/reqdoc/pkg/errors
// [observability]: github.com/matzehuels/reqdoc/pkg/observability
package pkg
