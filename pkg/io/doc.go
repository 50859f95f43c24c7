// Package io provides YAML and JSON import and export for requirement trees.
//
// # Overview
//
// The requirements-language parser is an external collaborator. Its product,
// an ordered tree of files, sections and records, reaches reqdoc as a YAML
// (or JSON) document. This package decodes that document into a
// [model.Tree] and writes trees back out for round trips and debugging.
//
// # Format
//
// The grouped form lists files in reading order:
//
//	files:
//	  - path: reqs/spec.trlc
//	    items:
//	      - section: Overview
//	        level: 0
//	      - level: 0
//	        record:
//	          name: REQ-1
//	          type: Requirement
//	          package: Reqs
//	          location: {file: reqs/spec.trlc, line: 12}
//	          fields:
//	            description: The system shall boot.
//	            derived: [REQ-0]
//	            info: null
//	            parent: {ref: Reqs.SYS-1, file: sys/sys.trlc, line: 3}
//
// The flat form is a single "items" list where each item names its "file";
// it is grouped with [model.GroupByFile].
//
// # Field Values
//
//   - null (or ~): null scalar
//   - any other scalar: scalar text, exactly as written
//   - sequence: array (items decoded recursively)
//   - mapping with "ref": reference; "ref" is the qualified name
//     ("Package.Name"), "file" and "line" locate the target
//
// Field order is significant (it is the order of attribute tables) and is
// preserved by decoding through [yaml.Node] instead of Go maps.
//
// # Import
//
// Use [ImportTree] to read a file, or [ReadTree] to read from any io.Reader:
//
//	tree, err := io.ImportTree("reqs.yaml")
//
// JSON input needs no separate entry point: JSON documents are valid YAML
// and decode through the same path.
//
// # Export
//
// Use [ExportYAML] or [WriteYAML]. The grouped form is always written.
package io
