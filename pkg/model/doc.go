// Package model defines the read-only requirement tree that reqdoc converts.
//
// The tree is produced by an external requirements-language parser and
// consumed here as plain data: an ordered list of source files, each holding
// an ordered list of items. An item is either a [Section] (a heading with a
// nesting level) or a [Record] at a nesting level. File order and in-file
// order are reading order and must be preserved by every consumer.
//
// # Core Types
//
//   - [Tree], [File], [Item]: the ordered tree
//   - [Section]: heading node
//   - [Record]: typed entity with ordered [Field] values
//   - [Value]: tagged variant (null, scalar, array, reference)
//
// # Grouping
//
// Producers that emit a flat item stream can group it by file with
// [GroupByFile], which keeps files in order of first appearance:
//
//	files := model.GroupByFile(items)
//	tree := &model.Tree{Files: files}
package model
