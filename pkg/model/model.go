package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// Values
// =============================================================================

// ValueKind discriminates the variants of a field value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindScalar
	KindArray
	KindReference
)

// String returns the lower-case kind name.
func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindReference:
		return "reference"
	}
	return "null"
}

// Value is a record field value. Exactly one of Text, Items or Ref is
// meaningful, selected by Kind. The zero Value is null.
type Value struct {
	Kind  ValueKind
	Text  string
	Items []Value
	Ref   *Reference
}

// Null returns a null value.
func Null() Value { return Value{} }

// Scalar returns a scalar value.
func Scalar(s string) Value { return Value{Kind: KindScalar, Text: s} }

// Array returns an array value holding items in order.
func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }

// Ref returns a reference value.
func Ref(r Reference) Value { return Value{Kind: KindReference, Ref: &r} }

// IsNull reports whether v is a null scalar.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String returns the plain text of v: scalars as-is, references by
// qualified name, arrays joined with ", ". Null renders as "".
func (v Value) String() string {
	switch v.Kind {
	case KindScalar:
		return v.Text
	case KindReference:
		return v.Ref.QualifiedName()
	case KindArray:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// Reference points at another record.
type Reference struct {
	Package  string
	Name     string
	Location Location
}

// QualifiedName returns "Package.Name", or Name when no package is set.
func (r *Reference) QualifiedName() string {
	if r == nil {
		return ""
	}
	if r.Package == "" {
		return r.Name
	}
	return r.Package + "." + r.Name
}

// Location is a position in a requirements source file.
type Location struct {
	File string
	Line int
}

// String returns "file:line", or just the file when the line is unknown.
func (l Location) String() string {
	if l.Line <= 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// =============================================================================
// Records and Sections
// =============================================================================

// Field is a named record attribute.
type Field struct {
	Name  string
	Value Value
}

// Record is a typed requirement, diagram or test entity.
type Record struct {
	Name     string
	Type     string
	Package  string
	Fields   []Field // declaration order
	Location Location
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// QualifiedName returns "Package.Name", or Name when no package is set.
func (r *Record) QualifiedName() string {
	if r.Package == "" {
		return r.Name
	}
	return r.Package + "." + r.Name
}

// Section is a heading in the source tree.
type Section struct {
	Name  string
	Level int
}

// =============================================================================
// Tree
// =============================================================================

// Item is either a section or a record at a nesting level.
type Item struct {
	File    string
	Section *Section
	Record  *Record
	Level   int // record level; sections carry their own
}

// SectionItem returns an item for a section.
func SectionItem(file, name string, level int) Item {
	return Item{File: file, Section: &Section{Name: name, Level: level}, Level: level}
}

// RecordItem returns an item for a record.
func RecordItem(file string, r *Record, level int) Item {
	return Item{File: file, Record: r, Level: level}
}

// IsSection reports whether the item is a section.
func (it Item) IsSection() bool { return it.Section != nil }

// IsRecord reports whether the item is a record.
func (it Item) IsRecord() bool { return it.Record != nil }

// File is one requirements source file and its items in reading order.
type File struct {
	Path  string
	Items []Item
}

// Tree is the whole parsed requirement set.
type Tree struct {
	Files []File
}

// Items returns every item of the tree, file by file.
func (t *Tree) Items() []Item {
	var items []Item
	for _, f := range t.Files {
		items = append(items, f.Items...)
	}
	return items
}

// RecordCount returns the number of records in the tree.
func (t *Tree) RecordCount() int {
	n := 0
	for _, f := range t.Files {
		for _, it := range f.Items {
			if it.IsRecord() {
				n++
			}
		}
	}
	return n
}

// GroupByFile groups a flat item stream by source file. Files appear in
// order of their first item; items keep their relative order.
func GroupByFile(items []Item) []File {
	var files []File
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.File]
		if !ok {
			i = len(files)
			index[it.File] = i
			files = append(files, File{Path: it.File})
		}
		files[i].Items = append(files[i].Items, it)
	}
	return files
}
