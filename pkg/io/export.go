package io

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/reqdoc/pkg/model"
)

// MarshalYAML encodes fields as a mapping node in declaration order.
func (f fields) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range f {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: field.Name},
			encodeValue(field.Value))
	}
	return n, nil
}

func encodeValue(v model.Value) *yaml.Node {
	switch v.Kind {
	case model.KindScalar:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Text}
	case model.KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, item := range v.Items {
			n.Content = append(n.Content, encodeValue(item))
		}
		return n
	case model.KindReference:
		n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "ref"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: v.Ref.QualifiedName()})
		if v.Ref.Location.File != "" {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "file"},
				&yaml.Node{Kind: yaml.ScalarNode, Value: v.Ref.Location.File})
		}
		if v.Ref.Location.Line > 0 {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "line"},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v.Ref.Location.Line)})
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// WriteYAML encodes a tree as YAML and writes it to w.
// The grouped form is written; it can be re-imported with [ReadTree].
func WriteYAML(t *model.Tree, w io.Writer) error {
	out := tree{Files: make([]file, len(t.Files))}
	for i, f := range t.Files {
		fo := file{Path: f.Path, Items: make([]item, len(f.Items))}
		for j, it := range f.Items {
			if it.IsSection() {
				fo.Items[j] = item{Section: it.Section.Name, Level: it.Section.Level}
				continue
			}
			r := it.Record
			fo.Items[j] = item{
				Level: it.Level,
				Record: &record{
					Name:     r.Name,
					Type:     r.Type,
					Package:  r.Package,
					Location: &location{File: r.Location.File, Line: r.Location.Line},
					Fields:   fields(r.Fields),
				},
			}
		}
		out.Files[i] = fo
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ExportYAML writes a tree to a YAML file at path.
// This is a convenience wrapper around [WriteYAML] for file-based output.
func ExportYAML(t *model.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteYAML(t, f)
}
