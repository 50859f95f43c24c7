package io

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/model"
)

type tree struct {
	Files []file `yaml:"files,omitempty"`
	Items []item `yaml:"items,omitempty"`
}

type file struct {
	Path  string `yaml:"path"`
	Items []item `yaml:"items"`
}

type item struct {
	File    string  `yaml:"file,omitempty"`
	Section string  `yaml:"section,omitempty"`
	Level   int     `yaml:"level"`
	Record  *record `yaml:"record,omitempty"`
}

type record struct {
	Name     string    `yaml:"name"`
	Type     string    `yaml:"type"`
	Package  string    `yaml:"package,omitempty"`
	Location *location `yaml:"location,omitempty"`
	Fields   fields    `yaml:"fields,omitempty"`
}

type location struct {
	File string `yaml:"file"`
	Line int    `yaml:"line,omitempty"`
}

// fields keeps the mapping order of the "fields" node.
type fields []model.Field

// UnmarshalYAML decodes a mapping node into ordered fields.
func (f *fields) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping", n.Line)
	}
	out := make(fields, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		v, err := decodeValue(n.Content[i+1])
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		out = append(out, model.Field{Name: name, Value: v})
	}
	*f = out
	return nil
}

func decodeValue(n *yaml.Node) (model.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return decodeValue(n.Alias)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return model.Null(), nil
		}
		return model.Scalar(n.Value), nil
	case yaml.SequenceNode:
		items := make([]model.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeValue(c)
			if err != nil {
				return model.Value{}, err
			}
			items = append(items, v)
		}
		return model.Array(items...), nil
	case yaml.MappingNode:
		return decodeReference(n)
	}
	return model.Value{}, fmt.Errorf("line %d: unsupported value", n.Line)
}

func decodeReference(n *yaml.Node) (model.Value, error) {
	var ref model.Reference
	var qualified string
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1].Value
		switch key {
		case "ref":
			qualified = val
		case "file":
			ref.Location.File = val
		case "line":
			line, err := strconv.Atoi(val)
			if err != nil {
				return model.Value{}, fmt.Errorf("line %d: reference line %q: %w", n.Line, val, err)
			}
			ref.Location.Line = line
		}
	}
	if qualified == "" {
		return model.Value{}, fmt.Errorf("line %d: mapping value without \"ref\"", n.Line)
	}
	if i := strings.LastIndex(qualified, "."); i > 0 {
		ref.Package, ref.Name = qualified[:i], qualified[i+1:]
	} else {
		ref.Name = qualified
	}
	return model.Ref(ref), nil
}

// ReadTree decodes a YAML or JSON requirement tree from r.
//
// ReadTree returns an INVALID_INPUT error if:
//   - The document is malformed
//   - An item is neither a section nor a record, or both
//   - A record has no name or type
//   - A level is negative
//
// Errors name the file and item index that caused the problem.
// ReadTree does not close r.
func ReadTree(r io.Reader) (*model.Tree, error) {
	var data tree
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		if err == io.EOF {
			return &model.Tree{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tree")
	}

	var files []model.File
	for _, f := range data.Files {
		items := make([]model.Item, 0, len(f.Items))
		for i, it := range f.Items {
			mi, err := convertItem(f.Path, it)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s item %d", f.Path, i)
			}
			items = append(items, mi)
		}
		files = append(files, model.File{Path: f.Path, Items: items})
	}

	if len(data.Items) > 0 {
		flat := make([]model.Item, 0, len(data.Items))
		for i, it := range data.Items {
			if it.File == "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "item %d: flat items need a file", i)
			}
			mi, err := convertItem(it.File, it)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s item %d", it.File, i)
			}
			flat = append(flat, mi)
		}
		files = append(files, model.GroupByFile(flat)...)
	}

	return &model.Tree{Files: files}, nil
}

func convertItem(path string, it item) (model.Item, error) {
	if it.Level < 0 {
		return model.Item{}, fmt.Errorf("negative level %d", it.Level)
	}
	switch {
	case it.Section != "" && it.Record != nil:
		return model.Item{}, fmt.Errorf("item is both section %q and record %q", it.Section, it.Record.Name)
	case it.Section != "":
		return model.SectionItem(path, it.Section, it.Level), nil
	case it.Record != nil:
		r := it.Record
		if r.Name == "" || r.Type == "" {
			return model.Item{}, fmt.Errorf("record needs name and type")
		}
		rec := &model.Record{
			Name:    r.Name,
			Type:    r.Type,
			Package: r.Package,
			Fields:  []model.Field(r.Fields),
		}
		if r.Location != nil {
			rec.Location = model.Location{File: r.Location.File, Line: r.Location.Line}
		} else {
			rec.Location = model.Location{File: path}
		}
		return model.RecordItem(path, rec, it.Level), nil
	}
	return model.Item{}, fmt.Errorf("item is neither section nor record")
}

// ImportTree reads a YAML or JSON tree file at path.
//
// ImportTree opens the file, decodes it using [ReadTree], and closes the
// file. It returns the same validation errors as [ReadTree]; a missing file
// is reported as NOT_FOUND.
func ImportTree(path string) (*model.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "tree file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}
