package convert

import (
	"context"
	"strings"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/model"
)

// Column is one column of a record table.
type Column struct {
	Title string
	// Field is a record field name, or $name, $type or $location.
	Field string
	// Link renders the cell as a link to the record named by its text.
	Link bool
	// StripPrefix is removed from the text before linking.
	StripPrefix string
	// Colors maps cell texts to colors.
	Colors map[string]string
}

func (c Column) cell(d *Document, rec *model.Record) string {
	v := FieldValue(rec, c.Field)
	if isEmpty(v) || v.Kind == model.KindReference {
		return d.Cell(v)
	}
	if v.Kind == model.KindArray && c.Link {
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = c.text(d, item)
		}
		return strings.Join(parts, ", ")
	}
	return c.text(d, v)
}

func (c Column) text(d *Document, v model.Value) string {
	if isEmpty(v) || v.Kind == model.KindReference {
		return d.Cell(v)
	}
	text := v.String()
	if color, ok := c.Colors[text]; ok {
		return d.Colored(text, color)
	}
	if c.Link {
		return d.LocalLink(strings.TrimPrefix(text, c.StripPrefix))
	}
	return d.Escape(text)
}

// TableHandler renders each record as one row of a table with the given
// columns. Consecutive records of table types with the same titles share
// one table.
func TableHandler(cols ...Column) Handler {
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.Title
	}
	return func(ctx context.Context, d *Document, rec *model.Record, level int) error {
		if err := d.OpenTable(titles...); err != nil {
			return err
		}
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.cell(d, rec)
		}
		return d.RawRow(cells...)
	}
}

// DiagramHandler renders the diagram named by fileField with the caption in
// captionField.
func DiagramHandler(fileField, captionField string) Handler {
	return func(ctx context.Context, d *Document, rec *model.Record, level int) error {
		file := FieldValue(rec, fileField)
		if file.Kind != model.KindScalar || file.Text == "" {
			return errors.New(errors.ErrCodeInvalidInput, "field %s is not set", fileField)
		}
		caption := FieldValue(rec, captionField)
		text := ""
		if !caption.IsNull() {
			text = caption.String()
		}
		return d.Diagram(ctx, file.Text, text)
	}
}

// ParagraphHandler renders a field as a paragraph.
func ParagraphHandler(field string) Handler {
	return func(ctx context.Context, d *Document, rec *model.Record, level int) error {
		return d.Paragraph(d.Text(FieldValue(rec, field)))
	}
}

// AttributesHandler renders a record as a heading followed by a table of
// all its fields. labels maps field names to display names.
func AttributesHandler(labels map[string]string) Handler {
	return func(ctx context.Context, d *Document, rec *model.Record, level int) error {
		if err := d.ObjectHeading(rec.Name, rec.Type, level); err != nil {
			return err
		}
		if err := d.OpenTable("Attribute Name", "Attribute Value"); err != nil {
			return err
		}
		for _, f := range rec.Fields {
			name := f.Name
			if label, ok := labels[name]; ok {
				name = label
			}
			if err := d.RawRow(d.Escape(name), d.Cell(f.Value)); err != nil {
				return err
			}
		}
		return d.CloseTable()
	}
}

// SkipHandler writes nothing.
func SkipHandler(context.Context, *Document, *model.Record, int) error {
	return nil
}
