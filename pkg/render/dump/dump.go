// Package dump prints the conversion lifecycle of a requirement tree as
// indented text. It is a [convert.Converter] without an output format and is
// used to inspect a tree and to check which files an exclusion keeps.
//
// Output for a file with one section and one record:
//
//	begin
//	file reqs/spec.trlc
//	  section Overview (level 0)
//	  record REQ-1: Requirement (level 0) at reqs/spec.trlc:12
//	    description = The system shall boot.
//	    parent = -> Reqs.SYS-1 (sys/sys.trlc:3)
//	leave reqs/spec.trlc
//	finish
//
// [convert.Converter]: github.com/matzehuels/reqdoc/pkg/convert.Converter
package dump

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/model"
)

const indent = "  "

// Converter writes one line per lifecycle event to W.
type Converter struct {
	w   io.Writer
	err error

	// Records counts visited records.
	Records int
}

// New returns a Converter writing to w.
func New(w io.Writer) *Converter {
	return &Converter{w: w}
}

func (c *Converter) printf(depth int, format string, args ...any) error {
	if c.err != nil {
		return c.err
	}
	line := strings.Repeat(indent, depth) + fmt.Sprintf(format, args...) + "\n"
	if _, err := io.WriteString(c.w, line); err != nil {
		c.err = errors.Wrap(errors.ErrCodeSink, err, "write dump")
	}
	return c.err
}

func (c *Converter) Begin(context.Context) error { return c.printf(0, "begin") }

func (c *Converter) EnterFile(_ context.Context, file string) error {
	return c.printf(0, "file %s", file)
}

func (c *Converter) VisitSection(_ context.Context, s model.Section) error {
	return c.printf(1+s.Level, "section %s (level %d)", s.Name, s.Level)
}

func (c *Converter) VisitRecord(_ context.Context, rec *model.Record, level int) error {
	c.Records++
	head := fmt.Sprintf("record %s: %s (level %d)", rec.QualifiedName(), rec.Type, level)
	if loc := rec.Location.String(); loc != "" {
		head += " at " + loc
	}
	if err := c.printf(1+level, "%s", head); err != nil {
		return err
	}
	for _, f := range rec.Fields {
		if err := c.printf(2+level, "%s = %s", f.Name, Value(f.Value)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Converter) LeaveFile(_ context.Context, file string) error {
	return c.printf(0, "leave %s", file)
}

func (c *Converter) Finish(context.Context) error { return c.printf(0, "finish") }

// Close is a no-op; the writer belongs to the caller.
func (c *Converter) Close() error { return nil }

// Value formats a field value for the dump: null as "null", arrays in
// brackets and references with an arrow and their target location.
func Value(v model.Value) string {
	switch v.Kind {
	case model.KindNull:
		return "null"
	case model.KindArray:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = Value(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case model.KindReference:
		s := "-> " + v.Ref.QualifiedName()
		if loc := v.Ref.Location.String(); loc != "" {
			s += " (" + loc + ")"
		}
		return s
	}
	return v.Text
}
