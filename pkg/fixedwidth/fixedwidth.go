// Package fixedwidth decodes lines made of fixed-width integer columns into
// scaled float arrays. A Record describes one line layout so that each file
// reader states its format as data instead of slicing strings by hand.
package fixedwidth

import (
	"fmt"
	"strconv"
	"strings"
)

// Column is one integer column. The decoded value is raw / Scale and is
// written to dst[Dest] of the slices handed to Decode.
type Column struct {
	Width int
	Scale float64
	Dest  int
}

// Field places a Column at an index of its destination array.
type Field struct {
	Column
	Index int
}

// Record is the layout of a line: Skip leading characters, then Fields in
// order, each directly following the previous one.
type Record struct {
	Skip   int
	Fields []Field
}

// Span lays out cols repeatedly for every array index in [first, last],
// zero-based and inclusive.
func Span(first, last int, cols ...Column) []Field {
	var fields []Field
	for i := first; i <= last; i++ {
		for _, c := range cols {
			fields = append(fields, Field{Column: c, Index: i})
		}
	}
	return fields
}

// Width returns the number of characters a line needs to satisfy r.
func (r Record) Width() int {
	w := r.Skip
	for _, f := range r.Fields {
		w += f.Width
	}
	return w
}

// Decode parses line according to r. Nothing is written to dst unless every
// field decodes.
func (r Record) Decode(line string, dst ...[]float64) error {
	vals := make([]float64, len(r.Fields))
	pos := r.Skip
	for i, f := range r.Fields {
		if f.Dest < 0 || f.Dest >= len(dst) || f.Index < 0 || f.Index >= len(dst[f.Dest]) {
			return fmt.Errorf("field %d targets [%d][%d] outside destination", i, f.Dest, f.Index)
		}
		raw, err := Int(line, pos, f.Width)
		if err != nil {
			return err
		}
		vals[i] = float64(raw) / f.Scale
		pos += f.Width
	}
	for i, f := range r.Fields {
		dst[f.Dest][f.Index] = vals[i]
	}
	return nil
}

// Int parses the integer in line[start:start+width]. Surrounding blanks are
// ignored; a short line or an empty column is an error.
func Int(line string, start, width int) (int, error) {
	if start+width > len(line) {
		return 0, &ColumnError{Start: start, Width: width, Msg: fmt.Sprintf("line has only %d characters", len(line))}
	}
	s := strings.TrimSpace(line[start : start+width])
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ColumnError{Start: start, Width: width, Msg: fmt.Sprintf("%q is not an integer", s)}
	}
	return n, nil
}

// ColumnError locates a column that could not be decoded.
type ColumnError struct {
	Start, Width int
	Msg          string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("columns %d-%d: %s", e.Start+1, e.Start+e.Width, e.Msg)
}
