package domain

import (
	"database/sql/driver"
	"math"
	"reflect"
)

// Frame is a row-oriented table. Column order is significant and nil is the
// canonical missing value.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// NewFrame returns an empty frame with the given columns.
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: columns}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Width returns the number of columns.
func (f *Frame) Width() int {
	if f == nil {
		return 0
	}
	return len(f.Columns)
}

// Empty reports whether the frame holds no rows.
func (f *Frame) Empty() bool { return f.Len() == 0 }

// ColumnIndex returns the position of name, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Append adds a row. Short rows are padded with nil.
func (f *Frame) Append(values ...any) {
	row := make([]any, len(f.Columns))
	copy(row, values)
	f.Rows = append(f.Rows, row)
}

// Record returns row i keyed by column name.
func (f *Frame) Record(i int) map[string]any {
	rec := make(map[string]any, len(f.Columns))
	for j, c := range f.Columns {
		if j < len(f.Rows[i]) {
			rec[c] = f.Rows[i][j]
		} else {
			rec[c] = nil
		}
	}
	return rec
}

// Records returns every row keyed by column name.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, f.Len())
	for i := range out {
		out[i] = f.Record(i)
	}
	return out
}

// Select projects the frame onto columns, in the order given. It returns the
// first missing column name when one of them is absent.
func (f *Frame) Select(columns []string) (*Frame, string) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = f.ColumnIndex(c)
		if idx[i] < 0 {
			return nil, c
		}
	}
	out := &Frame{Columns: append([]string(nil), columns...), Rows: make([][]any, len(f.Rows))}
	for r, row := range f.Rows {
		projected := make([]any, len(idx))
		for i, j := range idx {
			if j < len(row) {
				projected[i] = row[j]
			}
		}
		out.Rows[r] = projected
	}
	return out, ""
}

// Concat appends other below f, aligning columns by name. Columns only
// present in one side are filled with nil on the other.
func (f *Frame) Concat(other *Frame) *Frame {
	if f == nil {
		return other
	}
	if other == nil {
		return f
	}
	cols := append([]string(nil), f.Columns...)
	for _, c := range other.Columns {
		if f.ColumnIndex(c) < 0 {
			cols = append(cols, c)
		}
	}
	out := &Frame{Columns: cols}
	for _, src := range []*Frame{f, other} {
		for _, row := range src.Rows {
			aligned := make([]any, len(cols))
			for j, c := range src.Columns {
				if j >= len(row) {
					continue
				}
				for k, oc := range cols {
					if oc == c {
						aligned[k] = row[j]
						break
					}
				}
			}
			out.Rows = append(out.Rows, aligned)
		}
	}
	return out
}

// NormalizeMissing maps every representation of an absent value to nil:
// nil pointers and interfaces, NaN floats, and driver.Valuer types whose
// value is nil.
func NormalizeMissing(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return x
	case float32:
		if math.IsNaN(float64(x)) {
			return nil
		}
		return x
	case driver.Valuer:
		inner, err := x.Value()
		if err == nil && inner == nil {
			return nil
		}
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}

// IsMissing reports whether v normalizes to nil.
func IsMissing(v any) bool {
	return NormalizeMissing(v) == nil
}

// NormalizeRows applies NormalizeMissing to every cell in place.
func (f *Frame) NormalizeRows() *Frame {
	for _, row := range f.Rows {
		for j := range row {
			row[j] = NormalizeMissing(row[j])
		}
	}
	return f
}
