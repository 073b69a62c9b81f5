// Package dataset provides an immutable, typed columnar table: named
// columns of equal length accessed by field name and row index. Datasets
// are constructed once from decoded file content and every
// transformation (row filtering, column replacement, renaming) yields a
// new value; nothing is mutated in place.
package dataset

import (
	"fmt"
)

// Kind identifies the element type of a column, fixed at construction.
type Kind uint8

const (
	Int Kind = iota
	Float
	String
	Bool
	// NullableInt is an integer column where individual values may be
	// absent (e.g. jersey numbers that failed to parse upstream).
	NullableInt
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case NullableInt:
		return "nullable-int"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MissingInt is the sentinel returned for null entries of a NullableInt
// column.
const MissingInt int64 = -1

// Column is a typed sequence of values. Exactly one backing slice is
// populated, selected by kind. Columns are never mutated after
// construction.
type Column struct {
	kind    Kind
	ints    []int64
	floats  []float64
	strings []string
	bools   []bool
	valid   []bool // parallel to ints for NullableInt
}

// IntCol builds an integer column.
func IntCol(values []int64) *Column { return &Column{kind: Int, ints: values} }

// FloatCol builds a floating-point column.
func FloatCol(values []float64) *Column { return &Column{kind: Float, floats: values} }

// StringCol builds a string column.
func StringCol(values []string) *Column { return &Column{kind: String, strings: values} }

// BoolCol builds a boolean column.
func BoolCol(values []bool) *Column { return &Column{kind: Bool, bools: values} }

// NullableIntCol builds an integer column with per-value presence.
// values and valid must have equal length.
func NullableIntCol(values []int64, valid []bool) *Column {
	if len(values) != len(valid) {
		panic(fmt.Sprintf("dataset: nullable column length mismatch: %d values, %d valid flags", len(values), len(valid)))
	}
	return &Column{kind: NullableInt, ints: values, valid: valid}
}

// Kind reports the column's element kind.
func (c *Column) Kind() Kind { return c.kind }

// Len reports the number of values in the column.
func (c *Column) Len() int {
	switch c.kind {
	case Int, NullableInt:
		return len(c.ints)
	case Float:
		return len(c.floats)
	case String:
		return len(c.strings)
	case Bool:
		return len(c.bools)
	}
	return 0
}

// Int returns the value at row i. For NullableInt columns a null entry
// yields MissingInt. Panics on non-integer columns; type mismatches are
// an ingestion bug, not a runtime condition.
func (c *Column) Int(i int) int64 {
	switch c.kind {
	case Int:
		return c.ints[i]
	case NullableInt:
		if !c.valid[i] {
			return MissingInt
		}
		return c.ints[i]
	}
	panic(fmt.Sprintf("dataset: Int access on %s column", c.kind))
}

// Float returns the value at row i, coercing integer columns.
func (c *Column) Float(i int) float64 {
	switch c.kind {
	case Float:
		return c.floats[i]
	case Int:
		return float64(c.ints[i])
	case NullableInt:
		if !c.valid[i] {
			return float64(MissingInt)
		}
		return float64(c.ints[i])
	}
	panic(fmt.Sprintf("dataset: Float access on %s column", c.kind))
}

// Str returns the string value at row i.
func (c *Column) Str(i int) string {
	if c.kind != String {
		panic(fmt.Sprintf("dataset: Str access on %s column", c.kind))
	}
	return c.strings[i]
}

// Bool returns the boolean value at row i.
func (c *Column) Bool(i int) bool {
	if c.kind != Bool {
		panic(fmt.Sprintf("dataset: Bool access on %s column", c.kind))
	}
	return c.bools[i]
}

// IsNull reports whether the value at row i is absent. Only NullableInt
// columns can hold nulls.
func (c *Column) IsNull(i int) bool {
	return c.kind == NullableInt && !c.valid[i]
}

// Dataset is an immutable table of named, equally sized columns.
// fieldNames defines the authoritative ordered set of active columns.
type Dataset struct {
	fieldNames []string
	columns    map[string]*Column
	numRows    int
}

// New validates and assembles a dataset. Every field name must be
// unique and present in columns, and all columns must share one length.
func New(fieldNames []string, columns map[string]*Column) (*Dataset, error) {
	seen := make(map[string]bool, len(fieldNames))
	numRows := -1
	for _, name := range fieldNames {
		if seen[name] {
			return nil, fmt.Errorf("dataset: duplicate field %q", name)
		}
		seen[name] = true
		col, ok := columns[name]
		if !ok || col == nil {
			return nil, fmt.Errorf("dataset: field %q has no column", name)
		}
		if numRows == -1 {
			numRows = col.Len()
		} else if col.Len() != numRows {
			return nil, fmt.Errorf("dataset: column %q has %d rows, want %d", name, col.Len(), numRows)
		}
	}
	if numRows == -1 {
		numRows = 0
	}
	kept := make(map[string]*Column, len(fieldNames))
	for _, name := range fieldNames {
		kept[name] = columns[name]
	}
	names := make([]string, len(fieldNames))
	copy(names, fieldNames)
	return &Dataset{fieldNames: names, columns: kept, numRows: numRows}, nil
}

// NumRows reports the row count.
func (d *Dataset) NumRows() int { return d.numRows }

// FieldNames returns the ordered active field names as a copy.
func (d *Dataset) FieldNames() []string {
	names := make([]string, len(d.fieldNames))
	copy(names, d.fieldNames)
	return names
}

// HasField reports whether name is an active field.
func (d *Dataset) HasField(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// Column returns the named column. The second result is false when the
// field does not exist.
func (d *Dataset) Column(name string) (*Column, bool) {
	col, ok := d.columns[name]
	return col, ok
}
