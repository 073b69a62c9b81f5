package dataset

import "fmt"

// Filter returns a new dataset containing only the rows for which keep
// reports true. Row order is preserved.
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	rows := make([]int, 0, d.numRows)
	for i := 0; i < d.numRows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	columns := make(map[string]*Column, len(d.fieldNames))
	for _, name := range d.fieldNames {
		columns[name] = takeRows(d.columns[name], rows)
	}
	out, err := New(d.fieldNames, columns)
	if err != nil {
		// takeRows preserves lengths and names; a failure here is a bug.
		panic(err)
	}
	return out
}

func takeRows(c *Column, rows []int) *Column {
	out := &Column{kind: c.kind}
	switch c.kind {
	case Int:
		out.ints = make([]int64, len(rows))
		for i, r := range rows {
			out.ints[i] = c.ints[r]
		}
	case NullableInt:
		out.ints = make([]int64, len(rows))
		out.valid = make([]bool, len(rows))
		for i, r := range rows {
			out.ints[i] = c.ints[r]
			out.valid[i] = c.valid[r]
		}
	case Float:
		out.floats = make([]float64, len(rows))
		for i, r := range rows {
			out.floats[i] = c.floats[r]
		}
	case String:
		out.strings = make([]string, len(rows))
		for i, r := range rows {
			out.strings[i] = c.strings[r]
		}
	case Bool:
		out.bools = make([]bool, len(rows))
		for i, r := range rows {
			out.bools[i] = c.bools[r]
		}
	}
	return out
}

// WithColumn returns a new dataset with col bound to name. An existing
// field is replaced in place in the field order; a new field is
// appended. Unchanged columns are shared with the receiver.
func (d *Dataset) WithColumn(name string, col *Column) (*Dataset, error) {
	if col.Len() != d.numRows && !(d.numRows == 0 && len(d.fieldNames) == 0) {
		return nil, fmt.Errorf("dataset: column %q has %d rows, want %d", name, col.Len(), d.numRows)
	}
	columns := make(map[string]*Column, len(d.fieldNames)+1)
	for _, n := range d.fieldNames {
		columns[n] = d.columns[n]
	}
	columns[name] = col
	fields := d.fieldNames
	if !d.HasField(name) {
		fields = append(d.FieldNames(), name)
	}
	return New(fields, columns)
}

// Rename returns a new dataset with fields renamed per mapping. Fields
// absent from the mapping keep their names. Renaming onto an existing
// field name is an error.
func (d *Dataset) Rename(mapping map[string]string) (*Dataset, error) {
	fields := make([]string, len(d.fieldNames))
	columns := make(map[string]*Column, len(d.fieldNames))
	for i, name := range d.fieldNames {
		renamed := name
		if to, ok := mapping[name]; ok {
			renamed = to
		}
		fields[i] = renamed
		columns[renamed] = d.columns[name]
	}
	return New(fields, columns)
}

// Select returns a new dataset restricted to the named fields, in the
// given order. Unknown fields are an error.
func (d *Dataset) Select(fields ...string) (*Dataset, error) {
	columns := make(map[string]*Column, len(fields))
	for _, name := range fields {
		col, ok := d.columns[name]
		if !ok {
			return nil, fmt.Errorf("dataset: unknown field %q", name)
		}
		columns[name] = col
	}
	return New(fields, columns)
}
