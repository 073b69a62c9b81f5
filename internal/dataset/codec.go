package dataset

import (
	"encoding/json"
	"fmt"
)

// wireColumn is the serialized form of one column. Exactly one value
// slice is populated, matching the kind.
type wireColumn struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Ints    []int64   `json:"ints,omitempty"`
	Floats  []float64 `json:"floats,omitempty"`
	Strings []string  `json:"strings,omitempty"`
	Bools   []bool    `json:"bools,omitempty"`
	Valid   []bool    `json:"valid,omitempty"`
}

type wireDataset struct {
	Columns []wireColumn `json:"columns"`
}

// Encode serializes the dataset for storage. Field order is preserved.
func Encode(d *Dataset) ([]byte, error) {
	wire := wireDataset{Columns: make([]wireColumn, 0, len(d.fieldNames))}
	for _, name := range d.fieldNames {
		col := d.columns[name]
		wc := wireColumn{Name: name, Kind: col.kind.String()}
		switch col.kind {
		case Int:
			wc.Ints = col.ints
		case NullableInt:
			wc.Ints = col.ints
			wc.Valid = col.valid
		case Float:
			wc.Floats = col.floats
		case String:
			wc.Strings = col.strings
		case Bool:
			wc.Bools = col.bools
		}
		wire.Columns = append(wire.Columns, wc)
	}
	return json.Marshal(wire)
}

// Decode reconstructs a dataset serialized by Encode.
func Decode(data []byte) (*Dataset, error) {
	var wire wireDataset
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	fields := make([]string, 0, len(wire.Columns))
	columns := make(map[string]*Column, len(wire.Columns))
	for _, wc := range wire.Columns {
		col, err := wc.column()
		if err != nil {
			return nil, fmt.Errorf("decoding column %q: %w", wc.Name, err)
		}
		fields = append(fields, wc.Name)
		columns[wc.Name] = col
	}
	return New(fields, columns)
}

func (wc wireColumn) column() (*Column, error) {
	switch wc.Kind {
	case "int":
		if wc.Ints == nil {
			wc.Ints = []int64{}
		}
		return IntCol(wc.Ints), nil
	case "nullable-int":
		if len(wc.Ints) != len(wc.Valid) {
			return nil, fmt.Errorf("nullable column has %d values, %d valid flags", len(wc.Ints), len(wc.Valid))
		}
		return NullableIntCol(wc.Ints, wc.Valid), nil
	case "float":
		if wc.Floats == nil {
			wc.Floats = []float64{}
		}
		return FloatCol(wc.Floats), nil
	case "string":
		if wc.Strings == nil {
			wc.Strings = []string{}
		}
		return StringCol(wc.Strings), nil
	case "bool":
		if wc.Bools == nil {
			wc.Bools = []bool{}
		}
		return BoolCol(wc.Bools), nil
	default:
		return nil, fmt.Errorf("unknown column kind %q", wc.Kind)
	}
}
