package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/kickoff-data/pitchsync/internal/dataset"
	"github.com/kickoff-data/pitchsync/internal/match"
)

// CSVDecoder decodes a headered CSV stream into a dataset. Kinds maps
// field name to element kind; header fields without an entry decode as
// strings. Values that fail to parse for their declared kind reject
// the file, except in nullable-int columns where they become nulls
// (the jersey-number case).
type CSVDecoder struct {
	Kinds map[string]dataset.Kind
}

// TrackingCSV returns a decoder configured for the tracking feed's
// column types.
func TrackingCSV() CSVDecoder {
	return CSVDecoder{Kinds: map[string]dataset.Kind{
		match.FieldPeriodID:    dataset.Int,
		match.FieldMatchedTime: dataset.Int,
		match.FieldTeamOptaID:  dataset.Int,
		match.FieldJerseyNo:    dataset.NullableInt,
		match.FieldPosX:        dataset.Float,
		match.FieldPosY:        dataset.Float,
		match.FieldIsBall:      dataset.Bool,
	}}
}

// EventsCSV returns a decoder configured for the events feed's column
// types.
func EventsCSV() CSVDecoder {
	return CSVDecoder{Kinds: map[string]dataset.Kind{
		match.FieldEventID:     dataset.String,
		match.FieldPeriodID:    dataset.Int,
		match.FieldMatchedTime: dataset.Int,
		match.FieldTeamID:      dataset.Int,
		match.FieldJerseyNo:    dataset.NullableInt,
		match.FieldEventX:      dataset.Float,
		match.FieldEventY:      dataset.Float,
		match.FieldPassEndX:    dataset.Float,
		match.FieldPassEndY:    dataset.Float,
		match.FieldEventTypeID: dataset.Int,
	}}
}

// Decode reads the whole stream into a dataset.
func (d CSVDecoder) Decode(r io.Reader) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	fields := make([]string, len(header))
	copy(fields, header)

	builders := make([]*columnBuilder, len(fields))
	for i, name := range fields {
		kind, ok := d.Kinds[name]
		if !ok {
			kind = dataset.String
		}
		builders[i] = &columnBuilder{kind: kind}
	}

	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", row+1, err)
		}
		for i, raw := range record {
			if i >= len(builders) {
				break
			}
			if err := builders[i].append(raw); err != nil {
				return nil, fmt.Errorf("row %d, field %q: %w", row+1, fields[i], err)
			}
		}
		row++
	}

	columns := make(map[string]*dataset.Column, len(fields))
	for i, name := range fields {
		columns[name] = builders[i].build()
	}
	return dataset.New(fields, columns)
}

type columnBuilder struct {
	kind    dataset.Kind
	ints    []int64
	floats  []float64
	strings []string
	bools   []bool
	valid   []bool
}

func (b *columnBuilder) append(raw string) error {
	switch b.kind {
	case dataset.Int:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing integer %q: %w", raw, err)
		}
		b.ints = append(b.ints, v)
	case dataset.NullableInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			b.ints = append(b.ints, 0)
			b.valid = append(b.valid, false)
			return nil
		}
		b.ints = append(b.ints, v)
		b.valid = append(b.valid, true)
	case dataset.Float:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parsing float %q: %w", raw, err)
		}
		b.floats = append(b.floats, v)
	case dataset.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parsing bool %q: %w", raw, err)
		}
		b.bools = append(b.bools, v)
	default:
		b.strings = append(b.strings, raw)
	}
	return nil
}

func (b *columnBuilder) build() *dataset.Column {
	switch b.kind {
	case dataset.Int:
		if b.ints == nil {
			b.ints = []int64{}
		}
		return dataset.IntCol(b.ints)
	case dataset.NullableInt:
		if b.ints == nil {
			b.ints, b.valid = []int64{}, []bool{}
		}
		return dataset.NullableIntCol(b.ints, b.valid)
	case dataset.Float:
		if b.floats == nil {
			b.floats = []float64{}
		}
		return dataset.FloatCol(b.floats)
	case dataset.Bool:
		if b.bools == nil {
			b.bools = []bool{}
		}
		return dataset.BoolCol(b.bools)
	default:
		if b.strings == nil {
			b.strings = []string{}
		}
		return dataset.StringCol(b.strings)
	}
}
