package match

import (
	"testing"

	"github.com/kickoff-data/pitchsync/internal/dataset"
)

func eventsDataset(t *testing.T, idCol *dataset.Column) *dataset.Dataset {
	t.Helper()
	fields := []string{
		FieldPeriodID, FieldMatchedTime, FieldTeamID,
		FieldJerseyNo, FieldEventX, FieldEventY,
	}
	cols := map[string]*dataset.Column{
		FieldPeriodID:    dataset.IntCol([]int64{1, 1, 2}),
		FieldMatchedTime: dataset.IntCol([]int64{1000, 2000, 500}),
		FieldTeamID:      dataset.IntCol([]int64{10, 20, 10}),
		FieldJerseyNo:    dataset.NullableIntCol([]int64{9, 0, 4}, []bool{true, false, true}),
		FieldEventX:      dataset.FloatCol([]float64{50, 25.5, 80}),
		FieldEventY:      dataset.FloatCol([]float64{50, 10, 66.6}),
	}
	if idCol != nil {
		fields = append([]string{FieldEventID}, fields...)
		cols[FieldEventID] = idCol
	}
	ds, err := dataset.New(fields, cols)
	if err != nil {
		t.Fatalf("building events dataset: %v", err)
	}
	return ds
}

func TestEventID(t *testing.T) {
	tests := []struct {
		name string
		id   *dataset.Column
		row  int
		want string
	}{
		{"string id", dataset.StringCol([]string{"E1", "", "E3"}), 0, "E1"},
		{"empty string falls back to row", dataset.StringCol([]string{"E1", "", "E3"}), 1, "1"},
		{"int id", dataset.IntCol([]int64{10234, 10235, 10236}), 2, "10236"},
		{"null int falls back to row", dataset.NullableIntCol([]int64{10234, 0, 10236}, []bool{true, false, true}), 1, "1"},
		{"no id column", nil, 2, "2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ds := eventsDataset(t, tc.id)
			if got := EventID(ds, tc.row); got != tc.want {
				t.Errorf("EventID(row=%d) = %q, want %q", tc.row, got, tc.want)
			}
		})
	}
}

func TestEventsView(t *testing.T) {
	ds := eventsDataset(t, dataset.StringCol([]string{"E1", "E2", "E3"}))
	view, err := NewEventsView(ds)
	if err != nil {
		t.Fatalf("NewEventsView: %v", err)
	}
	if view.Len() != 3 {
		t.Fatalf("Len = %d, want 3", view.Len())
	}

	row := view.Row(1)
	if row.ID != "E2" || row.PeriodID != 1 || row.NominalTime != 2000 {
		t.Errorf("row 1 = %+v", row)
	}
	if row.Jersey != dataset.MissingInt {
		t.Errorf("row 1 jersey = %d, want sentinel", row.Jersey)
	}
	if row.HasPassEnd || row.HasType {
		t.Error("optional columns should be reported absent")
	}

	// Missing required field is a construction error.
	sub, err := ds.Select(FieldEventID, FieldPeriodID)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := NewEventsView(sub); err == nil {
		t.Error("expected error for dataset without required event fields")
	}
}

func TestEventsViewOptionalColumns(t *testing.T) {
	ds := eventsDataset(t, nil)
	ds, err := ds.WithColumn(FieldPassEndX, dataset.FloatCol([]float64{60, 0, 0}))
	if err != nil {
		t.Fatal(err)
	}
	ds, err = ds.WithColumn(FieldPassEndY, dataset.FloatCol([]float64{40, 0, 0}))
	if err != nil {
		t.Fatal(err)
	}
	ds, err = ds.WithColumn(FieldEventTypeID, dataset.IntCol([]int64{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}

	view, err := NewEventsView(ds)
	if err != nil {
		t.Fatalf("NewEventsView: %v", err)
	}
	row := view.Row(0)
	if !row.HasPassEnd || row.PassEndX != 60 || row.PassEndY != 40 {
		t.Errorf("pass end = %+v", row)
	}
	if !row.HasType || row.TypeID != 1 || row.TypeDesc != "" {
		t.Errorf("type = %+v", row)
	}
}

func TestTrackingView(t *testing.T) {
	ds, err := dataset.New(
		RequiredTrackingFields,
		map[string]*dataset.Column{
			FieldPeriodID:    dataset.IntCol([]int64{1, 1}),
			FieldMatchedTime: dataset.IntCol([]int64{900, 950}),
			FieldTeamOptaID:  dataset.IntCol([]int64{10, -1}),
			FieldJerseyNo:    dataset.NullableIntCol([]int64{7, 0}, []bool{true, false}),
			FieldPosX:        dataset.FloatCol([]float64{-10.5, 0}),
			FieldPosY:        dataset.FloatCol([]float64{4.25, 0}),
			FieldIsBall:      dataset.BoolCol([]bool{false, true}),
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	view, err := NewTrackingView(ds)
	if err != nil {
		t.Fatalf("NewTrackingView: %v", err)
	}
	ball := view.Row(1)
	if !ball.IsBall || ball.Time != 950 || ball.Jersey != dataset.MissingInt {
		t.Errorf("ball row = %+v", ball)
	}
	player := view.Row(0)
	if player.X != -10.5 || player.Y != 4.25 || player.Jersey != 7 {
		t.Errorf("player row = %+v", player)
	}
}

func TestMetadataPlayerName(t *testing.T) {
	meta := Metadata{
		Players: []Player{
			{TeamID: 10, Jersey: 7, Name: "R. Carter"},
			{TeamID: 20, Jersey: 7, Name: "D. Okafor"},
		},
	}
	if got := meta.PlayerName(20, 7); got != "D. Okafor" {
		t.Errorf("PlayerName(20,7) = %q", got)
	}
	if got := meta.PlayerName(10, 99); got != "" {
		t.Errorf("PlayerName(10,99) = %q, want empty", got)
	}
}
