// Package match defines the logical row views over the tracking and
// events datasets, the event-id derivation rule shared by every
// component that needs one, and the match metadata record.
package match

import (
	"fmt"
	"strconv"

	"github.com/kickoff-data/pitchsync/internal/dataset"
)

// Tracking dataset field names, as produced by the upstream decoder.
const (
	FieldPeriodID    = "period_id"
	FieldMatchedTime = "matched_time"
	FieldTeamOptaID  = "team_opta_id"
	FieldJerseyNo    = "jersey_no"
	FieldPosX        = "pos_x"
	FieldPosY        = "pos_y"
	FieldIsBall      = "is_ball"
)

// Events dataset field names.
const (
	FieldEventID       = "opta_event_id"
	FieldTeamID        = "team_id"
	FieldEventX        = "x"
	FieldEventY        = "y"
	FieldPassEndX      = "pass_end_x"
	FieldPassEndY      = "pass_end_y"
	FieldEventTypeID   = "event_type_id"
	FieldEventTypeDesc = "event_type_desc"
)

// RequiredTrackingFields lists the fields a tracking dataset must carry.
var RequiredTrackingFields = []string{
	FieldPeriodID, FieldMatchedTime, FieldTeamOptaID,
	FieldJerseyNo, FieldPosX, FieldPosY, FieldIsBall,
}

// RequiredEventFields lists the fields an events dataset must carry.
var RequiredEventFields = []string{
	FieldEventID, FieldPeriodID, FieldMatchedTime,
	FieldTeamID, FieldJerseyNo, FieldEventX, FieldEventY,
}

// TrackingRow is one player/ball sample in the tracking coordinate
// system. Jersey is dataset.MissingInt when absent.
type TrackingRow struct {
	PeriodID int64
	Time     int64 // sample time, ms
	TeamID   int64
	Jersey   int64
	X, Y     float64
	IsBall   bool
}

// EventRow is one discrete event in the canonical coordinate system.
// PassEndX/PassEndY and the type fields are zero-valued when the
// source dataset lacks the optional columns (HasPassEnd/HasType).
type EventRow struct {
	ID          string
	PeriodID    int64
	NominalTime int64 // ms, approximate
	TeamID      int64
	Jersey      int64
	X, Y        float64
	PassEndX    float64
	PassEndY    float64
	HasPassEnd  bool
	TypeID      int64
	TypeDesc    string
	HasType     bool
}

// EventID derives the identifier for the event at row in ds: the
// opta_event_id value when the column exists and the value is present,
// otherwise the row index rendered as a string. Confirm, import, export
// and the unsynced scan all use this one rule.
func EventID(ds *dataset.Dataset, row int) string {
	if ds == nil {
		return strconv.Itoa(row)
	}
	col, ok := ds.Column(FieldEventID)
	if !ok {
		return strconv.Itoa(row)
	}
	switch col.Kind() {
	case dataset.String:
		if s := col.Str(row); s != "" {
			return s
		}
	case dataset.Int, dataset.NullableInt:
		if !col.IsNull(row) {
			return strconv.FormatInt(col.Int(row), 10)
		}
	}
	return strconv.Itoa(row)
}

// TrackingView is a typed view over a tracking dataset. Column handles
// are resolved once at construction so per-row access is map-free.
type TrackingView struct {
	ds     *dataset.Dataset
	period *dataset.Column
	time   *dataset.Column
	team   *dataset.Column
	jersey *dataset.Column
	posX   *dataset.Column
	posY   *dataset.Column
	isBall *dataset.Column
}

// NewTrackingView binds the required tracking columns of ds.
func NewTrackingView(ds *dataset.Dataset) (*TrackingView, error) {
	v := &TrackingView{ds: ds}
	for _, bind := range []struct {
		name string
		dst  **dataset.Column
	}{
		{FieldPeriodID, &v.period},
		{FieldMatchedTime, &v.time},
		{FieldTeamOptaID, &v.team},
		{FieldJerseyNo, &v.jersey},
		{FieldPosX, &v.posX},
		{FieldPosY, &v.posY},
		{FieldIsBall, &v.isBall},
	} {
		col, ok := ds.Column(bind.name)
		if !ok {
			return nil, fmt.Errorf("tracking dataset missing field %q", bind.name)
		}
		*bind.dst = col
	}
	return v, nil
}

// Len reports the number of tracking rows.
func (v *TrackingView) Len() int { return v.ds.NumRows() }

// Dataset returns the underlying dataset.
func (v *TrackingView) Dataset() *dataset.Dataset { return v.ds }

// Row materializes the tracking row at index i.
func (v *TrackingView) Row(i int) TrackingRow {
	return TrackingRow{
		PeriodID: v.period.Int(i),
		Time:     v.time.Int(i),
		TeamID:   v.team.Int(i),
		Jersey:   v.jersey.Int(i),
		X:        v.posX.Float(i),
		Y:        v.posY.Float(i),
		IsBall:   v.isBall.Bool(i),
	}
}

// EventsView is a typed view over an events dataset. Optional columns
// (pass end, event type) may be absent; Row reports their presence.
type EventsView struct {
	ds       *dataset.Dataset
	period   *dataset.Column
	time     *dataset.Column
	team     *dataset.Column
	jersey   *dataset.Column
	x        *dataset.Column
	y        *dataset.Column
	passEndX *dataset.Column
	passEndY *dataset.Column
	typeID   *dataset.Column
	typeDesc *dataset.Column
}

// NewEventsView binds the events columns of ds. The id column itself is
// optional: EventID falls back to row indices without it.
func NewEventsView(ds *dataset.Dataset) (*EventsView, error) {
	v := &EventsView{ds: ds}
	for _, bind := range []struct {
		name string
		dst  **dataset.Column
	}{
		{FieldPeriodID, &v.period},
		{FieldMatchedTime, &v.time},
		{FieldTeamID, &v.team},
		{FieldJerseyNo, &v.jersey},
		{FieldEventX, &v.x},
		{FieldEventY, &v.y},
	} {
		col, ok := ds.Column(bind.name)
		if !ok {
			return nil, fmt.Errorf("events dataset missing field %q", bind.name)
		}
		*bind.dst = col
	}
	v.passEndX, _ = ds.Column(FieldPassEndX)
	v.passEndY, _ = ds.Column(FieldPassEndY)
	v.typeID, _ = ds.Column(FieldEventTypeID)
	v.typeDesc, _ = ds.Column(FieldEventTypeDesc)
	return v, nil
}

// Len reports the number of events.
func (v *EventsView) Len() int { return v.ds.NumRows() }

// Dataset returns the underlying dataset.
func (v *EventsView) Dataset() *dataset.Dataset { return v.ds }

// Row materializes the event at index i, including its derived id.
func (v *EventsView) Row(i int) EventRow {
	row := EventRow{
		ID:          EventID(v.ds, i),
		PeriodID:    v.period.Int(i),
		NominalTime: v.time.Int(i),
		TeamID:      v.team.Int(i),
		Jersey:      v.jersey.Int(i),
		X:           v.x.Float(i),
		Y:           v.y.Float(i),
	}
	if v.passEndX != nil && v.passEndY != nil {
		row.PassEndX = v.passEndX.Float(i)
		row.PassEndY = v.passEndY.Float(i)
		row.HasPassEnd = true
	}
	if v.typeID != nil {
		row.TypeID = v.typeID.Int(i)
		row.HasType = true
		if v.typeDesc != nil {
			row.TypeDesc = v.typeDesc.Str(i)
		}
	}
	return row
}
