package align

import (
	"fmt"

	"github.com/kickoff-data/pitchsync/internal/dataset"
	"github.com/kickoff-data/pitchsync/internal/match"
)

// Direction moves the cursor one event forward or back.
type Direction int

const (
	Next Direction = 1
	Prev Direction = -1
)

// ResultsWriter persists the complete synced-results map. Every write
// carries the whole map so two in-flight writes can complete in either
// order without leaving a torn record.
type ResultsWriter interface {
	SaveSyncedResults(results map[string]int64) error
}

// State is a snapshot of the engine cursor for presentation.
type State struct {
	CurrentEventIndex int  `json:"current_event_index"`
	FrameOffset       int  `json:"frame_offset"`
	LastSyncOffset    int  `json:"last_sync_offset"`
	SyncedCount       int  `json:"synced_count"`
	TotalEvents       int  `json:"total_events"`
	Exhausted         bool `json:"exhausted"`
	// PeriodHasTracking is false when the current event's period has no
	// tracking samples. A warning state for the operator, never an error.
	PeriodHasTracking bool `json:"period_has_tracking"`
}

// Engine owns the alignment cursor and the synced-results map. It is
// the single mutator of both; callers drive it from one operator
// session, so no internal locking is carried.
type Engine struct {
	events   *dataset.Dataset
	tracking *dataset.Dataset
	writer   ResultsWriter

	eventPeriods *dataset.Column // nil when the events dataset lacks the column
	eventTimes   *dataset.Column

	current        int
	frameOffset    int
	lastSyncOffset int
	synced         map[string]int64

	periodCache map[int64][]int64
}

// NewEngine seeds an engine from the two datasets and the persisted
// synced-results map (nil for a fresh session). The cursor lands on the
// first unsynced event and its offset is re-derived from the persisted
// map, so a reload reproduces the last observed cursor.
func NewEngine(events, tracking *dataset.Dataset, persisted map[string]int64, w ResultsWriter) *Engine {
	e := &Engine{
		events:      events,
		tracking:    tracking,
		writer:      w,
		synced:      make(map[string]int64, len(persisted)),
		periodCache: make(map[int64][]int64),
	}
	for id, t := range persisted {
		e.synced[id] = t
	}
	if events != nil {
		e.eventPeriods, _ = events.Column(match.FieldPeriodID)
		e.eventTimes, _ = events.Column(match.FieldMatchedTime)
	}
	e.current = e.FindFirstUnsynced(0)
	e.frameOffset = e.OffsetForEvent(e.current, 0)
	return e
}

// NumEvents reports the number of rows in the events dataset.
func (e *Engine) NumEvents() int {
	if e.events == nil {
		return 0
	}
	return e.events.NumRows()
}

// State snapshots the cursor.
func (e *Engine) State() State {
	return State{
		CurrentEventIndex: e.current,
		FrameOffset:       e.frameOffset,
		LastSyncOffset:    e.lastSyncOffset,
		SyncedCount:       len(e.synced),
		TotalEvents:       e.NumEvents(),
		Exhausted:         e.current >= e.NumEvents(),
		PeriodHasTracking: e.currentPeriodHasTracking(),
	}
}

// EventIDAt derives the identifier of the event at index.
func (e *Engine) EventIDAt(index int) string {
	return match.EventID(e.events, index)
}

// IsSynced reports whether the event at index has a confirmed time.
// Membership in the synced-results map is the only definition of
// synced status.
func (e *Engine) IsSynced(index int) bool {
	if index < 0 || index >= e.NumEvents() {
		return false
	}
	_, ok := e.synced[e.EventIDAt(index)]
	return ok
}

// FindFirstUnsynced scans forward from start and returns the first
// index whose event id is absent from the synced results, or NumEvents
// when every remaining event is synced. Never returns less than start.
func (e *Engine) FindFirstUnsynced(start int) int {
	if start < 0 {
		start = 0
	}
	n := e.NumEvents()
	for i := start; i < n; i++ {
		if _, ok := e.synced[e.EventIDAt(i)]; !ok {
			return i
		}
	}
	return n
}

// periodTimesFor returns the cached sorted sample times for a period.
// Datasets are immutable, so entries never invalidate.
func (e *Engine) periodTimesFor(periodID int64) []int64 {
	if times, ok := e.periodCache[periodID]; ok {
		return times
	}
	times := PeriodTimes(e.tracking, periodID)
	e.periodCache[periodID] = times
	return times
}

// OffsetForEvent re-derives the frame offset that reproduces the
// confirmed choice for the event at index: the distance in sample
// steps between the nominal-time-matched sample and the confirmed one.
// Unsynced events, out-of-range indices and periods without tracking
// samples all yield fallback unchanged. The synced-results map is the
// only ground truth; offsets are always derivable from it.
func (e *Engine) OffsetForEvent(index, fallback int) int {
	if index < 0 || index >= e.NumEvents() {
		return fallback
	}
	confirmed, ok := e.synced[e.EventIDAt(index)]
	if !ok {
		return fallback
	}
	if e.eventPeriods == nil || e.eventTimes == nil {
		return fallback
	}
	times := e.periodTimesFor(e.eventPeriods.Int(index))
	if len(times) == 0 {
		return fallback
	}
	baseIdx := NearestIndexAtOrAfter(times, e.eventTimes.Int(index))
	syncIdx := NearestIndexAtOrAfter(times, confirmed)
	return syncIdx - baseIdx
}

// clampIndex clamps an index into the valid event range. Out-of-range
// navigation is never an error.
func (e *Engine) clampIndex(index int) int {
	n := e.NumEvents()
	if n == 0 {
		return 0
	}
	if index < 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}

// Advance moves the cursor one event in the given direction and
// re-derives the offset, falling back to the last confirmed offset for
// unsynced destinations.
func (e *Engine) Advance(d Direction) {
	e.Jump(e.current + int(d))
}

// Jump moves the cursor to target, clamped into range, and re-derives
// the offset the same way Advance does.
func (e *Engine) Jump(target int) {
	e.current = e.clampIndex(target)
	e.frameOffset = e.OffsetForEvent(e.current, e.lastSyncOffset)
}

// Skip moves to the next unsynced event without recording anything:
// no synced-results entry is written and the last confirmed offset is
// left untouched.
func (e *Engine) Skip() {
	e.Jump(e.FindFirstUnsynced(e.current + 1))
}

// AdjustOffset nudges the ephemeral frame offset. No clamping happens
// here; the presentation layer bounds what it displays.
func (e *Engine) AdjustOffset(delta int) {
	e.frameOffset += delta
}

// Confirm records trackingTime as the definitive tracking instant for
// the current event, overwriting any prior confirmation, persists the
// full map, seeds the next event's offset from the just-used one and
// advances to the next unsynced event. A persistence failure is
// returned for the operator but does not roll back the in-memory
// state, which stays authoritative; the next mutating write carries
// the complete current map and so self-corrects the durable copy.
func (e *Engine) Confirm(trackingTime int64) error {
	if e.current >= e.NumEvents() {
		return nil
	}
	e.synced[e.EventIDAt(e.current)] = trackingTime
	persistErr := e.persist()

	e.lastSyncOffset = e.frameOffset
	e.current = e.FindFirstUnsynced(e.current + 1)
	e.frameOffset = e.OffsetForEvent(e.current, e.lastSyncOffset)
	return persistErr
}

// ImportResults atomically replaces the synced-results map and resets
// the cursor as if the session had started with the imported map.
// Always a wholesale replacement, never a merge.
func (e *Engine) ImportResults(results map[string]int64) error {
	e.synced = make(map[string]int64, len(results))
	for id, t := range results {
		e.synced[id] = t
	}
	persistErr := e.persist()

	e.lastSyncOffset = 0
	e.current = e.FindFirstUnsynced(0)
	e.frameOffset = e.OffsetForEvent(e.current, 0)
	return persistErr
}

// ExportResults returns a snapshot of the synced-results map.
func (e *Engine) ExportResults() map[string]int64 {
	out := make(map[string]int64, len(e.synced))
	for id, t := range e.synced {
		out[id] = t
	}
	return out
}

func (e *Engine) persist() error {
	if e.writer == nil {
		return nil
	}
	if err := e.writer.SaveSyncedResults(e.ExportResults()); err != nil {
		return fmt.Errorf("persisting synced results: %w", err)
	}
	return nil
}

// CurrentTrackingTime resolves the tracking instant the cursor points
// at: the current event's nominal-matched sample shifted by the frame
// offset, clamped into the period's sample range. The boolean is false
// when the cursor is exhausted or the period has no samples.
func (e *Engine) CurrentTrackingTime() (int64, bool) {
	if e.current >= e.NumEvents() || e.eventTimes == nil {
		return 0, false
	}
	times := e.CurrentPeriodTimes()
	if len(times) == 0 {
		return 0, false
	}
	idx := NearestIndexAtOrAfter(times, e.eventTimes.Int(e.current)) + e.frameOffset
	if idx < 0 {
		idx = 0
	}
	if idx >= len(times) {
		idx = len(times) - 1
	}
	return times[idx], true
}

// CurrentPeriodTimes returns the sorted sample times for the current
// event's period. Empty when the cursor is exhausted or the period has
// no tracking data.
func (e *Engine) CurrentPeriodTimes() []int64 {
	if e.current >= e.NumEvents() || e.eventPeriods == nil {
		return nil
	}
	return e.periodTimesFor(e.eventPeriods.Int(e.current))
}

func (e *Engine) currentPeriodHasTracking() bool {
	return len(e.CurrentPeriodTimes()) > 0
}
