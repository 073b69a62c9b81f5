package align

import (
	"gonum.org/v1/gonum/stat"
)

// OffsetStats summarizes re-derived frame offsets over confirmed
// events, in tracking-sample steps. Consecutive events in a match tend
// to need similar correction, so drift in these numbers is what the
// operator watches for.
type OffsetStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// OffsetStats re-derives the offset of every confirmed event and
// summarizes them. Synced events whose period has no tracking samples
// cannot produce an offset and are excluded from the count.
func (e *Engine) OffsetStats() OffsetStats {
	return summarize(e.confirmedOffsets(-1))
}

// OffsetStatsByPeriod groups the summary by event period.
func (e *Engine) OffsetStatsByPeriod() map[int64]OffsetStats {
	out := make(map[int64]OffsetStats)
	if e.eventPeriods == nil {
		return out
	}
	seen := make(map[int64]bool)
	for i := 0; i < e.NumEvents(); i++ {
		p := e.eventPeriods.Int(i)
		if seen[p] {
			continue
		}
		seen[p] = true
		if s := summarize(e.confirmedOffsets(p)); s.Count > 0 {
			out[p] = s
		}
	}
	return out
}

// OffsetSample is one confirmed event's re-derived offset, keyed by
// event index.
type OffsetSample struct {
	EventIndex int
	PeriodID   int64
	Offset     int
}

// ConfirmedOffsetSamples returns one sample per synced event whose
// offset can be re-derived, in event order.
func (e *Engine) ConfirmedOffsetSamples() []OffsetSample {
	var samples []OffsetSample
	for i := 0; i < e.NumEvents(); i++ {
		if !e.IsSynced(i) {
			continue
		}
		const unresolvable = int(^uint(0) >> 1)
		off := e.OffsetForEvent(i, unresolvable)
		if off == unresolvable {
			continue
		}
		sample := OffsetSample{EventIndex: i, Offset: off}
		if e.eventPeriods != nil {
			sample.PeriodID = e.eventPeriods.Int(i)
		}
		samples = append(samples, sample)
	}
	return samples
}

// confirmedOffsets collects re-derived offsets for synced events,
// restricted to periodID unless it is negative.
func (e *Engine) confirmedOffsets(periodID int64) []float64 {
	var offsets []float64
	for i := 0; i < e.NumEvents(); i++ {
		if !e.IsSynced(i) {
			continue
		}
		if periodID >= 0 && (e.eventPeriods == nil || e.eventPeriods.Int(i) != periodID) {
			continue
		}
		// Sentinel fallbacks mark events whose period has no samples.
		const unresolvable = int(^uint(0) >> 1)
		off := e.OffsetForEvent(i, unresolvable)
		if off == unresolvable {
			continue
		}
		offsets = append(offsets, float64(off))
	}
	return offsets
}

func summarize(offsets []float64) OffsetStats {
	s := OffsetStats{Count: len(offsets)}
	if s.Count == 0 {
		return s
	}
	s.Mean = stat.Mean(offsets, nil)
	if s.Count > 1 {
		s.StdDev = stat.StdDev(offsets, nil)
	}
	min, max := offsets[0], offsets[0]
	for _, v := range offsets[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	s.Min = int(min)
	s.Max = int(max)
	return s
}
