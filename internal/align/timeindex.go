// Package align implements the alignment engine: the cursor over the
// events dataset, the per-period tracking time index, frame-offset
// computation and the confirmed-synchronization bookkeeping.
package align

import (
	"sort"

	"github.com/kickoff-data/pitchsync/internal/dataset"
	"github.com/kickoff-data/pitchsync/internal/match"
)

// PeriodTimes returns the sorted, duplicate-free sample times present
// in the tracking dataset for the given period. A dataset without the
// period or time columns yields nil, the same as a period with no
// samples.
func PeriodTimes(tracking *dataset.Dataset, periodID int64) []int64 {
	if tracking == nil {
		return nil
	}
	periods, ok := tracking.Column(match.FieldPeriodID)
	if !ok {
		return nil
	}
	times, ok := tracking.Column(match.FieldMatchedTime)
	if !ok {
		return nil
	}

	seen := make(map[int64]struct{})
	for i := 0; i < tracking.NumRows(); i++ {
		if periods.Int(i) != periodID {
			continue
		}
		seen[times.Int(i)] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]int64, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NearestIndexAtOrAfter returns the smallest index i with
// times[i] >= target. A target past the last sample clamps to the last
// valid index rather than reporting not-found. Returns -1 only for an
// empty slice.
func NearestIndexAtOrAfter(times []int64, target int64) int {
	if len(times) == 0 {
		return -1
	}
	i := sort.Search(len(times), func(i int) bool { return times[i] >= target })
	if i == len(times) {
		return len(times) - 1
	}
	return i
}
