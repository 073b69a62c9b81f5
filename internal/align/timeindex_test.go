package align

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kickoff-data/pitchsync/internal/dataset"
	"github.com/kickoff-data/pitchsync/internal/match"
)

// trackingFixture builds a minimal tracking dataset from per-period
// sample times. Times may repeat and arrive unsorted, as they do in the
// raw feed where every player shares each sampled instant.
func trackingFixture(t *testing.T, samples map[int64][]int64) *dataset.Dataset {
	t.Helper()
	var periods, times []int64
	for p, ts := range samples {
		for _, ts := range ts {
			periods = append(periods, p)
			times = append(times, ts)
		}
	}
	ds, err := dataset.New(
		[]string{match.FieldPeriodID, match.FieldMatchedTime},
		map[string]*dataset.Column{
			match.FieldPeriodID:    dataset.IntCol(periods),
			match.FieldMatchedTime: dataset.IntCol(times),
		},
	)
	if err != nil {
		t.Fatalf("building tracking fixture: %v", err)
	}
	return ds
}

func TestPeriodTimes(t *testing.T) {
	tracking := trackingFixture(t, map[int64][]int64{
		1: {1000, 900, 950, 1000, 900, 1050},
		2: {200, 100},
	})

	got := PeriodTimes(tracking, 1)
	want := []int64{900, 950, 1000, 1050}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PeriodTimes(1) (-want +got):\n%s", diff)
	}

	if got := PeriodTimes(tracking, 3); got != nil {
		t.Errorf("PeriodTimes for absent period = %v, want nil", got)
	}
	if got := PeriodTimes(nil, 1); got != nil {
		t.Errorf("PeriodTimes(nil) = %v, want nil", got)
	}

	// A dataset without the time column yields nil rather than failing.
	sub, err := tracking.Select(match.FieldPeriodID)
	if err != nil {
		t.Fatal(err)
	}
	if got := PeriodTimes(sub, 1); got != nil {
		t.Errorf("PeriodTimes without time column = %v, want nil", got)
	}
}

func TestNearestIndexAtOrAfter(t *testing.T) {
	times := []int64{900, 950, 1000, 1050, 1100}

	tests := []struct {
		target int64
		want   int
	}{
		{900, 0},   // exact first
		{1000, 2},  // exact middle
		{951, 2},   // between samples rounds up
		{400, 0},   // before first
		{1100, 4},  // exact last
		{99999, 4}, // past the end clamps to last
	}
	for _, tc := range tests {
		if got := NearestIndexAtOrAfter(times, tc.target); got != tc.want {
			t.Errorf("NearestIndexAtOrAfter(%d) = %d, want %d", tc.target, got, tc.want)
		}
	}

	if got := NearestIndexAtOrAfter(nil, 100); got != -1 {
		t.Errorf("NearestIndexAtOrAfter(empty) = %d, want -1", got)
	}
}
