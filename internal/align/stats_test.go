package align

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOffsetStats(t *testing.T) {
	events := eventsFixture(t,
		[]string{"E1", "E2", "E3", "E4"},
		[]int64{1, 1, 2, 2},
		[]int64{1000, 2000, 500, 800},
	)
	tracking := trackingFixture(t, map[int64][]int64{
		1: steps(900, 2050),
		2: steps(400, 900),
	})
	// Offsets: E1 +2, E2 -1, E3 +4; E4 unsynced.
	e := NewEngine(events, tracking, map[string]int64{
		"E1": 1100,
		"E2": 1950,
		"E3": 700,
	}, nil)

	s := e.OffsetStats()
	if s.Count != 3 {
		t.Fatalf("Count = %d, want 3", s.Count)
	}
	if math.Abs(s.Mean-5.0/3.0) > 1e-9 {
		t.Errorf("Mean = %v, want %v", s.Mean, 5.0/3.0)
	}
	if s.Min != -1 || s.Max != 4 {
		t.Errorf("Min/Max = %d/%d, want -1/4", s.Min, s.Max)
	}
	if s.StdDev <= 0 {
		t.Errorf("StdDev = %v, want > 0", s.StdDev)
	}

	byPeriod := e.OffsetStatsByPeriod()
	if len(byPeriod) != 2 {
		t.Fatalf("periods = %v, want 2 entries", byPeriod)
	}
	if p1 := byPeriod[1]; p1.Count != 2 || p1.Min != -1 || p1.Max != 2 {
		t.Errorf("period 1 stats = %+v", p1)
	}
	if p2 := byPeriod[2]; p2.Count != 1 || p2.Mean != 4 || p2.StdDev != 0 {
		t.Errorf("period 2 stats = %+v", p2)
	}
}

func TestConfirmedOffsetSamples(t *testing.T) {
	events := eventsFixture(t,
		[]string{"E1", "E2", "E3"},
		[]int64{1, 1, 2},
		[]int64{1000, 2000, 500},
	)
	tracking := trackingFixture(t, map[int64][]int64{
		1: steps(900, 2050),
		2: steps(400, 900),
	})
	e := NewEngine(events, tracking, map[string]int64{
		"E1": 1100,
		"E3": 700,
	}, nil)

	got := e.ConfirmedOffsetSamples()
	want := []OffsetSample{
		{EventIndex: 0, PeriodID: 1, Offset: 2},
		{EventIndex: 2, PeriodID: 2, Offset: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestOffsetStatsEmptyAndUnresolvable(t *testing.T) {
	e := twoEventEngine(t, nil, nil)
	s := e.OffsetStats()
	if s.Count != 0 || s.Mean != 0 || s.StdDev != 0 {
		t.Errorf("empty stats = %+v", s)
	}

	// Stats always marshal to plain numbers, never NaN.
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal empty stats: %v", err)
	}
	if strings.Contains(string(data), "NaN") {
		t.Errorf("stats JSON leaked NaN: %s", data)
	}

	// A synced event whose period has no samples contributes nothing.
	events := eventsFixture(t, []string{"E1"}, []int64{9}, []int64{1000})
	tracking := trackingFixture(t, map[int64][]int64{1: {100}})
	e2 := NewEngine(events, tracking, map[string]int64{"E1": 1300}, nil)
	if got := e2.OffsetStats().Count; got != 0 {
		t.Errorf("unresolvable offset counted: %d", got)
	}
}
