package chartdata

import (
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func sampleAt(ts time.Time, v float64) Sample {
	return Sample{Time: ts, Value: fp(v)}
}

func TestAlign_UnionTimeline(t *testing.T) {
	base := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	a := []Sample{sampleAt(base, 1), sampleAt(base.Add(2*time.Hour), 2)}
	b := []Sample{sampleAt(base.Add(time.Hour), 10), sampleAt(base.Add(2*time.Hour), 20)}

	timeline, series := Align([][]Sample{a, b})

	if len(timeline) != 3 {
		t.Fatalf("Expected 3 timeline entries, got %d", len(timeline))
	}
	for i := 1; i < len(timeline); i++ {
		if !timeline[i].After(timeline[i-1]) {
			t.Fatalf("Timeline not strictly increasing at index %d", i)
		}
	}

	// Stream a has no sample at base+1h, stream b none at base.
	if series[0][1] != nil {
		t.Error("Expected gap for stream a at base+1h")
	}
	if series[1][0] != nil {
		t.Error("Expected gap for stream b at base")
	}
	if series[0][2] == nil || *series[0][2] != 2 {
		t.Error("Expected stream a value 2 at base+2h")
	}
	if series[1][2] == nil || *series[1][2] != 20 {
		t.Error("Expected stream b value 20 at base+2h")
	}
}

func TestAlign_LengthParity(t *testing.T) {
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	streams := [][]Sample{
		{sampleAt(base, 1)},
		{sampleAt(base.Add(time.Minute), 2), sampleAt(base.Add(2*time.Minute), 3)},
		nil,
	}

	timeline, series := Align(streams)
	if len(series) != len(streams) {
		t.Fatalf("Expected %d output series, got %d", len(streams), len(series))
	}
	for i, s := range series {
		if len(s) != len(timeline) {
			t.Errorf("Series %d length %d != timeline length %d", i, len(s), len(timeline))
		}
	}
}

func TestAlign_DuplicateTimestampLastWins(t *testing.T) {
	ts := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	timeline, series := Align([][]Sample{{sampleAt(ts, 1), sampleAt(ts, 2)}})

	if len(timeline) != 1 {
		t.Fatalf("Expected deduplicated timeline of 1, got %d", len(timeline))
	}
	if series[0][0] == nil || *series[0][0] != 2 {
		t.Errorf("Expected later sample to win, got %v", series[0][0])
	}
}

func TestAlign_Idempotent(t *testing.T) {
	base := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	streams := [][]Sample{
		{sampleAt(base, 1), {Time: base.Add(time.Hour)}, sampleAt(base.Add(2*time.Hour), 3)},
		{sampleAt(base.Add(30*time.Minute), 5)},
	}

	timeline1, series1 := Align(streams)

	// Feed the aligned output back in as samples.
	realigned := make([][]Sample, len(series1))
	for i, vals := range series1 {
		for j, v := range vals {
			realigned[i] = append(realigned[i], Sample{Time: timeline1[j], Value: v})
		}
	}
	timeline2, series2 := Align(realigned)

	if len(timeline2) != len(timeline1) {
		t.Fatalf("Realigned timeline length %d != %d", len(timeline2), len(timeline1))
	}
	for i := range timeline1 {
		if !timeline2[i].Equal(timeline1[i]) {
			t.Fatalf("Timeline differs at %d", i)
		}
	}
	for i := range series1 {
		for j := range series1[i] {
			a, b := series1[i][j], series2[i][j]
			if (a == nil) != (b == nil) {
				t.Fatalf("Gap mismatch at series %d index %d", i, j)
			}
			if a != nil && *a != *b {
				t.Fatalf("Value mismatch at series %d index %d", i, j)
			}
		}
	}
}

func TestAlign_Empty(t *testing.T) {
	timeline, series := Align(nil)
	if len(timeline) != 0 || len(series) != 0 {
		t.Error("Expected empty output for no streams")
	}

	timeline, series = Align([][]Sample{nil, nil})
	if len(timeline) != 0 {
		t.Error("Expected empty timeline for all-empty streams")
	}
	if len(series) != 2 {
		t.Errorf("Expected 2 empty series, got %d", len(series))
	}
}
