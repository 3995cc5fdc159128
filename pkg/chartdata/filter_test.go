package chartdata

import (
	"testing"
	"time"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/sensor"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/telemetry"
)

var pmSeries = sensor.Series{
	Key: "pm-gh1", SensorID: "PM25_R1", Field: "atmos",
	Unit: "µg/m³", Min: 0, Max: 500,
}

func TestFilter_SentinelsBecomeGaps(t *testing.T) {
	now := time.Now()
	readings := []telemetry.Reading{
		{Timestamp: now, Value: 12.5},
		{Timestamp: now.Add(time.Hour), Value: -1},
		{Timestamp: now.Add(2 * time.Hour), Value: -999},
		{Timestamp: now.Add(3 * time.Hour), Value: 30},
	}

	samples := Filter(readings, pmSeries)
	if len(samples) != 4 {
		t.Fatalf("Expected 4 samples, got %d", len(samples))
	}

	if samples[0].Value == nil || *samples[0].Value != 12.5 {
		t.Errorf("Expected 12.5 to pass through, got %v", samples[0].Value)
	}
	if samples[1].Value != nil {
		t.Errorf("Expected -1 to become a gap, got %v", *samples[1].Value)
	}
	if samples[2].Value != nil {
		t.Errorf("Expected -999 to become a gap, got %v", *samples[2].Value)
	}
	if samples[3].Value == nil {
		t.Error("Expected 30 to pass through")
	}
}

func TestFilter_OutOfRangeBecomesGap(t *testing.T) {
	now := time.Now()
	readings := []telemetry.Reading{
		{Timestamp: now, Value: 650},   // above max
		{Timestamp: now, Value: -0.01}, // below min
		{Timestamp: now, Value: 0},     // boundary values are valid
		{Timestamp: now, Value: 500},
	}

	samples := Filter(readings, pmSeries)
	if samples[0].Value != nil {
		t.Error("Expected above-max reading to become a gap")
	}
	if samples[1].Value != nil {
		t.Error("Expected below-min reading to become a gap")
	}
	if samples[2].Value == nil || samples[3].Value == nil {
		t.Error("Expected boundary readings to pass through")
	}
}

func TestFilter_MissingRecordKeepsTimestamp(t *testing.T) {
	now := time.Now()
	samples := Filter([]telemetry.Reading{{Timestamp: now, Missing: true}}, pmSeries)

	if len(samples) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(samples))
	}
	if samples[0].Value != nil {
		t.Error("Expected missing record to produce a gap")
	}
	if !samples[0].Time.Equal(now) {
		t.Error("Expected gap to keep the record timestamp")
	}
}

func TestFilter_Empty(t *testing.T) {
	if got := Filter(nil, pmSeries); len(got) != 0 {
		t.Errorf("Expected no samples, got %d", len(got))
	}
}
