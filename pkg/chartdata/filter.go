package chartdata

import (
	"github.com/pythonsolar/harumiki-farm-v2/pkg/sensor"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/telemetry"
)

// Filter reclassifies sentinel-coded and out-of-range readings as gaps.
// It runs before alignment so that "no data" and "invalid data" are
// indistinguishable downstream: both break the plotted line, and a raw
// sentinel like -999 can never be averaged or drawn as a measurement.
func Filter(readings []telemetry.Reading, s sensor.Series) []Sample {
	samples := make([]Sample, 0, len(readings))
	for _, r := range readings {
		sm := Sample{Time: r.Timestamp}
		if !r.Missing && !sensor.IsSentinel(r.Value) && s.InRange(r.Value) {
			v := r.Value
			sm.Value = &v
		}
		samples = append(samples, sm)
	}
	return samples
}
