// Package chartdata turns raw per-sensor readings into chart-ready
// datasets: sentinel/range filtering, alignment of independently-sampled
// streams onto one shared timeline, and deterministic downsampling.
package chartdata

import "time"

// Sample is one filtered observation. A nil Value is a gap marker: no
// reading, or a reading reclassified as invalid. Gaps keep their
// timestamps so the shared timeline still covers them.
type Sample struct {
	Time  time.Time
	Value *float64
}

// Dataset is one series resampled onto the request's shared timeline,
// plus the static rendering metadata the frontend needs.
type Dataset struct {
	Key   string
	Label string
	Unit  string
	Color string

	// Values has exactly len(Timeline) positions; nil means gap.
	Values []*float64

	// Unavailable marks a series whose upstream fetch failed outright.
	Unavailable bool
}

// ChartData is the fully aggregated result of one chart request: a
// shared strictly-increasing timeline and one dataset per sensor series.
type ChartData struct {
	Metric   string
	Timeline []time.Time
	Datasets []Dataset
}

// Empty reports whether no series produced any real value.
func (c *ChartData) Empty() bool {
	for _, ds := range c.Datasets {
		for _, v := range ds.Values {
			if v != nil {
				return false
			}
		}
	}
	return true
}
