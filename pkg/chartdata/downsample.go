package chartdata

import "time"

// Downsample caps the timeline and its aligned series at budget points by
// selecting indices at a uniform stride, always keeping the first and
// last points. It is pure selection -- never interpolation or averaging --
// so every returned value is a literal measured reading and displayed
// min/max/anomalies stay truthful. Input under budget passes through
// unchanged.
//
// Budgets below 2 are raised to 2: the first and last points are always
// retained, so two points is the smallest possible selection. A zero or
// negative budget disables downsampling entirely.
func Downsample(timeline []time.Time, series [][]*float64, budget int) ([]time.Time, [][]*float64) {
	n := len(timeline)
	if budget <= 0 || n <= budget {
		return timeline, series
	}
	if budget < 2 {
		budget = 2 // first and last are always retained
	}

	indices := selectIndices(n, budget)

	outTimeline := make([]time.Time, len(indices))
	for i, idx := range indices {
		outTimeline[i] = timeline[idx]
	}

	outSeries := make([][]*float64, len(series))
	for si, values := range series {
		out := make([]*float64, len(indices))
		for i, idx := range indices {
			out[i] = values[idx]
		}
		outSeries[si] = out
	}

	return outTimeline, outSeries
}

// selectIndices picks at most budget indices from [0, n): every stride-th
// index plus the final one. stride is rounded up so the count never
// exceeds budget.
func selectIndices(n, budget int) []int {
	stride := (n - 1 + budget - 2) / (budget - 1) // ceil((n-1)/(budget-1))
	if stride < 1 {
		stride = 1
	}

	indices := make([]int, 0, budget)
	for i := 0; i < n-1; i += stride {
		indices = append(indices, i)
	}
	indices = append(indices, n-1)
	return indices
}
