package chartdata

import (
	"github.com/pythonsolar/harumiki-farm-v2/pkg/sensor"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/telemetry"
)

// Build runs the aggregation pipeline for one metric: filter each fetched
// stream, align everything onto one timeline, downsample to the point
// budget, and attach the per-series rendering metadata.
//
// An unavailable series contributes no timestamps and an all-gap value
// sequence; it still appears in the output so the frontend can render its
// legend entry and empty state.
func Build(metric sensor.Metric, results []telemetry.SeriesResult, budget int) *ChartData {
	streams := make([][]Sample, len(results))
	for i, res := range results {
		if res.Unavailable {
			continue // nil stream: no timestamps, all gaps after alignment
		}
		streams[i] = Filter(res.Readings, res.Series)
	}

	timeline, aligned := Align(streams)
	timeline, aligned = Downsample(timeline, aligned, budget)

	datasets := make([]Dataset, len(results))
	for i, res := range results {
		datasets[i] = Dataset{
			Key:         res.Series.Key,
			Label:       res.Series.Label,
			Unit:        res.Series.Unit,
			Color:       res.Series.Color,
			Values:      aligned[i],
			Unavailable: res.Unavailable,
		}
	}

	return &ChartData{
		Metric:   metric.ID,
		Timeline: timeline,
		Datasets: datasets,
	}
}
