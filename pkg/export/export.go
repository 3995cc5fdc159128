// Package export renders aggregated chart data as downloadable CSV or
// JSON files for offline analysis.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/chartdata"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/sensor"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/telemetry"
)

// Exporter fetches and aggregates one metric's data and writes it out.
//
// Exports bypass the response cache on purpose: they run the full
// pipeline without downsampling so the file carries every aligned point,
// not the chart-budgeted subset.
type Exporter struct {
	registry *sensor.Registry
	fetcher  *telemetry.Fetcher
}

// NewExporter creates an exporter on top of the shared fetcher.
func NewExporter(registry *sensor.Registry, fetcher *telemetry.Fetcher) *Exporter {
	return &Exporter{registry: registry, fetcher: fetcher}
}

// Options configures one export run.
type Options struct {
	MetricID string
	Start    time.Time
	End      time.Time

	// Format: "csv" or "json".
	Format string
}

// Result contains stats about a completed export.
type Result struct {
	Metric      string `json:"metric"`
	Rows        int    `json:"rows"`
	SeriesCount int    `json:"series_count"`
	TimeRange   string `json:"time_range"`
	Format      string `json:"format"`
}

func (e *Exporter) aggregate(ctx context.Context, opts Options) (*chartdata.ChartData, error) {
	metric, ok := e.registry.Metric(opts.MetricID)
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", opts.MetricID)
	}

	results := e.fetcher.FetchRange(ctx, metric.Series, opts.Start, opts.End)
	return chartdata.Build(metric, results, 0), nil
}

// ToCSV writes one row per shared-timeline entry with one column per
// series. Gaps become empty cells so spreadsheet tools chart them as
// breaks rather than zeroes.
func (e *Exporter) ToCSV(ctx context.Context, w io.Writer, opts Options) (*Result, error) {
	chart, err := e.aggregate(ctx, opts)
	if err != nil {
		return nil, err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"timestamp"}
	for _, ds := range chart.Datasets {
		header = append(header, ds.Key)
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, ts := range chart.Timeline {
		row := make([]string, 0, len(header))
		row = append(row, ts.Format(time.RFC3339))
		for _, ds := range chart.Datasets {
			if v := ds.Values[i]; v != nil {
				row = append(row, strconv.FormatFloat(*v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return e.result(chart, opts, "csv"), nil
}

// ToJSON writes the aggregated chart with an export metadata envelope.
func (e *Exporter) ToJSON(ctx context.Context, w io.Writer, opts Options) (*Result, error) {
	chart, err := e.aggregate(ctx, opts)
	if err != nil {
		return nil, err
	}

	payload := struct {
		Metadata struct {
			ExportedAt time.Time `json:"exported_at"`
			Metric     string    `json:"metric"`
			StartTime  time.Time `json:"start_time"`
			EndTime    time.Time `json:"end_time"`
			RowCount   int       `json:"row_count"`
		} `json:"metadata"`
		Timeline []time.Time     `json:"timeline"`
		Datasets []exportDataset `json:"datasets"`
	}{
		Timeline: chart.Timeline,
		Datasets: make([]exportDataset, 0, len(chart.Datasets)),
	}
	payload.Metadata.ExportedAt = time.Now()
	payload.Metadata.Metric = chart.Metric
	payload.Metadata.StartTime = opts.Start
	payload.Metadata.EndTime = opts.End
	payload.Metadata.RowCount = len(chart.Timeline)

	for _, ds := range chart.Datasets {
		payload.Datasets = append(payload.Datasets, exportDataset{
			Key:         ds.Key,
			Label:       ds.Label,
			Unit:        ds.Unit,
			Values:      ds.Values,
			Unavailable: ds.Unavailable,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return e.result(chart, opts, "json"), nil
}

type exportDataset struct {
	Key         string     `json:"key"`
	Label       string     `json:"label,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Values      []*float64 `json:"values"`
	Unavailable bool       `json:"unavailable,omitempty"`
}

func (e *Exporter) result(chart *chartdata.ChartData, opts Options, format string) *Result {
	return &Result{
		Metric:      chart.Metric,
		Rows:        len(chart.Timeline),
		SeriesCount: len(chart.Datasets),
		TimeRange:   fmt.Sprintf("%s to %s", opts.Start.Format(time.RFC3339), opts.End.Format(time.RFC3339)),
		Format:      format,
	}
}
