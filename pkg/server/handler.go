package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/cache"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/chartdata"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/httpx"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/sensor"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/telemetry"
)

const dateLayout = "2006-01-02"

// Handler serves the chart data API.
type Handler struct {
	registry *sensor.Registry
	fetcher  *telemetry.Fetcher
	cache    cache.Cache

	// now is injectable for TTL-class tests.
	now func() time.Time
}

// NewHandler creates the chart data handler.
func NewHandler(registry *sensor.Registry, fetcher *telemetry.Fetcher, store cache.Cache) *Handler {
	return &Handler{
		registry: registry,
		fetcher:  fetcher,
		cache:    store,
		now:      time.Now,
	}
}

// Fetcher exposes the shared upstream fetcher for background tasks.
func (h *Handler) Fetcher() *telemetry.Fetcher {
	return h.fetcher
}

// ChartResponse is the envelope the dashboard frontend expects. Data
// maps each series key to its aligned values and carries one shared
// "<first-key>-times" entry with the RFC3339 timeline.
type ChartResponse struct {
	Status  string                 `json:"status"`
	Data    map[string]interface{} `json:"data"`
	Message string                 `json:"message,omitempty"`
}

// HandleChartData handles GET /chart-data
// Query params:
//   - metric: metric ID (required)
//   - start_date, end_date: YYYY-MM-DD, end inclusive
//   - month, year: alternative to explicit dates, selects a calendar month
func (h *Handler) HandleChartData(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	metricID := query.Get("metric")
	metric, ok := h.registry.Metric(metricID)
	if !ok {
		httpx.RespondErrorString(w, http.StatusBadRequest, fmt.Sprintf("unknown metric %q", metricID))
		return
	}

	start, end, err := parseWindow(query.Get("start_date"), query.Get("end_date"), query.Get("month"), query.Get("year"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}

	key := cache.Key(metric.ID, metric.SensorSetID(), start, end)
	if payload, hit := h.cache.Get(key); hit {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
		return
	}

	results := h.fetcher.FetchRange(r.Context(), metric.Series, start, end)
	chart := chartdata.Build(metric, results, config.MaxChartPoints)

	response := serializeChart(chart)
	payload, err := json.Marshal(response)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	// A fully failed fetch is not worth caching; the next request
	// should retry upstream rather than pin the outage for a TTL.
	if !allUnavailable(results) {
		h.cache.Set(key, payload, h.ttlClass(start, end))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// HandleLatest handles GET /latest
// Returns the newest reading per series of the requested metric.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	metricID := r.URL.Query().Get("metric")
	metric, ok := h.registry.Metric(metricID)
	if !ok {
		httpx.RespondErrorString(w, http.StatusBadRequest, fmt.Sprintf("unknown metric %q", metricID))
		return
	}

	results := h.fetcher.FetchLatest(r.Context(), metric.Series)

	data := make(map[string]interface{}, len(results))
	for _, res := range results {
		if res.Unavailable || res.Reading.Missing || sensor.IsSentinel(res.Reading.Value) || !res.Series.InRange(res.Reading.Value) {
			data[res.Series.Key] = nil
			continue
		}
		data[res.Series.Key] = map[string]interface{}{
			"value": res.Reading.Value,
			"time":  res.Reading.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	httpx.RespondJSON(w, http.StatusOK, ChartResponse{Status: "success", Data: data})
}

// MetricInfo describes one chartable metric for the frontend picker.
type MetricInfo struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Unit   string   `json:"unit"`
	Series []string `json:"series"`
}

// HandleMetricsList handles GET /metrics/list
func (h *Handler) HandleMetricsList(w http.ResponseWriter, r *http.Request) {
	metrics := h.registry.Metrics()
	infos := make([]MetricInfo, 0, len(metrics))
	for _, m := range metrics {
		keys := make([]string, 0, len(m.Series))
		for _, s := range m.Series {
			keys = append(keys, s.Key)
		}
		infos = append(infos, MetricInfo{ID: m.ID, Title: m.Title, Unit: m.Unit, Series: keys})
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"metrics": infos,
	})
}

// serializeChart flattens aggregated chart data into the frontend's map
// shape. The shared timeline is emitted once, under "<first-key>-times";
// series sharing one timeline share that entry. Gap markers serialize
// as null.
func serializeChart(chart *chartdata.ChartData) ChartResponse {
	data := make(map[string]interface{}, len(chart.Datasets)+1)

	times := make([]string, len(chart.Timeline))
	for i, ts := range chart.Timeline {
		times[i] = ts.UTC().Format(time.RFC3339)
	}

	for i, ds := range chart.Datasets {
		data[ds.Key] = ds.Values
		if i == 0 {
			data[ds.Key+"-times"] = times
		}
	}

	response := ChartResponse{Status: "success", Data: data}
	if chart.Empty() {
		response.Message = "no data available for the requested period"
	}
	return response
}

// ttlClass picks the cache class: windows touching the current month can
// still grow upstream, fully historical windows are immutable.
func (h *Handler) ttlClass(start, end time.Time) cache.TTLClass {
	now := h.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if end.Before(monthStart) {
		return cache.Historical
	}
	return cache.Current
}

func allUnavailable(results []telemetry.SeriesResult) bool {
	for _, res := range results {
		if !res.Unavailable {
			return false
		}
	}
	return len(results) > 0
}

// parseWindow resolves either explicit start_date/end_date or a
// month/year pair into an inclusive UTC window.
func parseWindow(startStr, endStr, monthStr, yearStr string) (time.Time, time.Time, error) {
	if monthStr != "" || yearStr != "" {
		return parseMonthWindow(monthStr, yearStr)
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q, expected YYYY-MM-DD", startStr)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q, expected YYYY-MM-DD", endStr)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must not be after end_date")
	}

	// end_date is inclusive: extend to the end of that day.
	end = end.Add(24*time.Hour - time.Second)

	if end.Sub(start) > time.Duration(config.MaxQueryDays)*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("date range too large, maximum is %d days", config.MaxQueryDays)
	}
	return start, end, nil
}

func parseMonthWindow(monthStr, yearStr string) (time.Time, time.Time, error) {
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q", monthStr)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2200 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid year %q", yearStr)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end, nil
}
