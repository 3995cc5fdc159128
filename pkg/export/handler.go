package export

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/httpx"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/sensor"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/telemetry"
)

// Handler serves the export HTTP endpoint.
type Handler struct {
	exporter *Exporter
	registry *sensor.Registry
}

// NewHandler creates a new export handler.
func NewHandler(registry *sensor.Registry, fetcher *telemetry.Fetcher) *Handler {
	return &Handler{
		exporter: NewExporter(registry, fetcher),
		registry: registry,
	}
}

// HandleExport handles GET /export
// Query params:
//   - metric: metric ID (required)
//   - start_date, end_date: YYYY-MM-DD (required)
//   - format: "csv" or "json" (default: csv)
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	metricID := query.Get("metric")
	if metricID == "" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "metric parameter is required")
		return
	}
	if _, ok := h.registry.Metric(metricID); !ok {
		httpx.RespondErrorString(w, http.StatusNotFound, fmt.Sprintf("unknown metric %q", metricID))
		return
	}

	format := query.Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "invalid format, must be 'csv' or 'json'")
		return
	}

	start, err := time.Parse("2006-01-02", query.Get("start_date"))
	if err != nil {
		httpx.RespondErrorString(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", query.Get("end_date"))
	if err != nil {
		httpx.RespondErrorString(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
		return
	}
	// end_date is inclusive: extend to the end of that day.
	end = end.Add(24*time.Hour - time.Second)

	if end.Before(start) {
		httpx.RespondErrorString(w, http.StatusBadRequest, "start_date must not be after end_date")
		return
	}
	if end.Sub(start) > config.MaxExportWindow {
		httpx.RespondErrorString(w, http.StatusBadRequest,
			fmt.Sprintf("export window too large, maximum is %d days", int(config.MaxExportWindow.Hours()/24)))
		return
	}

	opts := Options{MetricID: metricID, Start: start, End: end, Format: format}

	filename := fmt.Sprintf("%s-%s-%s.%s", metricID, start.Format("20060102"), end.Format("20060102"), format)
	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	var result *Result
	if format == "csv" {
		result, err = h.exporter.ToCSV(r.Context(), w, opts)
	} else {
		result, err = h.exporter.ToJSON(r.Context(), w, opts)
	}
	if err != nil {
		// Headers may already be out; log and abort the stream.
		log.Printf("Export failed for metric %s: %v", metricID, err)
		return
	}

	log.Printf("Exported %d rows of %s (%s) covering %s", result.Rows, result.Metric, result.Format, result.TimeRange)
}
