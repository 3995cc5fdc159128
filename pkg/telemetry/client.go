// Package telemetry wraps the upstream sensor telemetry API: per-sensor
// raw reading retrieval over HTTP, plus a bounded concurrent fetcher for
// pulling many sensors in one chart request.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
)

// Reading is one raw timestamped value for a sensor field. Timestamps are
// not evenly spaced and are not aligned across sensors.
type Reading struct {
	Timestamp time.Time
	Value     float64

	// Missing marks a record the upstream returned with no data payload.
	Missing bool
}

// Client retrieves raw readings from the upstream telemetry source.
type Client interface {
	// FetchRange returns all readings for one sensor field in [start, end].
	FetchRange(ctx context.Context, sensorID, field string, start, end time.Time) ([]Reading, error)

	// FetchLatest returns the most recent reading for one sensor field.
	FetchLatest(ctx context.Context, sensorID, field string) (Reading, error)
}

// HTTPClient is the production Client over the remote telemetry HTTP API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a client for the telemetry API at baseURL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: config.UpstreamTimeout,
		},
	}
}

// upstreamRecord mirrors one entry of the upstream "result" array.
type upstreamRecord struct {
	Datetime string                     `json:"datetime"`
	Data     map[string]json.RawMessage `json:"data"`
}

type upstreamResponse struct {
	Status string           `json:"status"`
	Result []upstreamRecord `json:"result"`
}

// FetchRange retrieves raw readings for one sensor over a date range.
// Transient failures are retried; records the upstream marks as having no
// data payload come back with Missing set so the filter turns them into
// gaps rather than dropping their timestamps.
func (c *HTTPClient) FetchRange(ctx context.Context, sensorID, field string, start, end time.Time) ([]Reading, error) {
	q := url.Values{
		"sensor_id": {sensorID},
		"start":     {start.Format("2006-01-02T15:04:05")},
		"end":       {end.Format("2006-01-02T15:04:05")},
	}

	var lastErr error
	for attempt := 0; attempt < config.UpstreamRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(config.UpstreamRetryDelay):
			}
		}

		resp, err := c.get(ctx, "/get-data", q)
		if err != nil {
			lastErr = err
			continue
		}
		// A 200 with a non-ok status is an upstream soft failure, not
		// "no data in range"; it must surface as unavailable, not as an
		// empty chart.
		if resp.Status != "ok" {
			lastErr = fmt.Errorf("upstream status %q for %s", resp.Status, sensorID)
			continue
		}

		readings := make([]Reading, 0, len(resp.Result))
		for _, rec := range resp.Result {
			ts, err := parseUpstreamTime(rec.Datetime)
			if err != nil {
				continue // skip malformed record, keep the rest
			}

			r := Reading{Timestamp: ts}
			if rec.Data == nil {
				r.Missing = true
			} else if raw, ok := rec.Data[field]; ok {
				if err := json.Unmarshal(raw, &r.Value); err != nil {
					r.Missing = true
				}
			} else {
				r.Missing = true
			}
			readings = append(readings, r)
		}
		return readings, nil
	}

	return nil, fmt.Errorf("fetch %s after %d attempts: %w", sensorID, config.UpstreamRetries, lastErr)
}

// FetchLatest retrieves the most recent reading for one sensor field.
func (c *HTTPClient) FetchLatest(ctx context.Context, sensorID, field string) (Reading, error) {
	resp, err := c.get(ctx, "/get-latest-data", url.Values{"sensor_id": {sensorID}})
	if err != nil {
		return Reading{}, err
	}
	if resp.Status != "ok" || len(resp.Result) == 0 {
		return Reading{}, fmt.Errorf("no latest data for %s", sensorID)
	}

	rec := resp.Result[0]
	r := Reading{Timestamp: time.Now()}
	if ts, err := parseUpstreamTime(rec.Datetime); err == nil {
		r.Timestamp = ts
	}
	raw, ok := rec.Data[field]
	if !ok {
		return Reading{}, fmt.Errorf("field %q absent in latest data for %s", field, sensorID)
	}
	if err := json.Unmarshal(raw, &r.Value); err != nil {
		return Reading{}, fmt.Errorf("field %q for %s: %w", field, sensorID, err)
	}
	return r, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, q url.Values) (*upstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request %s: upstream status %d", path, resp.StatusCode)
	}

	var parsed upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return &parsed, nil
}

// parseUpstreamTime accepts the timestamp formats the telemetry API is
// known to emit: RFC3339 (with or without zone) and "2006-01-02 15:04:05".
func parseUpstreamTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
