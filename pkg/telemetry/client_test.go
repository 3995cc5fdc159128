package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchRange_ParsesReadings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get-data", r.URL.Path)
		require.Equal(t, "PM25_R1", r.URL.Query().Get("sensor_id"))
		require.Equal(t, "secret", r.Header.Get("x-api-key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"result": [
				{"datetime": "2025-07-01T00:00:00", "data": {"atmos": 12.5}},
				{"datetime": "2025-07-01T01:00:00", "data": null},
				{"datetime": "2025-07-01T02:00:00", "data": {"other": 1}},
				{"datetime": "2025-07-01T03:00:00", "data": {"atmos": -999}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret")
	readings, err := c.FetchRange(context.Background(),
		"PM25_R1", "atmos",
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, readings, 4)

	require.Equal(t, 12.5, readings[0].Value)
	require.False(t, readings[0].Missing)

	// Null payload and absent field both surface as Missing with the
	// timestamp preserved.
	require.True(t, readings[1].Missing)
	require.True(t, readings[2].Missing)

	// Sentinel values pass through raw; classification happens downstream.
	require.Equal(t, -999.0, readings[3].Value)
	require.False(t, readings[3].Missing)
}

func TestFetchRange_RetriesOnUpstreamError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status":"ok","result":[{"datetime":"2025-07-01T00:00:00","data":{"val":400}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	readings, err := c.FetchRange(context.Background(), "CO2_R1", "val", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	require.Equal(t, int32(2), calls.Load())
}

func TestFetchRange_FailsAfterRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	_, err := c.FetchRange(context.Background(), "CO2_R1", "val", time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
}

// An upstream 200 carrying status "error" with an empty result must be
// treated as a fetch failure, never mistaken for "no data in range".
func TestFetchRange_ErrorStatusIsNotEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","result":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	_, err := c.FetchRange(context.Background(), "CO2_R1", "val", time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	require.Contains(t, err.Error(), `upstream status "error"`)
}

func TestFetchRange_RetriesOnErrorStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"status":"error","result":[]}`))
			return
		}
		w.Write([]byte(`{"status":"ok","result":[{"datetime":"2025-07-01T00:00:00","data":{"val":400}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	readings, err := c.FetchRange(context.Background(), "CO2_R1", "val", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	require.Equal(t, int32(2), calls.Load())
}

func TestFetchRange_SkipsMalformedTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","result":[
			{"datetime": "not-a-time", "data": {"val": 1}},
			{"datetime": "2025-07-01 12:00:00", "data": {"val": 2}}
		]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	readings, err := c.FetchRange(context.Background(), "CO2_R1", "val", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	require.Equal(t, 2.0, readings[0].Value)
}

func TestFetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get-latest-data", r.URL.Path)
		w.Write([]byte(`{"status":"ok","result":[{"datetime":"2025-07-01T10:00:00","data":{"Temp":24.8,"Hum":71.2}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	reading, err := c.FetchLatest(context.Background(), "SHT45T3", "Temp")
	require.NoError(t, err)
	require.Equal(t, 24.8, reading.Value)
	require.Equal(t, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), reading.Timestamp)

	_, err = c.FetchLatest(context.Background(), "SHT45T3", "Pressure")
	require.Error(t, err)
}

func TestFetchLatest_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","result":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	_, err := c.FetchLatest(context.Background(), "PM25_R1", "atmos")
	require.Error(t, err)
}

func TestParseUpstreamTime(t *testing.T) {
	for _, s := range []string{
		"2025-07-01T00:00:00Z",
		"2025-07-01T00:00:00",
		"2025-07-01 00:00:00",
	} {
		ts, err := parseUpstreamTime(s)
		require.NoError(t, err, s)
		require.Equal(t, 2025, ts.Year())
	}

	_, err := parseUpstreamTime("01/07/2025")
	require.Error(t, err)
}
