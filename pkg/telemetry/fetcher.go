package telemetry

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/sensor"
)

// SeriesResult is the outcome of fetching one sensor series. A failed or
// timed-out fetch is reported as Unavailable rather than as an error:
// one flaky sensor must never sink the whole chart request.
type SeriesResult struct {
	Series      sensor.Series
	Readings    []Reading
	Unavailable bool
}

// LatestResult is the outcome of fetching one sensor's newest reading.
type LatestResult struct {
	Series      sensor.Series
	Reading     Reading
	Unavailable bool
}

// Fetcher fans fetches out across sensors with a bounded worker count,
// so fetching K sensors costs roughly max(latency), not sum(latency).
type Fetcher struct {
	client  Client
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewFetcher creates a fetcher issuing at most workers concurrent
// upstream calls, each bounded by the per-sensor timeout.
func NewFetcher(client Client, workers int) *Fetcher {
	if workers <= 0 {
		workers = config.FetchWorkers
	}
	return &Fetcher{
		client:  client,
		sem:     semaphore.NewWeighted(int64(workers)),
		timeout: config.PerSensorTimeout,
	}
}

// FetchRange fetches raw readings for every series concurrently. Results
// come back in input order regardless of completion order. The only way
// the call itself fails is caller cancellation; per-sensor failures
// degrade to Unavailable entries.
func (f *Fetcher) FetchRange(ctx context.Context, series []sensor.Series, start, end time.Time) []SeriesResult {
	results := make([]SeriesResult, len(series))

	done := make(chan int, len(series))
	for i, s := range series {
		results[i].Series = s

		if err := f.sem.Acquire(ctx, 1); err != nil {
			// Caller gave up; mark the rest unavailable.
			results[i].Unavailable = true
			done <- i
			continue
		}

		go func(i int, s sensor.Series) {
			defer f.sem.Release(1)
			defer func() { done <- i }()

			fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			readings, err := f.client.FetchRange(fetchCtx, s.SensorID, s.Field, start, end)
			if err != nil {
				log.Printf("Sensor %s.%s unavailable: %v", s.SensorID, s.Field, err)
				results[i].Unavailable = true
				return
			}
			results[i].Readings = readings
		}(i, s)
	}

	for range series {
		<-done
	}
	return results
}

// FetchLatest fetches the newest reading for every series concurrently.
func (f *Fetcher) FetchLatest(ctx context.Context, series []sensor.Series) []LatestResult {
	results := make([]LatestResult, len(series))

	done := make(chan int, len(series))
	for i, s := range series {
		results[i].Series = s

		if err := f.sem.Acquire(ctx, 1); err != nil {
			results[i].Unavailable = true
			done <- i
			continue
		}

		go func(i int, s sensor.Series) {
			defer f.sem.Release(1)
			defer func() { done <- i }()

			fetchCtx, cancel := context.WithTimeout(ctx, config.LatestFetchTimeout)
			defer cancel()

			reading, err := f.client.FetchLatest(fetchCtx, s.SensorID, s.Field)
			if err != nil {
				results[i].Unavailable = true
				return
			}
			results[i].Reading = reading
		}(i, s)
	}

	for range series {
		<-done
	}
	return results
}
