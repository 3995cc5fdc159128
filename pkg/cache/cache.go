// Package cache provides the read-through response cache for chart
// queries. Entries are keyed by metric and time window and expire on a
// two-class TTL: windows touching the current month stay fresh for a few
// minutes, fully historical windows for much longer since their upstream
// data no longer changes.
package cache

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// TTLClass selects which expiry applies to a cached response.
type TTLClass int

const (
	// Current covers windows that include the current month; upstream
	// keeps appending to them, so entries go stale quickly.
	Current TTLClass = iota
	// Historical covers fully closed windows whose data is immutable.
	Historical
)

// Cache is the read-through store in front of the upstream fetch. Get
// returns the stored payload and whether it was present and unexpired.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, payload []byte, class TTLClass)
	Stats() Stats
	Close() error
}

// Stats is a point-in-time snapshot for the health endpoint.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Key derives the cache key for a chart query. The sensor set is part of
// the key so a registry edit (adding or removing a probe) naturally
// invalidates old entries instead of serving stale shapes.
func Key(metricID, sensorSet string, start, end time.Time) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%s|%d|%d", metricID, sensorSet, start.Unix(), end.Unix())
	return fmt.Sprintf("%016x", h.Sum64())
}
