package chartdata

import (
	"sort"
	"time"
)

// Align merges N independently-sampled streams onto one shared timeline.
// The timeline is the sorted, deduplicated union of every timestamp seen
// across all streams; each output series has exactly len(timeline)
// positions, nil where that stream has no sample at the timeline point.
//
// Different sensor types -- and even two installations of the same type
// on the two greenhouses -- report on independent schedules and suffer
// independent outages, so no common cadence can be assumed.
//
// If one stream carries two samples with the same timestamp, the later
// one in stream order wins.
func Align(streams [][]Sample) ([]time.Time, [][]*float64) {
	// Per-stream timestamp lookup, plus the union of all keys.
	lookups := make([]map[int64]*float64, len(streams))
	union := make(map[int64]struct{})

	for i, stream := range streams {
		lookup := make(map[int64]*float64, len(stream))
		for _, sm := range stream {
			key := sm.Time.UnixNano()
			lookup[key] = sm.Value // last-write-wins tie-break
			union[key] = struct{}{}
		}
		lookups[i] = lookup
	}

	keys := make([]int64, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	timeline := make([]time.Time, len(keys))
	for i, k := range keys {
		timeline[i] = time.Unix(0, k).UTC()
	}

	aligned := make([][]*float64, len(streams))
	for i, lookup := range lookups {
		values := make([]*float64, len(keys))
		for j, k := range keys {
			values[j] = lookup[k] // absent key yields nil, i.e. a gap
		}
		aligned[i] = values
	}

	return timeline, aligned
}
