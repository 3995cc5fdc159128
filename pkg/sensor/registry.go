package sensor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry resolves metric identifiers to their sensor sets. It is
// immutable after construction; handlers share one instance freely.
type Registry struct {
	metrics map[string]Metric
	order   []string
}

// NewRegistry builds a registry from the given metrics. Metric IDs and
// series keys must be unique.
func NewRegistry(metrics []Metric) (*Registry, error) {
	r := &Registry{metrics: make(map[string]Metric, len(metrics))}
	seenKeys := make(map[string]string)

	for _, m := range metrics {
		if m.ID == "" {
			return nil, fmt.Errorf("metric with empty id")
		}
		if _, dup := r.metrics[m.ID]; dup {
			return nil, fmt.Errorf("duplicate metric id %q", m.ID)
		}
		if len(m.Series) == 0 {
			return nil, fmt.Errorf("metric %q has no series", m.ID)
		}
		for _, s := range m.Series {
			if s.Key == "" || s.SensorID == "" || s.Field == "" {
				return nil, fmt.Errorf("metric %q: series needs key, sensor_id and field", m.ID)
			}
			if other, dup := seenKeys[s.Key]; dup {
				return nil, fmt.Errorf("series key %q used by both %q and %q", s.Key, other, m.ID)
			}
			if s.Max <= s.Min {
				return nil, fmt.Errorf("metric %q series %q: max must exceed min", m.ID, s.Key)
			}
			seenKeys[s.Key] = m.ID
		}
		r.metrics[m.ID] = m
		r.order = append(r.order, m.ID)
	}
	return r, nil
}

// Load reads a YAML metric definition file and builds a registry from it,
// replacing the compiled-in defaults wholesale.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sensor config: %w", err)
	}

	var doc struct {
		Metrics []Metric `yaml:"metrics"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse sensor config: %w", err)
	}
	return NewRegistry(doc.Metrics)
}

// Metric returns the metric for id, or false if unknown.
func (r *Registry) Metric(id string) (Metric, bool) {
	m, ok := r.metrics[id]
	return m, ok
}

// Metrics returns all metrics in definition order.
func (r *Registry) Metrics() []Metric {
	out := make([]Metric, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.metrics[id])
	}
	return out
}
