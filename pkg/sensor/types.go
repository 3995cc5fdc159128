// Package sensor holds the static reference data for every sensor channel
// on the two greenhouses: upstream IDs, display labels, physical units,
// valid value ranges, and the grouping of channels into chart metrics.
package sensor

// Series identifies one physical or logical sensor channel.
type Series struct {
	// Key is the stable series key used in chart responses, e.g. "pm-gh1".
	Key string `yaml:"key"`

	// SensorID is the upstream telemetry sensor identifier, e.g. "PM25_R1".
	SensorID string `yaml:"sensor_id"`

	// Field selects the value inside the upstream data record, e.g. "atmos".
	Field string `yaml:"field"`

	Label string `yaml:"label"`
	Unit  string `yaml:"unit"`

	// Min and Max bound the physically plausible range; readings outside
	// it are treated as gaps, never plotted.
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`

	// Color is a rendering hint passed through to the frontend untouched.
	Color string `yaml:"color"`
}

// Metric is one chart: a named group of series plotted together.
type Metric struct {
	ID     string   `yaml:"id"`
	Title  string   `yaml:"title"`
	Unit   string   `yaml:"unit"`
	Series []Series `yaml:"series"`
}

// SentinelValues are the upstream codes that mean "no reading", not a
// measurement. They must never survive into a chart response.
var SentinelValues = []float64{-1, -999}

// IsSentinel reports whether v is one of the known sentinel codes.
func IsSentinel(v float64) bool {
	for _, s := range SentinelValues {
		if v == s {
			return true
		}
	}
	return false
}

// InRange reports whether v is a physically plausible reading for s.
func (s Series) InRange(v float64) bool {
	return v >= s.Min && v <= s.Max
}

// SensorSetID is a stable identifier for the resolved sensor set of a
// metric, used as part of cache keys.
func (m Metric) SensorSetID() string {
	id := ""
	for i, s := range m.Series {
		if i > 0 {
			id += ","
		}
		id += s.SensorID + "." + s.Field
	}
	return id
}
