package sensor

// Default metric definitions for the two greenhouses (GH1 and GH2).
// Series keys match what the compare dashboard's chart renderer expects.
// Valid ranges bound what each probe can physically report; anything
// outside is reclassified as a gap before it reaches a chart.

// DefaultRegistry returns the built-in metric registry. It never fails:
// the tables below are validated by the package tests.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultMetrics())
	if err != nil {
		panic("sensor: invalid built-in metric tables: " + err.Error())
	}
	return r
}

func defaultMetrics() []Metric {
	return []Metric{
		{
			ID: "pm", Title: "PM2.5", Unit: "µg/m³",
			Series: []Series{
				{Key: "pm-gh1", SensorID: "PM25_R1", Field: "atmos", Label: "GH1", Unit: "µg/m³", Min: 0, Max: 500, Color: "#e6550d"},
				{Key: "pm-gh2", SensorID: "PM25_R2", Field: "atmos", Label: "GH2", Unit: "µg/m³", Min: 0, Max: 500, Color: "#3182bd"},
				{Key: "pm-outside", SensorID: "PM25_OUTSIDE", Field: "atmos", Label: "Outside", Unit: "µg/m³", Min: 0, Max: 500, Color: "#756bb1"},
			},
		},
		{
			ID: "co2", Title: "CO2", Unit: "ppm",
			Series: []Series{
				{Key: "co2-gh1", SensorID: "CO2_R1", Field: "val", Label: "GH1", Unit: "ppm", Min: 0, Max: 5000, Color: "#e6550d"},
				{Key: "co2-gh2", SensorID: "CO2_R2", Field: "val", Label: "GH2", Unit: "ppm", Min: 0, Max: 5000, Color: "#3182bd"},
			},
		},
		{
			ID: "luxuv", Title: "Light (LUX / UV)", Unit: "",
			Series: []Series{
				{Key: "uv-gh1", SensorID: "UV1", Field: "uv_value", Label: "GH1 UV", Unit: "UV index", Min: 0, Max: 20, Color: "#9467bd"},
				{Key: "lux-gh1", SensorID: "LUX1", Field: "lux", Label: "GH1 LUX", Unit: "lx", Min: 0, Max: 200000, Color: "#ff7f0e"},
				{Key: "uv-gh2", SensorID: "UV2", Field: "uv_value", Label: "GH2 UV", Unit: "UV index", Min: 0, Max: 20, Color: "#8c564b"},
				{Key: "lux-gh2", SensorID: "LUX2", Field: "lux", Label: "GH2 LUX", Unit: "lx", Min: 0, Max: 200000, Color: "#bcbd22"},
			},
		},
		{
			ID: "ppfd", Title: "PPFD", Unit: "µmol/m²/s",
			Series: []Series{
				{Key: "ppfd-gh1-r8", SensorID: "ppfd3", Field: "ppfd", Label: "GH1 R8", Unit: "µmol/m²/s", Min: 0, Max: 2500, Color: "#e6550d"},
				{Key: "ppfd-gh1-r24", SensorID: "ppfd4", Field: "ppfd", Label: "GH1 R24", Unit: "µmol/m²/s", Min: 0, Max: 2500, Color: "#fd8d3c"},
				{Key: "ppfd-gh2-r16", SensorID: "ppfd1", Field: "ppfd", Label: "GH2 R16", Unit: "µmol/m²/s", Min: 0, Max: 2500, Color: "#3182bd"},
				{Key: "ppfd-gh2-r24", SensorID: "ppfd2", Field: "ppfd", Label: "GH2 R24", Unit: "µmol/m²/s", Min: 0, Max: 2500, Color: "#6baed6"},
			},
		},
		{
			ID: "nitrogen", Title: "Soil Nitrogen", Unit: "mg/kg",
			Series: npkSeries("nitrogen"),
		},
		{
			ID: "phosphorus", Title: "Soil Phosphorus", Unit: "mg/kg",
			Series: npkSeries("phosphorus"),
		},
		{
			ID: "potassium", Title: "Soil Potassium", Unit: "mg/kg",
			Series: npkSeries("potassium"),
		},
		{
			ID: "tempsoil", Title: "Soil Temperature", Unit: "°C",
			Series: []Series{
				{Key: "temp-npk-gh1-r8", SensorID: "NPK4", Field: "temperature", Label: "GH1 R8", Unit: "°C", Min: -10, Max: 60, Color: "#e6550d"},
				{Key: "temp-npk-gh1-r16", SensorID: "NPK5", Field: "temperature", Label: "GH1 R16", Unit: "°C", Min: -10, Max: 60, Color: "#fd8d3c"},
				{Key: "temp-npk-gh1-r24", SensorID: "NPK6", Field: "temperature", Label: "GH1 R24", Unit: "°C", Min: -10, Max: 60, Color: "#fdae6b"},
				{Key: "temp-npk-gh2-r8", SensorID: "NPK1", Field: "temperature", Label: "GH2 R8", Unit: "°C", Min: -10, Max: 60, Color: "#3182bd"},
				{Key: "temp-npk-gh2-r16", SensorID: "NPK2", Field: "temperature", Label: "GH2 R16", Unit: "°C", Min: -10, Max: 60, Color: "#6baed6"},
				{Key: "temp-npk-gh2-r24", SensorID: "NPK3", Field: "temperature", Label: "GH2 R24", Unit: "°C", Min: -10, Max: 60, Color: "#9ecae1"},
			},
		},
		{
			ID: "tempairwater", Title: "Air & Water Temperature", Unit: "°C",
			Series: []Series{
				{Key: "air-temp-gh1-r8", SensorID: "SHT45T3", Field: "Temp", Label: "GH1 R8 air", Unit: "°C", Min: -10, Max: 60, Color: "#e6550d"},
				{Key: "air-temp-gh1-r16", SensorID: "SHT45T4", Field: "Temp", Label: "GH1 R16 air", Unit: "°C", Min: -10, Max: 60, Color: "#fd8d3c"},
				{Key: "air-temp-gh1-r24", SensorID: "SHT45T5", Field: "Temp", Label: "GH1 R24 air", Unit: "°C", Min: -10, Max: 60, Color: "#fdae6b"},
				{Key: "air-temp-gh2-r8", SensorID: "SHT45T1", Field: "Temp", Label: "GH2 R8 air", Unit: "°C", Min: -10, Max: 60, Color: "#3182bd"},
				{Key: "air-temp-gh2-r16", SensorID: "SHT45T6", Field: "Temp", Label: "GH2 R16 air", Unit: "°C", Min: -10, Max: 60, Color: "#6baed6"},
				{Key: "air-temp-gh2-r24", SensorID: "SHT45T2", Field: "Temp", Label: "GH2 R24 air", Unit: "°C", Min: -10, Max: 60, Color: "#9ecae1"},
				{Key: "temp-wm", SensorID: "EC", Field: "temp", Label: "Water (mix)", Unit: "°C", Min: -10, Max: 60, Color: "#31a354"},
				{Key: "temp-wp", SensorID: "EC2", Field: "temp", Label: "Water (pure)", Unit: "°C", Min: -10, Max: 60, Color: "#74c476"},
			},
		},
		{
			ID: "humidity", Title: "Air Humidity", Unit: "%RH",
			Series: []Series{
				{Key: "air-hum-gh1-r8", SensorID: "SHT45T3", Field: "Hum", Label: "GH1 R8", Unit: "%RH", Min: 0, Max: 100, Color: "#e6550d"},
				{Key: "air-hum-gh1-r16", SensorID: "SHT45T4", Field: "Hum", Label: "GH1 R16", Unit: "%RH", Min: 0, Max: 100, Color: "#fd8d3c"},
				{Key: "air-hum-gh1-r24", SensorID: "SHT45T5", Field: "Hum", Label: "GH1 R24", Unit: "%RH", Min: 0, Max: 100, Color: "#fdae6b"},
				{Key: "air-hum-gh2-r8", SensorID: "SHT45T1", Field: "Hum", Label: "GH2 R8", Unit: "%RH", Min: 0, Max: 100, Color: "#3182bd"},
				{Key: "air-hum-gh2-r16", SensorID: "SHT45T6", Field: "Hum", Label: "GH2 R16", Unit: "%RH", Min: 0, Max: 100, Color: "#6baed6"},
				{Key: "air-hum-gh2-r24", SensorID: "SHT45T2", Field: "Hum", Label: "GH2 R24", Unit: "%RH", Min: 0, Max: 100, Color: "#9ecae1"},
			},
		},
		{
			ID: "moisture", Title: "Soil Moisture", Unit: "%",
			Series: []Series{
				{Key: "soil-gh1-r8q1", SensorID: "soil7", Field: "soil", Label: "GH1 R8 Q1", Unit: "%", Min: 0, Max: 100, Color: "#e6550d"},
				{Key: "soil-gh1-r8q2", SensorID: "soil8", Field: "soil", Label: "GH1 R8 Q2", Unit: "%", Min: 0, Max: 100, Color: "#fd8d3c"},
				{Key: "soil-gh1-r16q3", SensorID: "soil9", Field: "soil", Label: "GH1 R16 Q3", Unit: "%", Min: 0, Max: 100, Color: "#fdae6b"},
				{Key: "soil-gh1-r16q4", SensorID: "soil10", Field: "soil", Label: "GH1 R16 Q4", Unit: "%", Min: 0, Max: 100, Color: "#fdd0a2"},
				{Key: "soil-gh1-r24q5", SensorID: "soil11", Field: "soil", Label: "GH1 R24 Q5", Unit: "%", Min: 0, Max: 100, Color: "#a63603"},
				{Key: "soil-gh1-r24q6", SensorID: "soil12", Field: "soil", Label: "GH1 R24 Q6", Unit: "%", Min: 0, Max: 100, Color: "#7f2704"},
				{Key: "soil-gh2-r8p1", SensorID: "soil1", Field: "soil", Label: "GH2 R8 P1", Unit: "%", Min: 0, Max: 100, Color: "#3182bd"},
				{Key: "soil-gh2-r8p2", SensorID: "soil2", Field: "soil", Label: "GH2 R8 P2", Unit: "%", Min: 0, Max: 100, Color: "#6baed6"},
				{Key: "soil-gh2-r8p3", SensorID: "soil3", Field: "soil", Label: "GH2 R8 P3", Unit: "%", Min: 0, Max: 100, Color: "#9ecae1"},
				{Key: "soil-gh2-r24p4", SensorID: "soil4", Field: "soil", Label: "GH2 R24 P4", Unit: "%", Min: 0, Max: 100, Color: "#c6dbef"},
				{Key: "soil-gh2-r24p5", SensorID: "soil5", Field: "soil", Label: "GH2 R24 P5", Unit: "%", Min: 0, Max: 100, Color: "#08519c"},
				{Key: "soil-gh2-r24p6", SensorID: "soil6", Field: "soil", Label: "GH2 R24 P6", Unit: "%", Min: 0, Max: 100, Color: "#08306b"},
				{Key: "soil-gh2-r16p8", SensorID: "soil13", Field: "soil", Label: "GH2 R16 P8", Unit: "%", Min: 0, Max: 100, Color: "#2171b5"},
			},
		},
		{
			ID: "ec", Title: "Water EC", Unit: "µS/cm",
			Series: []Series{
				{Key: "ecwm", SensorID: "EC", Field: "conduct", Label: "Mixing tank", Unit: "µS/cm", Min: 0, Max: 5000, Color: "#31a354"},
				{Key: "ecwp", SensorID: "EC2", Field: "conduct", Label: "Pure tank", Unit: "µS/cm", Min: 0, Max: 5000, Color: "#74c476"},
			},
		},
	}
}

// npkSeries builds the six NPK probe series for one nutrient field. The
// probes are shared between the nutrient charts; only the field differs.
func npkSeries(field string) []Series {
	const unit = "mg/kg"
	probes := []struct {
		sensorID string
		suffix   string
		label    string
		color    string
	}{
		{"NPK4", "gh1-r8", "GH1 R8", "#e6550d"},
		{"NPK5", "gh1-r16", "GH1 R16", "#fd8d3c"},
		{"NPK6", "gh1-r24", "GH1 R24", "#fdae6b"},
		{"NPK1", "gh2-r8", "GH2 R8", "#3182bd"},
		{"NPK2", "gh2-r16", "GH2 R16", "#6baed6"},
		{"NPK3", "gh2-r24", "GH2 R24", "#9ecae1"},
	}

	out := make([]Series, 0, len(probes))
	for _, p := range probes {
		out = append(out, Series{
			Key:      field + "-" + p.suffix,
			SensorID: p.sensorID,
			Field:    field,
			Label:    p.label,
			Unit:     unit,
			Min:      0,
			Max:      2000,
			Color:    p.color,
		})
	}
	return out
}
