package config

import "sort"

var Presets = map[string]RenderConfig{
	"phase": DefaultRender(),
	"density": {
		Field: "Dens", Axis: "z", Center: "c", Log: true, Colormap: "viridis",
		DPI: DefaultDPI, FigureSize: DefaultFigureSize, Resolution: DefaultResolution,
		TimeUnit: DefaultTimeUnit, TimestampCorner: DefaultCorner, Timestamp: true, AnnotateGrids: true,
	},
	"overview": {
		Field: "Phase", Axis: "z", Center: "c", ZLim: []float64{-1, 1}, Colormap: "inferno",
		DPI: 72, FigureSize: DefaultFigureSize, Resolution: 400,
		TimeUnit: DefaultTimeUnit, TimestampCorner: DefaultCorner, Timestamp: true,
	},
	"phase-max": {
		Field: "Phase", Axis: "z", Center: "max", ZLim: []float64{-1, 1}, Colormap: "inferno",
		DPI: DefaultDPI, FigureSize: DefaultFigureSize, Resolution: DefaultResolution,
		TimeUnit: DefaultTimeUnit, TimestampCorner: DefaultCorner, Timestamp: true, AnnotateGrids: true,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *RenderConfig {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	if p.ZLim != nil {
		p.ZLim = append([]float64(nil), p.ZLim...)
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
