package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/phaseslice/internal/amr"
	"github.com/san-kum/phaseslice/internal/colormap"
	"github.com/san-kum/phaseslice/internal/render"
)

const (
	DefaultPrefix     = "../"
	DefaultStep       = 1
	DefaultField      = "Phase"
	DefaultAxis       = "z"
	DefaultCenter     = "c"
	DefaultColormap   = "inferno"
	DefaultDPI        = 150
	DefaultTimeUnit   = "Gyr"
	DefaultCorner     = "upper_right"
	DefaultDataDir    = ".phaseslice"
	DefaultOutputDir  = "."
	DefaultLogLevel   = "info"
	DefaultResolution = render.DefaultResolution
	DefaultFigureSize = render.DefaultFigureSize
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Prefix    string       `yaml:"prefix"`
	Start     int          `yaml:"start"`
	End       int          `yaml:"end"`
	Step      int          `yaml:"step"`
	Workers   int          `yaml:"workers"`
	KeepGoing bool         `yaml:"keep_going"`
	OutputDir string       `yaml:"output_dir"`
	DataDir   string       `yaml:"data_dir"`
	LogLevel  string       `yaml:"log_level"`
	Render    RenderConfig `yaml:"render"`
}

type RenderConfig struct {
	Field           string    `yaml:"field"`
	Axis            string    `yaml:"axis"`
	Center          string    `yaml:"center"`
	ZLim            []float64 `yaml:"zlim"`
	Log             bool      `yaml:"log"`
	Colormap        string    `yaml:"colormap"`
	DPI             int       `yaml:"dpi"`
	FigureSize      float64   `yaml:"figure_size"`
	Resolution      int       `yaml:"resolution"`
	TimeUnit        string    `yaml:"time_unit"`
	TimestampCorner string    `yaml:"timestamp_corner"`
	Timestamp       bool      `yaml:"timestamp"`
	AnnotateGrids   bool      `yaml:"annotate_grids"`
}

func DefaultConfig() *Config {
	return &Config{
		Prefix:    DefaultPrefix,
		Step:      DefaultStep,
		OutputDir: DefaultOutputDir,
		DataDir:   DefaultDataDir,
		LogLevel:  DefaultLogLevel,
		Render:    DefaultRender(),
	}
}

func DefaultRender() RenderConfig {
	return RenderConfig{
		Field:           DefaultField,
		Axis:            DefaultAxis,
		Center:          DefaultCenter,
		ZLim:            []float64{-1, 1},
		Colormap:        DefaultColormap,
		DPI:             DefaultDPI,
		FigureSize:      DefaultFigureSize,
		Resolution:      DefaultResolution,
		TimeUnit:        DefaultTimeUnit,
		TimestampCorner: DefaultCorner,
		Timestamp:       true,
		AnnotateGrids:   true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("%w: step %d must be positive", ErrInvalid, c.Step)
	}
	if c.Start > c.End {
		return fmt.Errorf("%w: start %d after end %d", ErrInvalid, c.Start, c.End)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	return c.Render.Validate()
}

func (r *RenderConfig) Validate() error {
	if r.Field == "" {
		return fmt.Errorf("%w: empty field", ErrInvalid)
	}
	if _, err := amr.ParseAxis(r.Axis); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := amr.ParseCenter(r.Center); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := colormap.Get(r.Colormap); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch len(r.ZLim) {
	case 0:
	case 2:
		n := colormap.Norm{Min: r.ZLim[0], Max: r.ZLim[1], Log: r.Log}
		if err := n.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	default:
		return fmt.Errorf("%w: zlim needs two values, got %d", ErrInvalid, len(r.ZLim))
	}
	if r.DPI <= 0 {
		return fmt.Errorf("%w: dpi %d", ErrInvalid, r.DPI)
	}
	if r.FigureSize <= 0 {
		return fmt.Errorf("%w: figure size %g", ErrInvalid, r.FigureSize)
	}
	if r.Resolution <= 0 {
		return fmt.Errorf("%w: resolution %d", ErrInvalid, r.Resolution)
	}
	if r.Timestamp {
		if !render.ValidTimeUnit(r.TimeUnit) {
			return fmt.Errorf("%w: time unit %q", ErrInvalid, r.TimeUnit)
		}
		if _, err := render.ParseCorner(r.TimestampCorner); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}
