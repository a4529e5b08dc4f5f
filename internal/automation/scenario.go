// Package automation renders several slice configurations of one snapshot
// series from a YAML scenario file.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/phaseslice/internal/config"
	"github.com/san-kum/phaseslice/internal/gamer"
	"github.com/san-kum/phaseslice/internal/pipeline"
	"github.com/san-kum/phaseslice/internal/series"
)

var ErrNoSteps = errors.New("automation: scenario has no steps")

// Scenario is a scripted list of slice plots over one series.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Prefix      string `yaml:"prefix"`
	Start       int    `yaml:"start"`
	End         int    `yaml:"end"`
	Step        int    `yaml:"step"`
	Steps       []Step `yaml:"steps"`
}

// Step overrides render settings; zero values keep the preset or base value.
type Step struct {
	Name      string    `yaml:"name"`
	Preset    string    `yaml:"preset"`
	Field     string    `yaml:"field"`
	Axis      string    `yaml:"axis"`
	Center    string    `yaml:"center"`
	Colormap  string    `yaml:"colormap"`
	ZLim      []float64 `yaml:"zlim"`
	Log       *bool     `yaml:"log"`
	DPI       int       `yaml:"dpi"`
	OutputDir string    `yaml:"output_dir"`
}

type StepResult struct {
	Name    string
	Config  *config.Config
	Results []pipeline.Result
	Err     error
	// Elapsed covers this step only.
	Elapsed time.Duration
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Steps) == 0 {
		return nil, ErrNoSteps
	}
	return &sc, nil
}

// Apply returns base with the scenario series and the step's render settings.
func (sc *Scenario) Apply(base *config.Config, st Step) (*config.Config, error) {
	cfg := *base
	cfg.Render.ZLim = append([]float64(nil), base.Render.ZLim...)

	if sc.Prefix != "" {
		cfg.Prefix = sc.Prefix
	}
	if sc.Start != 0 || sc.End != 0 {
		cfg.Start, cfg.End = sc.Start, sc.End
	}
	if sc.Step != 0 {
		cfg.Step = sc.Step
	}

	if st.Preset != "" {
		p := config.GetPreset(st.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", st.Preset)
		}
		cfg.Render = *p
	}
	if st.Field != "" {
		cfg.Render.Field = st.Field
	}
	if st.Axis != "" {
		cfg.Render.Axis = st.Axis
	}
	if st.Center != "" {
		cfg.Render.Center = st.Center
	}
	if st.Colormap != "" {
		cfg.Render.Colormap = st.Colormap
	}
	if st.ZLim != nil {
		cfg.Render.ZLim = append([]float64(nil), st.ZLim...)
	}
	if st.Log != nil {
		cfg.Render.Log = *st.Log
	}
	if st.DPI != 0 {
		cfg.Render.DPI = st.DPI
	}
	if st.OutputDir != "" {
		cfg.OutputDir = st.OutputDir
		if !filepath.IsAbs(st.OutputDir) && base.OutputDir != "" {
			cfg.OutputDir = filepath.Join(base.OutputDir, st.OutputDir)
		}
	}
	return &cfg, cfg.Validate()
}

func stepName(i int, st Step) string {
	if st.Name != "" {
		return st.Name
	}
	return fmt.Sprintf("step %d", i+1)
}

// RunScenario renders the steps in order. A failing step stops the scenario
// unless base.KeepGoing is set.
func RunScenario(ctx context.Context, sc *Scenario, base *config.Config, loader gamer.Loader, log *slog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))
	var errs []error

	for i, st := range sc.Steps {
		name := stepName(i, st)
		log.Info("running scenario step", "step", name, "n", i+1, "of", len(sc.Steps))

		start := time.Now()
		res, err := runStep(ctx, sc, base, st, loader, log)
		res.Name = name
		res.Elapsed = time.Since(start)
		results = append(results, res)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
			if !base.KeepGoing || ctx.Err() != nil {
				return results, err
			}
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func runStep(ctx context.Context, sc *Scenario, base *config.Config, st Step, loader gamer.Loader, log *slog.Logger) (StepResult, error) {
	cfg, err := sc.Apply(base, st)
	if err != nil {
		return StepResult{Err: err}, err
	}
	s, err := series.New(cfg.Prefix, series.Range{Start: cfg.Start, End: cfg.End, Step: cfg.Step})
	if err != nil {
		return StepResult{Config: cfg, Err: err}, err
	}
	s.KeepGoing = cfg.KeepGoing
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return StepResult{Config: cfg, Err: err}, err
	}

	out, err := pipeline.New(loader, cfg, log).Run(ctx, s)
	return StepResult{Config: cfg, Results: out, Err: err}, err
}
