// Package pipeline renders a slice plot for every snapshot of a series.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/san-kum/phaseslice/internal/amr"
	"github.com/san-kum/phaseslice/internal/config"
	"github.com/san-kum/phaseslice/internal/gamer"
	"github.com/san-kum/phaseslice/internal/render"
	"github.com/san-kum/phaseslice/internal/series"
)

type EventKind int

const (
	Started EventKind = iota
	Finished
	Failed
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	return "unknown"
}

type Event struct {
	Kind    EventKind
	Index   int
	Path    string
	Output  string
	Err     error
	Elapsed time.Duration
}

// Observer receives progress events. Calls are serialized.
type Observer interface {
	OnEvent(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

type Result struct {
	Index   int
	Path    string
	Output  string
	Time    float64 // seconds
	Stats   amr.Stats
	Elapsed time.Duration
}

type Pipeline struct {
	loader    gamer.Loader
	render    config.RenderConfig
	outDir    string
	workers   int
	log       *slog.Logger
	mu        sync.Mutex
	observers []Observer
}

func New(loader gamer.Loader, cfg *config.Config, log *slog.Logger) *Pipeline {
	return &Pipeline{
		loader:  loader,
		render:  cfg.Render,
		outDir:  cfg.OutputDir,
		workers: cfg.Workers,
		log:     log,
	}
}

func (p *Pipeline) AddObserver(o Observer) {
	p.observers = append(p.observers, o)
}

func (p *Pipeline) emit(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, o := range p.observers {
		o.OnEvent(e)
	}
}

// Run renders every entry of s and returns the successful results in index
// order together with the iteration error.
func (p *Pipeline) Run(ctx context.Context, s *series.Series) ([]Result, error) {
	var mu sync.Mutex
	results := make([]Result, 0, s.Len())

	err := s.Piter(ctx, p.workers, func(ctx context.Context, e series.Entry) error {
		res, err := p.RenderOne(ctx, e)
		if err != nil {
			return err
		}
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
		return nil
	})

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results, err
}

// Plot loads e and returns its configured slice plot.
func (p *Pipeline) Plot(ctx context.Context, e series.Entry) (*render.SlicePlot, *amr.Snapshot, error) {
	snap, err := p.loader.Load(ctx, e.Path, p.render.Field)
	if err != nil {
		return nil, nil, err
	}
	plot, err := NewPlot(snap, p.render)
	if err != nil {
		return nil, nil, err
	}
	return plot, snap, nil
}

func (p *Pipeline) RenderOne(ctx context.Context, e series.Entry) (Result, error) {
	start := time.Now()
	p.emit(Event{Kind: Started, Index: e.Index, Path: e.Path})
	p.log.Debug("loading snapshot", "index", e.Index, "path", e.Path)

	fail := func(err error) (Result, error) {
		elapsed := time.Since(start)
		p.log.Error("snapshot failed", "index", e.Index, "path", e.Path, "err", err)
		p.emit(Event{Kind: Failed, Index: e.Index, Path: e.Path, Err: err, Elapsed: elapsed})
		return Result{}, err
	}

	plot, snap, err := p.Plot(ctx, e)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	out, err := plot.Save(p.outDir, p.render.DPI)
	if err != nil {
		return fail(fmt.Errorf("save: %w", err))
	}

	res := Result{
		Index:   e.Index,
		Path:    e.Path,
		Output:  out,
		Time:    snap.TimeSeconds(),
		Stats:   plot.Slice().Stats(),
		Elapsed: time.Since(start),
	}
	p.log.Info("saved slice", "index", e.Index, "output", out, "patches", len(snap.Patches), "elapsed", res.Elapsed)
	p.emit(Event{Kind: Finished, Index: e.Index, Path: e.Path, Output: out, Elapsed: res.Elapsed})
	return res, nil
}

// NewPlot builds a slice plot of snap configured by rc.
func NewPlot(snap *amr.Snapshot, rc config.RenderConfig) (*render.SlicePlot, error) {
	axis, err := amr.ParseAxis(rc.Axis)
	if err != nil {
		return nil, err
	}
	center, err := amr.ParseCenter(rc.Center)
	if err != nil {
		return nil, err
	}

	plot, err := render.NewSlicePlot(snap, axis, rc.Field, center, render.Options{
		Resolution: rc.Resolution,
		FigureSize: rc.FigureSize,
	})
	if err != nil {
		return nil, err
	}

	if err := plot.SetLog(rc.Field, rc.Log); err != nil {
		return nil, err
	}
	if len(rc.ZLim) == 2 {
		if err := plot.SetZLim(rc.Field, rc.ZLim[0], rc.ZLim[1]); err != nil {
			return nil, err
		}
	}
	if err := plot.SetCmap(rc.Field, rc.Colormap); err != nil {
		return nil, err
	}
	if rc.Timestamp {
		if err := plot.AnnotateTimestamp(rc.TimeUnit, rc.TimestampCorner); err != nil {
			return nil, err
		}
	}
	if rc.AnnotateGrids {
		plot.AnnotateGrids()
	}
	return plot, nil
}
