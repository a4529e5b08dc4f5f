package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/phaseslice/internal/automation"
	"github.com/san-kum/phaseslice/internal/config"
	"github.com/san-kum/phaseslice/internal/console"
	"github.com/san-kum/phaseslice/internal/gamer"
	"github.com/san-kum/phaseslice/internal/logging"
	"github.com/san-kum/phaseslice/internal/pipeline"
	"github.com/san-kum/phaseslice/internal/render"
	"github.com/san-kum/phaseslice/internal/report"
	"github.com/san-kum/phaseslice/internal/series"
	"github.com/san-kum/phaseslice/internal/storage"
	"github.com/spf13/cobra"
)

var (
	timelinePNG  string
	timelineUnit string
	profileRow   int
	profileRes   int
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	var runs []storage.RunMetadata
	var err error
	if cmd.Flags().Changed("field") {
		runs, err = st.Find(cmd.Context(), field)
	} else {
		runs, err = st.List()
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFIELD\tTIME\tPREFIX\tRANGE\tRENDERED\tFAILED\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d:%d:%d\t%d\t%d\t%.2fs\n",
			run.ID,
			run.Field,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Prefix,
			run.Start, run.End, run.Step,
			run.Rendered,
			run.Failed,
			run.Elapsed,
		)
	}

	return w.Flush()
}

func plotTimeline(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	records, err := st.LoadSlices(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("field: %s\n", meta.Field)
	fmt.Printf("slices: %d\n", len(records))
	if lo, hi, err := st.Range(context.Background(), runID); err == nil {
		fmt.Printf("range: %.4g to %.4g\n", lo, hi)
	}
	fmt.Println()
	fmt.Println(report.Timeline(records, meta.Field))
	fmt.Println()

	if timelinePNG == "" {
		return nil
	}
	secs, err := render.UnitSeconds(timelineUnit)
	if err != nil {
		return err
	}
	if err := report.SaveTimelineChart(timelinePNG, records, meta.Field, timelineUnit, secs); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", timelinePNG)
	return nil
}

func plotProfile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Render.Resolution = profileRes
	if err := cfg.Render.Validate(); err != nil {
		return err
	}
	s, err := series.FromPaths(args)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	return profileSeries(context.Background(), gamer.NewLoader(logger), s, cfg, profileRow, os.Stdout)
}

// profileSeries loads the snapshots in parallel and prints their profiles
// in argument order.
func profileSeries(ctx context.Context, loader gamer.Loader, s *series.Series, cfg *config.Config, row int, w io.Writer) error {
	out := make([]string, s.Len())
	err := s.Piter(ctx, cfg.Workers, func(ctx context.Context, e series.Entry) error {
		text, err := profileOne(ctx, loader, e.Path, cfg, row)
		if err != nil {
			return err
		}
		out[e.Index] = text
		return nil
	})
	if err != nil {
		return err
	}
	for _, text := range out {
		fmt.Fprintln(w, text)
	}
	return nil
}

func profileOne(ctx context.Context, loader gamer.Loader, path string, cfg *config.Config, row int) (string, error) {
	snap, err := loader.Load(ctx, path, cfg.Render.Field)
	if err != nil {
		return "", err
	}
	plot, err := pipeline.NewPlot(snap, cfg.Render)
	if err != nil {
		return "", err
	}

	sl := plot.Slice()
	if row < 0 {
		row = sl.Height / 2
	}
	if row >= sl.Height {
		return "", fmt.Errorf("row %d outside slice of height %d", row, sl.Height)
	}

	stats := sl.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "snapshot: %s\n", snap.Name)
	fmt.Fprintf(&b, "patches: %d, max level: %d\n", len(snap.Patches), snap.MaxLevel())
	fmt.Fprintf(&b, "%s: min %.4g, max %.4g, mean %.4g, std %.4g\n\n", cfg.Render.Field, stats.Min, stats.Max, stats.Mean, stats.Std)
	b.WriteString(report.Profile(sl.Row(row), fmt.Sprintf("%s along row %d of %s", cfg.Render.Field, row, plot.Filename())))
	b.WriteString("\n")
	return b.String(), nil
}

func listFields(cmd *cobra.Command, args []string) error {
	s, err := series.FromPaths(args)
	if err != nil {
		return err
	}
	return writeFields(os.Stdout, s)
}

// writeFields lists the fields of each snapshot, headed by its path when
// there is more than one.
func writeFields(w io.Writer, s *series.Series) error {
	multi := s.Len() > 1
	for _, path := range s.Paths() {
		fields, err := gamer.Fields(path)
		if err != nil {
			return err
		}
		if multi {
			fmt.Fprintf(w, "%s:\n", path)
		}
		for _, f := range fields {
			if multi {
				fmt.Fprint(w, "  ")
			}
			fmt.Fprintln(w, f)
		}
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFIELD\tCENTER\tZLIM\tLOG\tCMAP\tDPI")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		zlim := "auto"
		if len(p.ZLim) == 2 {
			zlim = fmt.Sprintf("%g,%g", p.ZLim[0], p.ZLim[1])
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\t%d\n", name, p.Field, p.Center, zlim, p.Log, p.Colormap, p.DPI)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	console.Banner(os.Stdout, os.Args)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	console.ScenarioHeader(os.Stdout, sc.Name, sc.Description, len(sc.Steps))

	steps, runErr := automation.RunScenario(ctx, sc, cfg, gamer.NewLoader(logger), logger)
	for _, st := range steps {
		status := console.StatusOK.Render("ok ")
		if st.Err != nil {
			status = console.StatusFailed.Render("err")
		}
		fmt.Printf("%s %s: %d slices\n", status, st.Name, len(st.Results))
		if st.Config == nil {
			continue
		}
		c := st.Config
		total := len(series.Range{Start: c.Start, End: c.End, Step: c.Step}.Indices())
		if _, err := saveRun(st.Config, st.Results, total, st.Elapsed, logger); err != nil {
			logger.Warn("failed to store run", "step", st.Name, "err", err)
		}
	}
	return runErr
}
