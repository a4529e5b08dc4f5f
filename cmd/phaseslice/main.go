package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/san-kum/phaseslice/internal/config"
	"github.com/san-kum/phaseslice/internal/console"
	"github.com/san-kum/phaseslice/internal/gamer"
	"github.com/san-kum/phaseslice/internal/logging"
	"github.com/san-kum/phaseslice/internal/pipeline"
	"github.com/san-kum/phaseslice/internal/series"
	"github.com/san-kum/phaseslice/internal/storage"
	"github.com/san-kum/phaseslice/internal/tui"
	"github.com/spf13/cobra"
)

var (
	// series
	prefix    string
	idxStart  int
	idxEnd    int
	idxStep   int
	workers   int
	keepGoing bool
	outDir    string
	useTUI    bool
	// shared
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	// render overrides
	field    string
	axis     string
	center   string
	cmapName string
	dpi      int
)

// main exits with status 1 when the command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "phaseslice",
		Short:        "slice plots of GAMER snapshot series",
		SilenceUsage: true,
		RunE:         runRender,
	}

	rootCmd.Flags().StringVarP(&prefix, "prefix", "i", config.DefaultPrefix, "path prefix")
	rootCmd.Flags().IntVarP(&idxStart, "start", "s", 0, "first data index")
	rootCmd.Flags().IntVarP(&idxEnd, "end", "e", 0, "last data index")
	rootCmd.Flags().IntVarP(&idxStep, "step", "d", config.DefaultStep, "delta data index")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "concurrent snapshots (0 = number of CPUs)")
	rootCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "render every snapshot even after a failure")
	rootCmd.Flags().StringVar(&outDir, "out", config.DefaultOutputDir, "image output directory")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "show progress in a terminal ui")
	rootCmd.MarkFlagRequired("start")
	rootCmd.MarkFlagRequired("end")

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset render settings")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&field, "field", config.DefaultField, "field to slice")
	rootCmd.PersistentFlags().StringVar(&axis, "axis", config.DefaultAxis, "slice axis (x, y, z)")
	rootCmd.PersistentFlags().StringVar(&center, "center", config.DefaultCenter, "slice center (c, max, min or x,y,z)")
	rootCmd.PersistentFlags().StringVar(&cmapName, "cmap", config.DefaultColormap, "colormap")
	rootCmd.PersistentFlags().IntVar(&dpi, "dpi", config.DefaultDPI, "image dpi")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	timelineCmd := &cobra.Command{
		Use:   "timeline [run_id]",
		Short: "plot slice statistics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTimeline,
	}
	timelineCmd.Flags().StringVar(&timelinePNG, "png", "", "also write a png chart to this path")
	timelineCmd.Flags().StringVar(&timelineUnit, "unit", config.DefaultTimeUnit, "time unit of the png chart")

	profileCmd := &cobra.Command{
		Use:   "profile [snapshot...]",
		Short: "plot the field along one row of a slice",
		Args:  cobra.MinimumNArgs(1),
		RunE:  plotProfile,
	}
	profileCmd.Flags().IntVar(&profileRow, "row", -1, "slice row (-1 = middle)")
	profileCmd.Flags().IntVar(&profileRes, "resolution", 200, "slice resolution")

	fieldsCmd := &cobra.Command{
		Use:   "fields [snapshot...]",
		Short: "list the fields stored in snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE:  listFields,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list render presets",
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "render every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue with the next step after a failure")
	scenarioCmd.Flags().StringVar(&outDir, "out", config.DefaultOutputDir, "image output directory")
	scenarioCmd.Flags().IntVar(&workers, "workers", 0, "concurrent snapshots (0 = number of CPUs)")

	rootCmd.AddCommand(listCmd, timelineCmd, profileCmd, fieldsCmd, presetsCmd, scenarioCmd)
	return rootCmd
}

// loadConfig merges defaults, preset, config file and changed flags, in that
// order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Render = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("prefix") {
		cfg.Prefix = prefix
	}
	if flags.Changed("start") {
		cfg.Start = idxStart
	}
	if flags.Changed("end") {
		cfg.End = idxEnd
	}
	if flags.Changed("step") {
		cfg.Step = idxStep
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("keep-going") {
		cfg.KeepGoing = keepGoing
	}
	if flags.Changed("out") {
		cfg.OutputDir = outDir
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("field") {
		cfg.Render.Field = field
	}
	if flags.Changed("axis") {
		cfg.Render.Axis = axis
	}
	if flags.Changed("center") {
		cfg.Render.Center = center
	}
	if flags.Changed("cmap") {
		cfg.Render.Colormap = cmapName
	}
	if flags.Changed("dpi") {
		cfg.Render.DPI = dpi
	}
	return cfg, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	console.Banner(os.Stdout, os.Args)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, err := series.New(cfg.Prefix, series.Range{Start: cfg.Start, End: cfg.End, Step: cfg.Step})
	if err != nil {
		return err
	}
	s.KeepGoing = cfg.KeepGoing

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	if useTUI {
		logger = logging.Discard()
	}
	pl := pipeline.New(gamer.NewLoader(logger), cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	var results []pipeline.Result
	var runErr error
	if useTUI {
		title := fmt.Sprintf("%s slices of %s, snapshots %d-%d", cfg.Render.Field, cfg.Prefix, cfg.Start, cfg.End)
		runErr = tui.Run(ctx, title, s.Len(), func(ctx context.Context, obs pipeline.Observer) error {
			pl.AddObserver(obs)
			var err error
			results, err = pl.Run(ctx, s)
			return err
		})
	} else {
		results, runErr = pl.Run(ctx, s)
	}
	elapsed := time.Since(start)

	runID, err := saveRun(cfg, results, s.Len(), elapsed, logger)
	if err != nil {
		logger.Warn("failed to store run", "err", err)
	}

	means := make([]float64, len(results))
	for i, r := range results {
		means[i] = r.Stats.Mean
	}
	console.Summary{
		RunID:     runID,
		Rendered:  len(results),
		Failed:    s.Len() - len(results),
		Elapsed:   elapsed,
		OutputDir: cfg.OutputDir,
		Means:     means,
	}.Write(os.Stdout)

	return runErr
}

func saveRun(cfg *config.Config, results []pipeline.Result, total int, elapsed time.Duration, logger *slog.Logger) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return "", err
	}

	records := make([]storage.SliceRecord, len(results))
	for i, r := range results {
		records[i] = storage.SliceRecord{
			Index:  r.Index,
			Time:   r.Time,
			Min:    r.Stats.Min,
			Max:    r.Stats.Max,
			Mean:   r.Stats.Mean,
			Std:    r.Stats.Std,
			Output: r.Output,
		}
	}

	meta := storage.RunMetadata{
		Prefix:    cfg.Prefix,
		Start:     cfg.Start,
		End:       cfg.End,
		Step:      cfg.Step,
		Field:     cfg.Render.Field,
		Axis:      cfg.Render.Axis,
		Colormap:  cfg.Render.Colormap,
		DPI:       cfg.Render.DPI,
		OutputDir: cfg.OutputDir,
		Rendered:  len(results),
		Failed:    total - len(results),
		Elapsed:   elapsed.Seconds(),
	}
	id, err := st.Save(meta, records)
	if err != nil {
		return "", err
	}
	logger.Debug("stored run", "id", id, "dir", cfg.DataDir)
	return id, nil
}
