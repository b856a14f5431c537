package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/tissueheat/internal/analysis"
	"github.com/san-kum/tissueheat/internal/analytic"
	"github.com/san-kum/tissueheat/internal/config"
	"github.com/san-kum/tissueheat/internal/export"
	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/integrators"
	"github.com/san-kum/tissueheat/internal/safety"
	"github.com/san-kum/tissueheat/internal/storage"
	"github.com/san-kum/tissueheat/internal/sweep"
	"github.com/san-kum/tissueheat/internal/viz"
)

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Settings.LogLevel)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	runner := sweep.NewRunner(cfg.PhysicalConstants(), st, logger)
	runner.Workers = cfg.Settings.Workers
	runner.Terms = cfg.Settings.SeriesTerms
	runner.FilePrefix = cfg.FilePrefix

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	target := "all"
	if len(args) > 0 {
		target = args[0]
	}

	var results []sweep.Result
	if target == "all" {
		if len(ratios) > 0 {
			return fmt.Errorf("--q needs a single scheme, not all")
		}
		byScheme, err := runner.RunAll(ctx)
		if err != nil {
			return err
		}
		for _, name := range runner.Registry.Names() {
			results = append(results, byScheme[name]...)
		}
	} else {
		name, err := runner.Registry.Resolve(target)
		if err != nil {
			return err
		}
		qs := ratios
		if len(qs) == 0 {
			if qs, err = integrators.Ratios(runner.Constants, name); err != nil {
				return err
			}
		}
		if results, err = runner.Run(ctx, name, qs); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSCHEME\tQ\tDT\tROWS\tMAX_ERR\tMID_ERR\tPEAK\tSTABLE\tTIME")
	for _, r := range results {
		rows, _ := r.Grid.Dims()
		fmt.Fprintf(w, "%s\t%s\t%g\t%.3e\t%d\t%.3e\t%.3e\t%.2f\t%s\t%s\n",
			r.Name,
			r.Scheme,
			r.Params.Q,
			r.Params.Dt,
			rows,
			r.Summary.Max,
			r.Summary.Midpoint,
			r.Metrics["peak"],
			yesNo(!r.Diverged),
			r.Elapsed.Round(time.Microsecond),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nsaved to %s\n", st.Dir())
	return nil
}

func analyticProfile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c := cfg.PhysicalConstants()
	theme, err := pickTheme()
	if err != nil {
		return err
	}

	t := c.Duration
	if cmd.Flags().Changed("at") {
		t = atTime
	}
	if t < 0 {
		return fmt.Errorf("%w: time must be >= 0, got %g", heat.ErrInvalidConfig, t)
	}

	x, T := analytic.Profile(c, t, cfg.Settings.SeriesTerms)
	caption := fmt.Sprintf("analytic T(x) at t=%g (%.2fs)", t, c.DenormalizeTime(t))
	fmt.Println(viz.PlotProfiles([]viz.Series{
		{Name: "T [°C]", Values: T},
		{Name: "limit", Values: thresholds(c)},
	}, caption, 80, 15))
	fmt.Println()

	margin := safety.Margin(c, T)
	fmt.Printf("midpoint: %.3f °C\n", analytic.Midpoint(c, t, cfg.Settings.SeriesTerms))
	fmt.Printf("steady:   %.3f °C\n", c.BodyTemp+c.DenormalizeTemperature(analytic.Steady(0.5)))
	fmt.Printf("margin:   %.3f °C\n", margin)
	fmt.Println(viz.Verdict(theme, margin))

	if outPath != "" {
		svg := export.ThresholdSVG(c, x, T, 600, 300, "#ff8800")
		if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
	}
	return nil
}

func safeLimits(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	finder := safety.NewFinder(cfg.PhysicalConstants(), integrators.NewRegistry(),
		cfg.Settings.LimitBodyTemp, cfg.Settings.SeriesTerms, logger)

	results, err := finder.MaxSafeTimes(ctx)
	if err != nil {
		return err
	}
	exact, err := finder.AnalyticSafeTime(ctx)
	if err != nil {
		logger.WithError(err).Warn("analytic safe time unavailable")
	} else {
		results = append(results, exact)
	}

	fmt.Printf("body temperature %.1f °C, thresholds %.0f/%.0f °C\n",
		cfg.Settings.LimitBodyTemp, safety.HealthyLimit, safety.LesionLimit)
	fmt.Println(viz.Separator(60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tQ\tROW\tCOLUMN\tT_NORM\tSECONDS\tVIOLATED")
	for _, r := range results {
		q, row := "-", "-"
		if r.Method != "analytic" {
			q = strconv.FormatFloat(r.Q, 'g', -1, 64)
			row = strconv.Itoa(r.Row)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.6f\t%.3f\t%s\n",
			r.Method, q, row, r.Column, r.Normalized, r.Seconds, yesNo(r.Violated))
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.Settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCHEME\tQ\tROWS\tPOINTS\tT_FINAL\tMAX_ERR\tSTABLE\tTIME")
	for _, run := range runs {
		if run.Scheme == "" {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\t-\t-\t-\n", run.ID)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%d\t%d\t%.4g\t%s\t%s\t%s\n",
			run.ID,
			run.Scheme,
			run.Q,
			run.Rows,
			run.Points,
			run.Duration,
			metricCell(run.Metrics, "max_rel_error"),
			yesNo(!run.Diverged),
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	theme, err := pickTheme()
	if err != nil {
		return err
	}
	st := storage.New(cfg.Settings.DataDir)
	meta, x, grid, err := loadRun(st, args[0])
	if err != nil {
		return err
	}
	c := runConstants(cfg, meta)
	rows, _ := grid.Dims()

	fmt.Printf("run: %s\n", meta.ID)
	if meta.Scheme != "" {
		fmt.Printf("scheme: %s  q=%g  dt=%.3e\n", meta.Scheme, meta.Q, meta.Dt)
	}
	fmt.Printf("rows: %d  points: %d\n\n", rows, len(x))

	var series []viz.Series
	for _, i := range snapshotRows(rows, snapshots) {
		series = append(series, viz.Series{
			Name:   fmt.Sprintf("t=%.4g", float64(i)*meta.Dt),
			Values: grid.RawRowView(i),
		})
	}
	if meta.Dt > 0 {
		_, ref := analytic.Profile(c, float64(rows-1)*meta.Dt, cfg.Settings.SeriesTerms)
		series = append(series, viz.Series{Name: "analytic", Values: ref})
	}

	fmt.Println(viz.PlotProfiles(series, "T [°C] vs position", width, height))
	fmt.Println()
	fmt.Println(viz.Verdict(theme, safety.Margin(c, analysis.LastRow(grid))))
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	theme, err := pickTheme()
	if err != nil {
		return err
	}
	st := storage.New(cfg.Settings.DataDir)

	load := func(meta storage.RunMetadata) (viz.Viewer, error) {
		m, x, grid, err := loadRun(st, meta.ID)
		if err != nil {
			return viz.Viewer{}, err
		}
		return viz.NewViewer(runConstants(cfg, m), m.ID, x, grid, m.Dt).WithTheme(theme), nil
	}

	if len(args) == 1 {
		v, err := load(storage.RunMetadata{ID: args[0]})
		if err != nil {
			return err
		}
		return viz.RunViewer(v)
	}

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	return viz.RunPicker(viz.NewPicker(runs, load))
}

func compareRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.Settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	var (
		table  [][]string
		series []viz.Series
	)
	for _, run := range runs {
		if run.Scheme == "" || run.Dt <= 0 {
			continue
		}
		_, _, grid, err := loadRun(st, run.ID)
		if err != nil {
			return err
		}
		c := runConstants(cfg, &run)
		last := analysis.LastRow(grid)
		_, ref := analytic.Profile(c, run.Duration, cfg.Settings.SeriesTerms)

		rel, err := analysis.RelativeError(last, ref)
		if err != nil {
			return fmt.Errorf("%s: %w", run.ID, err)
		}
		sum, err := analysis.Compare(last, ref)
		if err != nil {
			return fmt.Errorf("%s: %w", run.ID, err)
		}

		table = append(table, []string{
			run.ID,
			run.Scheme,
			strconv.FormatFloat(run.Q, 'g', -1, 64),
			fmt.Sprintf("%.3e", sum.Max),
			fmt.Sprintf("%.3e", sum.Mean),
			fmt.Sprintf("%.3e", sum.Midpoint),
			yesNo(analysis.Bounded(grid, 1000)),
		})
		// Unstable runs would flatten every other curve.
		if sum.Max < 1 {
			series = append(series, viz.Series{Name: run.ID, Values: rel})
		}
	}

	if len(table) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	fmt.Print(viz.Table([]string{"RUN", "SCHEME", "Q", "MAX", "MEAN", "MIDPOINT", "BOUNDED"}, table))
	if len(series) > 0 {
		fmt.Println(viz.Separator(60))
		fmt.Println(viz.PlotProfiles(series, "relative error of the final profile", width, height))
	}
	return nil
}

func chartRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.Settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Settings.PlotDir, 0755); err != nil {
		return err
	}

	type group struct {
		x        []float64
		final    float64
		c        heat.PhysicalConstants
		profiles []viz.Series
		errors   []viz.Series
	}
	groups := make(map[string]*group)
	var order []string

	for _, run := range runs {
		if run.Scheme == "" || run.Dt <= 0 {
			continue
		}
		if run.Diverged {
			fmt.Printf("skipping %s: diverged\n", run.ID)
			continue
		}
		_, x, grid, err := loadRun(st, run.ID)
		if err != nil {
			return err
		}
		c := runConstants(cfg, &run)
		last := analysis.LastRow(grid)
		_, ref := analytic.Profile(c, run.Duration, cfg.Settings.SeriesTerms)
		rel, err := analysis.RelativeError(last, ref)
		if err != nil {
			return fmt.Errorf("%s: %w", run.ID, err)
		}

		g, ok := groups[run.Scheme]
		if !ok {
			g = &group{x: x, final: run.Duration, c: c}
			groups[run.Scheme] = g
			order = append(order, run.Scheme)
		}
		if len(x) != len(g.x) {
			fmt.Printf("skipping %s: %d points, chart has %d\n", run.ID, len(x), len(g.x))
			continue
		}
		name := "q=" + strconv.FormatFloat(run.Q, 'g', -1, 64)
		g.profiles = append(g.profiles, viz.Series{Name: name, Values: last})
		g.errors = append(g.errors, viz.Series{Name: name, Values: rel})
	}

	if len(order) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	for _, scheme := range order {
		g := groups[scheme]
		_, ref := analytic.Profile(g.c, g.final, cfg.Settings.SeriesTerms)
		profiles := append(g.profiles, viz.Series{Name: "analytic", Values: ref})

		profilePath := filepath.Join(cfg.Settings.PlotDir, cfg.FilePrefix(scheme)+".png")
		err := export.WriteFile(profilePath, func(w io.Writer) error {
			return export.ProfileChart(w, g.x, profiles, export.ChartOptions{
				Title:  fmt.Sprintf("%s, t=%.4g", scheme, g.final),
				Width:  width,
				Height: height,
			})
		})
		if err != nil {
			return err
		}

		errorPath := filepath.Join(cfg.Settings.PlotDir, cfg.FilePrefix(scheme)+"_error.png")
		err = export.WriteFile(errorPath, func(w io.Writer) error {
			return export.ErrorChart(w, g.x, g.errors, export.ChartOptions{
				Title:  scheme + " relative error",
				Width:  width,
				Height: height,
			})
		})
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s, %s\n", profilePath, errorPath)
	}
	return nil
}

func heatmapRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.Settings.DataDir)
	meta, _, grid, err := loadRun(st, args[0])
	if err != nil {
		return err
	}

	path := plotPath(cfg, outPath, meta.ID+"_heatmap.png")
	err = export.WriteFile(path, func(w io.Writer) error {
		return export.Heatmap(w, grid, export.HeatmapOptions{CellWidth: cellWidth, MaxHeight: height})
	})
	if err != nil {
		return err
	}

	c := runConstants(cfg, meta)
	fmt.Println(viz.Subtle.Render("violations (time ↓, position →)"))
	fmt.Print(viz.ViolationMap(c, grid, 40, 10).String())
	fmt.Printf("wrote %s\n", path)
	return nil
}

func animateRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.Settings.DataDir)
	meta, x, grid, err := loadRun(st, args[0])
	if err != nil {
		return err
	}
	c := runConstants(cfg, meta)

	opts := export.AnimationOptions{
		Title:  meta.ID,
		FPS:    fps,
		Stride: stride,
		Label: func(i int) string {
			t := float64(i) * meta.Dt
			return fmt.Sprintf("%s  t=%.4g (%.1fs)", meta.ID, t, c.DenormalizeTime(t))
		},
	}
	if !noLimits {
		opts.Limits = thresholds(c)
	}

	path := plotPath(cfg, outPath, meta.ID+".avi")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	frames, err := export.Animate(path, x, grid, opts)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", path, frames)
	return nil
}

func svgRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.Settings.DataDir)
	meta, x, grid, err := loadRun(st, args[0])
	if err != nil {
		return err
	}
	c := runConstants(cfg, meta)
	last := analysis.LastRow(grid)

	var svg string
	if noLimits {
		svg = export.ProfileToSVG(x, last, width, height, "#ff8800")
	} else {
		svg = export.ThresholdSVG(c, x, last, width, height, "#ff8800")
	}
	if svg == "" {
		return export.ErrNoData
	}

	path := plotPath(cfg, outPath, meta.ID+".svg")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.Settings.DataDir)
	meta, x, grid, err := loadRun(st, args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return export.ExportJSON(os.Stdout, *meta, x, grid)
	}
	err = export.WriteFile(outPath, func(w io.Writer) error {
		return export.ExportJSON(w, *meta, x, grid)
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := "tissueheat.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// loadRun reads a stored grid and its metadata. Grids saved without metadata
// still load; their time step is unknown and reported as zero.
func loadRun(st *storage.Store, name string) (*storage.RunMetadata, []float64, *mat.Dense, error) {
	meta, err := st.Load(name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) || !st.Exists(name) {
			return nil, nil, nil, err
		}
		meta = &storage.RunMetadata{ID: name}
	}

	x, grid, err := st.LoadGrid(name)
	if err != nil {
		return nil, nil, nil, err
	}
	rows, cols := grid.Dims()
	meta.Rows, meta.Points = rows, cols
	return meta, x, grid, nil
}

// snapshotRows picks n evenly spaced rows between the first and the last,
// both included.
func snapshotRows(rows, n int) []int {
	if rows <= 0 {
		return nil
	}
	if n < 0 {
		n = 0
	}
	out := []int{0}
	for k := 1; k <= n; k++ {
		i := k * (rows - 1) / (n + 1)
		if i > out[len(out)-1] {
			out = append(out, i)
		}
	}
	if rows-1 > out[len(out)-1] {
		out = append(out, rows-1)
	}
	return out
}

func thresholds(c heat.PhysicalConstants) []float64 {
	out := make([]float64, c.N)
	for j := range out {
		out[j] = safety.Threshold(c, j)
	}
	return out
}

func plotPath(cfg *config.Config, override, name string) string {
	if override != "" {
		return override
	}
	return filepath.Join(cfg.Settings.PlotDir, name)
}

// metricCell formats a stored metric; non-finite values are not stored and
// show as "-".
func metricCell(m map[string]float64, key string) string {
	v, ok := m[key]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.3e", v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
