package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/tissueheat/internal/config"
	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/storage"
	"github.com/san-kum/tissueheat/internal/viz"
)

var (
	configFile string
	dataDir    string
	preset     string
	verbose    bool

	ratios   []float64
	points   int
	duration float64
	workers  int

	atTime    float64
	snapshots int
	width     int
	height    int
	outPath   string
	fps       int
	stride    int
	noLimits  bool
	cellWidth int
	themeName string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tissueheat",
		Short: "heat diffusion in tissue under an applied voltage",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (overrides data_dir)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "preset applied before the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scheme|all]",
		Short: "integrate one scheme (or all) over its step ratios",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	runCmd.Flags().Float64SliceVar(&ratios, "q", nil, "step ratios dt/dx² (single scheme only)")
	runCmd.Flags().IntVar(&points, "n", 0, "grid points")
	runCmd.Flags().Float64Var(&duration, "time", 0, "dimensionless duration t_a")
	runCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs")

	analyticCmd := &cobra.Command{
		Use:   "analytic",
		Short: "plot the series solution at a given time",
		Args:  cobra.NoArgs,
		RunE:  analyticProfile,
	}
	analyticCmd.Flags().Float64Var(&atTime, "at", 0, "dimensionless time (default t_a)")
	analyticCmd.Flags().IntVar(&points, "n", 0, "grid points")
	analyticCmd.Flags().StringVarP(&outPath, "out", "o", "", "also write the profile as SVG")
	analyticCmd.Flags().StringVar(&themeName, "theme", "", themeHelp())

	limitsCmd := &cobra.Command{
		Use:   "limits",
		Short: "maximum treatment time before tissue damage",
		Args:  cobra.NoArgs,
		RunE:  safeLimits,
	}
	limitsCmd.Flags().IntVar(&points, "n", 0, "grid points")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run]",
		Short: "terminal plot of a stored run against the analytical profile",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&snapshots, "rows", 3, "number of intermediate rows to draw")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 15, "plot height")
	plotCmd.Flags().StringVar(&themeName, "theme", "", themeHelp())

	viewCmd := &cobra.Command{
		Use:   "view [run]",
		Short: "interactive viewer (run picker without an argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  viewRun,
	}
	viewCmd.Flags().StringVar(&themeName, "theme", "", themeHelp())

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "relative error of every stored run against the analytical profile",
		Args:  cobra.NoArgs,
		RunE:  compareRuns,
	}
	compareCmd.Flags().IntVar(&width, "width", 80, "plot width")
	compareCmd.Flags().IntVar(&height, "height", 12, "plot height")

	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "write PNG profile and error charts per scheme",
		Args:  cobra.NoArgs,
		RunE:  chartRuns,
	}
	chartCmd.Flags().IntVar(&width, "width", 900, "image width")
	chartCmd.Flags().IntVar(&height, "height", 540, "image height")

	heatmapCmd := &cobra.Command{
		Use:   "heatmap [run]",
		Short: "write a time × position PNG heat map",
		Args:  cobra.ExactArgs(1),
		RunE:  heatmapRun,
	}
	heatmapCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <plot_dir>/<run>_heatmap.png)")
	heatmapCmd.Flags().IntVar(&cellWidth, "cell", 4, "pixels per grid column")
	heatmapCmd.Flags().IntVar(&height, "height", 600, "maximum image height")

	animateCmd := &cobra.Command{
		Use:   "animate [run]",
		Short: "write an MJPEG (AVI) animation of the profile",
		Args:  cobra.ExactArgs(1),
		RunE:  animateRun,
	}
	animateCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <plot_dir>/<run>.avi)")
	animateCmd.Flags().IntVar(&fps, "fps", 20, "frame rate")
	animateCmd.Flags().IntVar(&stride, "stride", 0, "keep every n-th row (0 = auto)")
	animateCmd.Flags().BoolVar(&noLimits, "no-limits", false, "do not draw the damage thresholds")

	svgCmd := &cobra.Command{
		Use:   "svg [run]",
		Short: "write the final profile of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	svgCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <plot_dir>/<run>.svg)")
	svgCmd.Flags().IntVar(&width, "width", 600, "image width")
	svgCmd.Flags().IntVar(&height, "height", 300, "image height")
	svgCmd.Flags().BoolVar(&noLimits, "no-limits", false, "do not draw the damage thresholds")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run]",
		Short: "write a stored run as JSON (stdout without --out)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			slices.Sort(names)
			for _, name := range names {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the current configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	})

	rootCmd.AddCommand(runCmd, analyticCmd, limitsCmd, listCmd, plotCmd, viewCmd, compareCmd,
		chartCmd, heatmapCmd, animateCmd, svgCmd, exportJSONCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, the preset, the config file and finally the
// flags the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if !config.Apply(cfg, preset) {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if _, err := config.LoadOver(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Settings.DataDir = dataDir
	}
	if flags.Changed("n") {
		cfg.Constants.N = points
	}
	if flags.Changed("time") {
		cfg.Constants.TA = duration
	}
	if flags.Changed("workers") {
		cfg.Settings.Workers = workers
	}
	if verbose {
		cfg.Settings.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	st := storage.New(cfg.Settings.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// runConstants adapts the configured constants to the grid a run was stored
// with.
func runConstants(cfg *config.Config, meta *storage.RunMetadata) heat.PhysicalConstants {
	c := cfg.PhysicalConstants()
	if meta.Points > 0 {
		c.N = meta.Points
	}
	return c
}

func themeHelp() string {
	return "color theme (" + strings.Join(viz.ThemeNames(), ", ") + ")"
}

// pickTheme resolves --theme; empty means the default theme.
func pickTheme() (viz.Theme, error) {
	if themeName == "" {
		return viz.Themes[0], nil
	}
	if !slices.Contains(viz.ThemeNames(), themeName) {
		return viz.Theme{}, fmt.Errorf("unknown theme: %s (available: %v)", themeName, viz.ThemeNames())
	}
	return viz.GetTheme(themeName), nil
}
