// Package export writes grids and profiles to files for reports: PNG charts
// and heat maps, MJPEG animations and SVG profiles.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/tissueheat/internal/viz"
)

var ErrNoData = errors.New("export: nothing to draw")

var palette = []drawing.Color{
	{R: 220, G: 50, B: 47, A: 255},
	{R: 38, G: 139, B: 210, A: 255},
	{R: 133, G: 153, B: 0, A: 255},
	{R: 255, G: 165, B: 0, A: 255},
	{R: 108, G: 113, B: 196, A: 255},
	{R: 42, G: 161, B: 152, A: 255},
}

type ChartOptions struct {
	Title  string
	XLabel string
	YLabel string
	Width  int
	Height int
	// YMin and YMax fix the vertical range when YMax > YMin.
	YMin, YMax float64
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 500
	}
	if o.XLabel == "" {
		o.XLabel = "x [cm]"
	}
	return o
}

// ProfileChart renders temperature profiles over the physical axis x (metres)
// as a PNG.
func ProfileChart(w io.Writer, x []float64, series []viz.Series, opts ChartOptions) error {
	if opts.YLabel == "" {
		opts.YLabel = "T [°C]"
	}
	graph, err := buildChart(x, series, opts.withDefaults())
	if err != nil {
		return err
	}
	return graph.Render(chart.PNG, w)
}

// ErrorChart renders relative-error profiles as a PNG.
func ErrorChart(w io.Writer, x []float64, series []viz.Series, opts ChartOptions) error {
	if opts.YLabel == "" {
		opts.YLabel = "relative error"
	}
	if opts.Title == "" {
		opts.Title = "Relative error against the analytical solution"
	}
	graph, err := buildChart(x, series, opts.withDefaults())
	if err != nil {
		return err
	}
	return graph.Render(chart.PNG, w)
}

func buildChart(x []float64, series []viz.Series, opts ChartOptions) (*chart.Chart, error) {
	xcm := make([]float64, len(x))
	for j, v := range x {
		xcm[j] = 100 * v
	}

	var out []chart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		if len(s.Values) != len(x) {
			return nil, fmt.Errorf("export: series %q has %d points for %d positions", s.Name, len(s.Values), len(x))
		}
		for _, v := range s.Values {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				lo = min(lo, v)
				hi = max(hi, v)
			}
		}
		out = append(out, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xcm,
			YValues: s.Values,
			Style: chart.Style{
				StrokeColor: palette[i%len(palette)],
				StrokeWidth: 2,
			},
		})
	}
	if len(out) == 0 || math.IsInf(lo, 1) {
		return nil, ErrNoData
	}

	if opts.YMax > opts.YMin {
		lo, hi = opts.YMin, opts.YMax
	} else if hi-lo < 1e-12 {
		lo, hi = lo-1, hi+1
	}

	graph := &chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name: opts.XLabel,
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.2f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  opts.YLabel,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: out,
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph, nil
}

// WriteFile creates path and its directory and hands the file to render.
func WriteFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
