package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/icza/mjpeg"
	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/tissueheat/internal/viz"
)

type AnimationOptions struct {
	Title   string
	Width   int
	Height  int
	FPS     int
	Quality int
	// Stride keeps every Stride-th row; 0 picks one that yields at most
	// MaxFrames frames.
	Stride    int
	MaxFrames int
	// Limits, if set, is drawn in every frame as a second curve.
	Limits []float64
	// Label returns the caption of row i.
	Label func(i int) string
}

func (o AnimationOptions) withDefaults(rows int) AnimationOptions {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 500
	}
	if o.FPS <= 0 {
		o.FPS = 20
	}
	if o.Quality <= 0 {
		o.Quality = 90
	}
	if o.MaxFrames <= 0 {
		o.MaxFrames = 200
	}
	if o.Stride <= 0 {
		o.Stride = max((rows+o.MaxFrames-1)/o.MaxFrames, 1)
	}
	return o
}

// FrameRows lists the grid rows that become frames. The last row is always
// included.
func FrameRows(rows, stride int) []int {
	var out []int
	for i := 0; i < rows; i += stride {
		out = append(out, i)
	}
	if len(out) > 0 && out[len(out)-1] != rows-1 {
		out = append(out, rows-1)
	}
	return out
}

// Animate writes an MJPEG AVI with one chart frame per selected row. The
// vertical scale is fixed over the whole grid.
func Animate(path string, x []float64, g mat.Matrix, opts AnimationOptions) (int, error) {
	rows, cols := g.Dims()
	if rows == 0 || len(x) != cols {
		return 0, ErrNoData
	}
	opts = opts.withDefaults(rows)

	lo, hi := mat.Min(g), mat.Max(g)
	for _, v := range opts.Limits {
		lo, hi = min(lo, v), max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}

	aw, err := mjpeg.New(path, int32(opts.Width), int32(opts.Height), int32(opts.FPS))
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	frames := 0
	for _, i := range FrameRows(rows, opts.Stride) {
		series := []viz.Series{{Name: "T [°C]", Values: mat.Row(nil, i, g)}}
		if len(opts.Limits) == cols {
			series = append(series, viz.Series{Name: "limit", Values: opts.Limits})
		}
		title := opts.Title
		if opts.Label != nil {
			title = opts.Label(i)
		}

		graph, err := buildChart(x, series, ChartOptions{
			Title:  title,
			XLabel: "x [cm]",
			YLabel: "T [°C]",
			Width:  opts.Width,
			Height: opts.Height,
			YMin:   lo - pad,
			YMax:   hi + pad,
		})
		if err != nil {
			aw.Close()
			return frames, err
		}

		buf.Reset()
		if err := graph.Render(chart.PNG, &buf); err != nil {
			aw.Close()
			return frames, fmt.Errorf("frame %d: %w", i, err)
		}
		img, _, err := image.Decode(&buf)
		if err != nil {
			aw.Close()
			return frames, fmt.Errorf("frame %d: %w", i, err)
		}

		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
			aw.Close()
			return frames, err
		}
		if err := aw.AddFrame(buf.Bytes()); err != nil {
			aw.Close()
			return frames, err
		}
		frames++
	}
	return frames, aw.Close()
}
