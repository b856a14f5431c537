package export

import (
	"image"
	"image/png"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/mat"
)

var (
	coldColor = drawing.Color{R: 49, G: 54, B: 149, A: 255}
	midColor  = drawing.Color{R: 255, G: 255, B: 191, A: 255}
	hotColor  = drawing.Color{R: 165, G: 0, B: 38, A: 255}
)

type HeatmapOptions struct {
	// CellWidth is the pixel width of one column.
	CellWidth int
	// MaxHeight caps the image height; rows are resampled to fit.
	MaxHeight int
	// Min and Max fix the color scale when Max > Min.
	Min, Max float64
}

// Heatmap writes the grid as a PNG with time running down and position to
// the right, colored from blue (coldest) to red (hottest).
func Heatmap(w io.Writer, g mat.Matrix, opts HeatmapOptions) error {
	img, err := HeatmapImage(g, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func HeatmapImage(g mat.Matrix, opts HeatmapOptions) (*image.RGBA, error) {
	rows, cols := g.Dims()
	if rows == 0 || cols == 0 {
		return nil, ErrNoData
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = 6
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = 600
	}

	lo, hi := opts.Min, opts.Max
	if !(hi > lo) {
		lo, hi = mat.Min(g), mat.Max(g)
	}

	height := min(rows, opts.MaxHeight)
	img := image.NewRGBA(image.Rect(0, 0, cols*opts.CellWidth, height))
	for y := 0; y < height; y++ {
		i := y * rows / height
		for j := 0; j < cols; j++ {
			c := Colormap(g.At(i, j), lo, hi)
			for dx := 0; dx < opts.CellWidth; dx++ {
				img.Set(j*opts.CellWidth+dx, y, c)
			}
		}
	}
	return img, nil
}

// Colormap maps v in [lo, hi] onto a diverging blue–yellow–red scale.
// Values outside the range are clamped.
func Colormap(v, lo, hi float64) drawing.Color {
	f := 0.5
	if hi > lo {
		f = (v - lo) / (hi - lo)
	}
	if math.IsNaN(f) {
		f = 1
	}
	f = min(max(f, 0), 1)
	if f < 0.5 {
		return lerp(coldColor, midColor, 2*f)
	}
	return lerp(midColor, hotColor, 2*f-1)
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + t*(float64(y)-float64(x))))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
