package viz

import (
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/safety"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a Braille dot grid of Width×Height cells, i.e. (2·Width)×(4·Height)
// dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y). Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// Count is the number of dots turned on.
func (c *Canvas) Count() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - brailleBlank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// ViolationMap resamples a physical grid onto a w×h cell canvas, time running
// down and position to the right, and marks every dot whose temperature is
// above the threshold of its column.
func ViolationMap(c heat.PhysicalConstants, g mat.Matrix, w, h int) *Canvas {
	canvas := NewCanvas(w, h)
	rows, cols := g.Dims()
	if rows == 0 || cols == 0 {
		return canvas
	}

	dotsX, dotsY := 2*w, 4*h
	for y := 0; y < dotsY; y++ {
		i := y * rows / dotsY
		for x := 0; x < dotsX; x++ {
			j := x * cols / dotsX
			if g.At(i, j) > safety.Threshold(c, j) {
				canvas.Set(x, y)
			}
		}
	}
	return canvas
}
