package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/safety"
)

// ProfileToSVG draws one temperature profile as an SVG polyline. Positions
// are in metres and shown in centimetres; temperatures in °C. It returns ""
// when there is nothing to draw.
func ProfileToSVG(x, T []float64, width, height int, strokeColor string) string {
	if len(x) < 2 || len(x) != len(T) {
		return ""
	}

	minX, maxX := bounds(x)
	minY, maxY := bounds(T)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	px := func(v float64) float64 { return (v - minX) / rangeX * float64(width) }
	py := func(v float64) float64 { return float64(height) - (v-minY)/rangeY*float64(height) }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i := range x {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(x[i]), py(T[i])))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(x[i]), py(T[i])))
		}
	}
	sb.WriteString(`"/>
`)
	sb.WriteString(fmt.Sprintf(`<text x="4" y="12" fill="#888899" font-size="10">%.2f °C</text>
<text x="4" y="%d" fill="#888899" font-size="10">%.2f °C</text>
<text x="%d" y="%d" fill="#888899" font-size="10" text-anchor="end">%.2f cm</text>
`, maxY, height-4, minY, width-4, height-4, 100*maxX))
	sb.WriteString("</svg>")
	return sb.String()
}

// ThresholdSVG is ProfileToSVG with the damage thresholds drawn as a dashed
// line over the same scale.
func ThresholdSVG(c heat.PhysicalConstants, x, T []float64, width, height int, strokeColor string) string {
	base := ProfileToSVG(x, T, width, height, strokeColor)
	if base == "" {
		return ""
	}

	limits := make([]float64, len(T))
	for j := range limits {
		limits[j] = safety.Threshold(c, j)
	}

	minX, maxX := bounds(x)
	minY, maxY := bounds(T)
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}

	var sb strings.Builder
	sb.WriteString(`<path fill="none" stroke="#ff4444" stroke-width="1" stroke-dasharray="4 3" d="M`)
	for j := range x {
		sx := (x[j] - minX) / rangeX * float64(width)
		sy := float64(height) - (limits[j]-minY)/(maxY-minY)*float64(height)
		if j == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", sx, sy))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", sx, sy))
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return strings.TrimSuffix(base, "</svg>") + sb.String()
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}
