package export

import (
	"fmt"
	"math"
	"strings"
)

// Series is one polyline of a chart.
type Series struct {
	Name   string
	Values []float64
	Stroke string
}

// DefaultStrokes colour series that leave Stroke empty, in order.
var DefaultStrokes = []string{"#00ff00", "#ff9f1c", "#2ec4f1", "#e84855"}

// TimeSeriesSVG draws every series against the shared time axis. Series
// shorter than times are drawn over their own length. A dashed line marks
// zero when it lies inside the plotted range. Fewer than two time points
// produce an empty string.
func TimeSeriesSVG(times []float64, series []Series, width, height int) string {
	if len(times) < 2 || len(series) == 0 {
		return ""
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for i, v := range s.Values {
			if i >= len(times) || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if math.IsInf(minY, 1) {
		return ""
	}

	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	px := func(t float64) float64 { return (t - minX) / rangeX * float64(width) }
	py := func(v float64) float64 { return float64(height) - (v-minY)/rangeY*float64(height) }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if minY < 0 && maxY > 0 {
		y := py(0)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444444" stroke-dasharray="4 4"/>
`, y, width, y))
	}

	for i, s := range series {
		stroke := s.Stroke
		if stroke == "" {
			stroke = DefaultStrokes[i%len(DefaultStrokes)]
		}

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke))
		pen := "M"
		for j, v := range s.Values {
			if j >= len(times) {
				break
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pen = "M"
				continue
			}
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%s%.1f,%.1f", pen, px(times[j]), py(v)))
			pen = "L"
		}
		sb.WriteString("\"/>\n")

		if s.Name != "" {
			sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(i+1), stroke, escape(s.Name)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
