package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pidsim/internal/loop"
)

// PlotSeries draws data with asciigraph, or a placeholder when empty.
func PlotSeries(data []float64, caption string, height, width int) string {
	if len(data) == 0 {
		return Subtle.Render("(no data: " + caption + ")")
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotResult draws the error, correction and plant state of a run.
func PlotResult(samples []loop.Sample, height, width int) string {
	errs := make([]float64, len(samples))
	corrections := make([]float64, len(samples))
	states := make([]float64, len(samples))
	for i, s := range samples {
		errs[i] = s.Error
		corrections[i] = s.Correction
		states[i] = s.State
	}

	plots := []string{
		PlotSeries(errs, "error vs step", height, width),
		PlotSeries(corrections, "correction vs step", height, width),
		PlotSeries(states, "plant state vs step", height, width),
	}
	return strings.Join(plots, "\n\n")
}

// MetricsTable renders metrics sorted by name.
func MetricsTable(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(MetricLabel.Render(name))
		b.WriteString(MetricValue.Render(fmt.Sprintf("%.6g", metrics[name])))
	}
	return b.String()
}
