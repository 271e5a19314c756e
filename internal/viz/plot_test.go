package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/pidsim/internal/loop"
)

func TestPlotSeriesEmpty(t *testing.T) {
	out := PlotSeries(nil, "error", 10, 40)
	if !strings.Contains(out, "no data") {
		t.Errorf("expected placeholder, got %q", out)
	}
}

func TestPlotResult(t *testing.T) {
	samples := []loop.Sample{
		{Step: 1, Error: 10, Correction: 16, State: 16},
		{Step: 2, Error: -6, Correction: -1.6, State: 14.4},
		{Step: 3, Error: -4.4, Correction: -3, State: 11.4},
	}

	out := PlotResult(samples, 5, 30)
	for _, caption := range []string{"error vs step", "correction vs step", "plant state vs step"} {
		if !strings.Contains(out, caption) {
			t.Errorf("expected caption %q in plot", caption)
		}
	}
}

func TestMetricsTableSorted(t *testing.T) {
	out := MetricsTable(map[string]float64{"overshoot": 0.3, "iae": 12.5})

	iae := strings.Index(out, "iae")
	overshoot := strings.Index(out, "overshoot")
	if iae < 0 || overshoot < 0 || iae > overshoot {
		t.Errorf("expected sorted metric names, got %q", out)
	}
	if !strings.Contains(out, "12.5") {
		t.Errorf("expected value in table, got %q", out)
	}
}

func TestSparklineWidth(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
	}{
		{"empty", nil, 5},
		{"shorter than width", []float64{1, -2, 3}, 10},
		{"trimmed to width", []float64{1, 2, 3, 4, 5, 6}, 4},
		{"all zero", []float64{0, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Sparkline(tt.values, tt.width)
			if out == "" {
				t.Error("expected non-empty sparkline")
			}
		})
	}
}
