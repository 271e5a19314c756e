// Package viz renders loop results for the terminal.
//
// Plots are drawn with asciigraph; tables and panels are styled with
// lipgloss:
//
//	fmt.Println(viz.PlotSeries(result.Errors(), "error", 10, 80))
//	fmt.Println(viz.MetricsTable(result.Metrics))
package viz
