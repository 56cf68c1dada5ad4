package tui

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/coagsim/internal/aerosol"
)

// floor for log plots of empty bins
const logFloor = -6.0

func logDensity(widths, x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		v := x[i] / widths[i]
		if v <= 0 {
			out[i] = logFloor
			continue
		}
		out[i] = math.Max(math.Log10(v), logFloor)
	}
	return out
}

// DistributionPlot draws log10 dN/dln r across the bins of one state.
func DistributionPlot(widths, x []float64, caption string) string {
	if len(x) == 0 {
		return ""
	}
	return asciigraph.Plot(logDensity(widths, x),
		asciigraph.Height(14), asciigraph.Width(60), asciigraph.Caption(caption))
}

// CompareDistributions plots several states of the same bins together, the
// first in blue and the rest in red, green and yellow.
func CompareDistributions(radii []float64, caption string, states ...[]float64) string {
	if len(states) == 0 || len(radii) == 0 {
		return ""
	}
	bins, err := aerosol.BinsFromCenters(radii)
	if err != nil {
		return ""
	}
	widths := bins.LogWidths()

	series := make([][]float64, 0, len(states))
	for _, s := range states {
		if len(s) != len(radii) {
			continue
		}
		series = append(series, logDensity(widths, s))
	}
	if len(series) == 0 {
		return ""
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(14), asciigraph.Width(60), asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green, asciigraph.Yellow))
}
