package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/nexpath/thermsim/internal/thermal"
)

// PlotHistory renders the max and material-average temperature traces
// of a run as a terminal graph.
func PlotHistory(samples []thermal.Sample, height int) string {
	if len(samples) == 0 {
		return "no history samples recorded"
	}

	maxSeries := make([]float64, len(samples))
	avgSeries := make([]float64, len(samples))
	for i, s := range samples {
		maxSeries[i] = s.MaxTemp
		avgSeries[i] = s.AvgTemp
	}

	graph := asciigraph.PlotMany(
		[][]float64{maxSeries, avgSeries},
		asciigraph.Height(height),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.Caption(fmt.Sprintf("temperature °C over %d samples (max / avg)", len(samples))),
	)

	var sb strings.Builder
	sb.WriteString(graph)
	sb.WriteString("\n")
	last := samples[len(samples)-1]
	sb.WriteString(fmt.Sprintf("t = %.2fs  max = %.1f°C  min = %.1f°C  avg = %.1f°C\n",
		last.Time, last.MaxTemp, last.MinTemp, last.AvgTemp))
	return sb.String()
}
