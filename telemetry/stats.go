package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GapStats summarizes a sample of model-time advances.
type GapStats struct {
	Mean, P10, P50, P90 float64
}

// ComputeGapStats returns mean and percentiles of the given sample.
// An empty sample yields all zeros.
func ComputeGapStats(values []float64) GapStats {
	if len(values) == 0 {
		return GapStats{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return GapStats{
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}
