// Package stats holds the small set of order and moment statistics the
// cleaning stages share. Quantiles use linear interpolation between order
// statistics (rank = p*(n-1)), the definition pandas and numpy use by default.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Quantile returns the p-quantile (0 <= p <= 1) of an ascending-sorted slice.
// It returns NaN for an empty slice.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	rank := p * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= n {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

// Quartiles returns Q1 and Q3 of x. x is not modified.
func Quartiles(x []float64) (q1, q3 float64) {
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	return Quantile(sorted, 0.25), Quantile(sorted, 0.75)
}

// Median returns the 0.5 quantile of x. x is not modified.
func Median(x []float64) float64 {
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	return Quantile(sorted, 0.5)
}

// MinMax returns the smallest and largest value of x, or NaNs when x is empty.
func MinMax(x []float64) (lo, hi float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(x), floats.Max(x)
}

// PopMeanStd returns the mean and the population (ddof=0) standard deviation.
func PopMeanStd(x []float64) (mean, std float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanStdDev(x, nil)
}
