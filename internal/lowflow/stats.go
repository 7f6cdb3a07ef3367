package lowflow

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// spreadTolerance is the relative standard deviation below which a sample is
// treated as constant.
const spreadTolerance = 1e-12

// Summary holds the sample moments used by the fitters.
type Summary struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`

	// Skewness is only meaningful when HasSkewness; it needs n ≥ 3 and a
	// non-zero spread.
	Skewness    float64 `json:"skewness"`
	HasSkewness bool    `json:"has_skewness"`
}

// Summarize computes mean, unbiased variance (n−1) and the unbiased skewness
// n/((n−1)(n−2)) Σ((x−mean)/s)³.
func Summarize(x []float64) Summary {
	s := Summary{N: len(x)}
	switch s.N {
	case 0:
		return s
	case 1:
		s.Mean = x[0]
		return s
	}

	mean, variance := stat.MeanVariance(x, nil)
	s.Mean = mean
	if !finite(mean) || !finite(variance) {
		// Overflowed moments are unknown, not zero.
		s.Variance, s.StdDev = math.NaN(), math.NaN()
		return s
	}
	std := math.Sqrt(variance)
	if !(std > spreadTolerance*math.Max(1, math.Abs(mean))) {
		return s
	}
	s.Variance = variance
	s.StdDev = std

	if s.N >= 3 {
		g := stat.Skew(x, nil)
		if !math.IsNaN(g) && !math.IsInf(g, 0) {
			s.Skewness = g
			s.HasSkewness = true
		}
	}
	return s
}
