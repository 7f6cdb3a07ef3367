package lowflow

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Weibull estimates shape and scale by plotting-position regression. The
// sample is ranked ascending, the i-th value (1-based) gets F = i/(n+1), and
//
//	ln(−ln(1−F)) = A + B·ln(x)
//
// is fitted by ordinary least squares: shape = B, scale = exp(−A/B).
type Weibull struct{}

func (Weibull) Name() string { return NameWeibull }

func (Weibull) Fit(sample []float64) (Model, error) {
	if err := checkSampleSize(NameWeibull, len(sample)); err != nil {
		return nil, err
	}
	if err := checkPositive(NameWeibull, sample); err != nil {
		return nil, err
	}

	sorted := slices.Clone(sample)
	slices.Sort(sorted)

	n := len(sorted)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, v := range sorted {
		f := float64(i+1) / float64(n+1)
		xs[i] = math.Log(v)
		ys[i] = math.Log(-math.Log(1 - f))
	}

	if err := checkRegression(xs, ys); err != nil {
		return nil, err
	}
	a, b := stat.LinearRegression(xs, ys, nil, false)
	shape := b
	scale := math.Exp(-a / b)
	if err := checkWeibullShape(shape, scale); err != nil {
		return nil, err
	}

	return weibullModel{shape: shape, scale: scale, moments: Summarize(sample)}, nil
}

// checkRegression rejects a degenerate design: no spread in ln(x) or no
// covariance between ln(x) and the linearized plotting positions.
func checkRegression(xs, ys []float64) error {
	sx := Summarize(xs).StdDev
	if sx == 0 {
		return infeasible(NameWeibull, "regression degenerate: zero variance in ln(flow)")
	}
	sy := Summarize(ys).StdDev
	cov := stat.Covariance(xs, ys, nil)
	if !finite(cov) || math.Abs(cov) <= spreadTolerance*sx*sy {
		return infeasible(NameWeibull, "regression degenerate: zero cross-product term")
	}
	return nil
}

func checkWeibullShape(shape, scale float64) error {
	if !finite(shape) || !finite(scale) || !(shape > 0) || !(scale > 0) {
		return infeasible(NameWeibull, "invalid parameters shape=%v scale=%v", shape, scale)
	}
	return nil
}

type weibullModel struct {
	shape   float64
	scale   float64
	moments Summary
}

func (m weibullModel) Name() string     { return NameWeibull }
func (m weibullModel) Moments() Summary { return m.moments }

func (m weibullModel) Shape() ShapeParams {
	return ShapeParams{Shape: ptr(m.shape), Scale: ptr(m.scale)}
}

// Quantile inverts the Weibull CDF. The standard error borrows the normal
// formula with the equivalent frequency factor k = (value − mean)/std.
func (m weibullModel) Quantile(p float64) (Estimate, error) {
	if err := checkProbability(p); err != nil {
		return Estimate{}, err
	}
	value := m.scale * math.Pow(-math.Log(1-p), 1/m.shape)
	var k float64
	if m.moments.StdDev > 0 {
		k = (value - m.moments.Mean) / m.moments.StdDev
	}
	se := normalStandardError(m.moments.StdDev, m.moments.N, k)
	return interval(p, value, k, se, false), nil
}
