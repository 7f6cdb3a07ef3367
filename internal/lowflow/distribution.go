package lowflow

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Distribution names, in the canonical order used for fitting, tie-breaking,
// and output.
const (
	NameNormal        = "Normal"
	NameLogNormal     = "Log-Normal"
	NamePearsonIII    = "Pearson III"
	NameLogPearsonIII = "Log-Pearson III"
	NameWeibull       = "Weibull"
)

// Distribution fits one candidate family to the annual-minimum sample.
// Fit returns an error wrapping ErrDistributionInfeasible when the family
// cannot describe the sample.
type Distribution interface {
	Name() string
	Fit(sample []float64) (Model, error)
}

// Model is a fitted distribution. Quantile re-evaluates the same parameter
// set at any non-exceedance probability without refitting.
type Model interface {
	Name() string
	Quantile(p float64) (Estimate, error)

	// Moments are the sample statistics in the space the model was fitted in
	// (log space for the log families).
	Moments() Summary
	Shape() ShapeParams
}

// Estimate is a quantile with its confidence interval. StandardError is
// expressed in the fitting space.
type Estimate struct {
	Probability   float64
	Value         float64
	Lower         float64
	Upper         float64
	StandardError float64
	KFactor       float64
}

// ShapeParams carries the parameters that apply to a family; the others are nil.
type ShapeParams struct {
	Alpha *float64 `json:"alpha,omitempty"`
	Beta  *float64 `json:"beta,omitempty"`
	Xi    *float64 `json:"xi,omitempty"`
	Shape *float64 `json:"shape,omitempty"`
	Scale *float64 `json:"scale,omitempty"`
}

// Distributions returns the five candidate families in canonical order.
func Distributions() []Distribution {
	return []Distribution{Normal{}, LogNormal{}, PearsonIII{}, LogPearsonIII{}, Weibull{}}
}

// FitOutcome is the result of one fitter: either Model or Err is set.
type FitOutcome struct {
	Distribution string
	Model        Model
	Err          error
}

// FitAll fits every distribution concurrently. Outcomes keep the order of
// dists regardless of completion order.
func FitAll(sample []float64, dists []Distribution) []FitOutcome {
	out := make([]FitOutcome, len(dists))
	var g errgroup.Group
	for i, d := range dists {
		g.Go(func() error {
			m, err := d.Fit(sample)
			out[i] = FitOutcome{Distribution: d.Name(), Model: m, Err: err}
			return nil
		})
	}
	_ = g.Wait() // fitters report through FitOutcome.Err
	return out
}

// DistributionFit is the reported summary of a fitted model at one probability.
type DistributionFit struct {
	Name          string      `json:"name"`
	PointEstimate float64     `json:"point_estimate"`
	CILower       float64     `json:"ci_lower"`
	CIUpper       float64     `json:"ci_upper"`
	CIWidth       float64     `json:"ci_width"`
	StandardError float64     `json:"standard_error"`
	Mean          float64     `json:"mean"`
	Variance      float64     `json:"variance"`
	Skewness      float64     `json:"skewness"`
	ShapeParams   ShapeParams `json:"shape_params"`
	KFactor       float64     `json:"k_factor"`
}

// NewDistributionFit evaluates m at p. A non-finite estimate or bound makes
// the fit infeasible.
func NewDistributionFit(m Model, p float64) (DistributionFit, error) {
	est, err := m.Quantile(p)
	if err != nil {
		return DistributionFit{}, err
	}
	for _, v := range []float64{est.Value, est.Lower, est.Upper, est.StandardError, est.KFactor} {
		if !finite(v) {
			return DistributionFit{}, infeasible(m.Name(), "quantile at p=%v is not finite", p)
		}
	}
	mom := m.Moments()
	return DistributionFit{
		Name:          m.Name(),
		PointEstimate: est.Value,
		CILower:       est.Lower,
		CIUpper:       est.Upper,
		CIWidth:       est.Upper - est.Lower,
		StandardError: est.StandardError,
		Mean:          mom.Mean,
		Variance:      mom.Variance,
		Skewness:      mom.Skewness,
		ShapeParams:   m.Shape(),
		KFactor:       est.KFactor,
	}, nil
}

// interval builds a symmetric interval center ± ciZ·se in the fitting space,
// exponentiating all three values for log-space models.
func interval(p, center, k, se float64, logSpace bool) Estimate {
	e := Estimate{
		Probability:   p,
		Value:         center,
		Lower:         center - ciZ*se,
		Upper:         center + ciZ*se,
		StandardError: se,
		KFactor:       k,
	}
	if logSpace {
		e.Value = math.Exp(e.Value)
		e.Lower = math.Exp(e.Lower)
		e.Upper = math.Exp(e.Upper)
	}
	return e
}

// checkSampleSize requires at least two annual values.
// checkMoments rejects a sample whose moments overflowed.
func checkMoments(name string, s Summary) error {
	if !finite(s.Mean) || !finite(s.Variance) {
		return infeasible(name, "moments of %d values are not finite", s.N)
	}
	return nil
}

func checkSampleSize(name string, n int) error {
	if n < 2 {
		return infeasible(name, "%d annual values, need at least 2", n)
	}
	return nil
}

// checkPositive rejects samples that cannot be log-transformed.
func checkPositive(name string, sample []float64) error {
	for _, v := range sample {
		if !(v > 0) {
			return infeasible(name, "non-positive annual minimum %v", v)
		}
	}
	return nil
}

func logSample(sample []float64) []float64 {
	out := make([]float64, len(sample))
	for i, v := range sample {
		out[i] = math.Log(v)
	}
	return out
}

func infeasible(name, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", name, ErrDistributionInfeasible, fmt.Sprintf(format, args...))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ptr(v float64) *float64 { return &v }
