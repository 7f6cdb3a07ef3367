package lowflow

import (
	"fmt"
	"slices"
)

var standardReturnPeriods = [...]int{2, 5, 10, 15, 20, 25, 30, 50, 75, 100}

// StandardReturnPeriods returns the reporting horizons in years.
func StandardReturnPeriods() []int {
	return slices.Clone(standardReturnPeriods[:])
}

// CurvePoint is one model evaluated at return period T (p = 1/T).
type CurvePoint struct {
	ReturnPeriod int     `json:"return_period"`
	Value        float64 `json:"value"`
	CILower      float64 `json:"ci_lower"`
	CIUpper      float64 `json:"ci_upper"`
}

// Curve is the return-period curve of one distribution.
type Curve struct {
	Distribution string       `json:"distribution"`
	Points       []CurvePoint `json:"points"`
}

// ReturnPeriodCurves re-evaluates every fitted model at each return period.
// Periods must exceed one year.
func ReturnPeriodCurves(models []Model, periods []int) ([]Curve, error) {
	curves := make([]Curve, 0, len(models))
	for _, m := range models {
		c := Curve{Distribution: m.Name(), Points: make([]CurvePoint, 0, len(periods))}
		for _, t := range periods {
			if t <= 1 {
				return nil, fmt.Errorf("%w: return period %d, must exceed 1 year", ErrInvalidParams, t)
			}
			est, err := m.Quantile(1 / float64(t))
			if err != nil {
				return nil, fmt.Errorf("%s at T=%d: %w", m.Name(), t, err)
			}
			c.Points = append(c.Points, CurvePoint{
				ReturnPeriod: t,
				Value:        est.Value,
				CILower:      est.Lower,
				CIUpper:      est.Upper,
			})
		}
		curves = append(curves, c)
	}
	return curves, nil
}
