package lowflow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTo(t *testing.T) {
	tests := []struct {
		in     float64
		places int32
		want   float64
	}{
		{1.23456789, 4, 1.2346},
		{0.00005, 4, 0.0001},
		{-0.00005, 4, -0.0001},
		{2.5, 0, 3},
		{1.2345674, 6, 1.234567},
		{10, 4, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundTo(tt.in, tt.places), "roundTo(%v, %d)", tt.in, tt.places)
	}

	assert.True(t, math.IsNaN(roundTo(math.NaN(), 4)))
	assert.True(t, math.IsInf(roundTo(math.Inf(-1), 4), -1))
}

func TestResult_Rounded(t *testing.T) {
	r := Result{
		StationID:    "01646500",
		AnnualMinima: []AnnualMinimum{{Year: 2001, Value: 1.234567}},
		BestFit: DistributionFit{
			Name:          NamePearsonIII,
			PointEstimate: 1.234567,
			Skewness:      0.12345678,
			KFactor:       -1.12937182,
			ShapeParams:   ShapeParams{Alpha: ptr(5.9708454), Beta: ptr(0.875)},
		},
		ReturnPeriodCurves: []Curve{{
			Distribution: NamePearsonIII,
			Points:       []CurvePoint{{ReturnPeriod: 10, Value: 1.234567, CILower: 0.111111, CIUpper: 2.222222}},
		}},
		DiagnosticNotes: []string{"note"},
	}

	got := r.Rounded()

	assert.Equal(t, 1.2346, got.AnnualMinima[0].Value)
	assert.Equal(t, 1.2346, got.BestFit.PointEstimate)
	assert.Equal(t, 0.123457, got.BestFit.Skewness)
	assert.Equal(t, -1.129372, got.BestFit.KFactor)
	assert.Equal(t, 5.970845, *got.BestFit.ShapeParams.Alpha)
	assert.Nil(t, got.BestFit.ShapeParams.Shape)
	assert.Equal(t, CurvePoint{ReturnPeriod: 10, Value: 1.2346, CILower: 0.1111, CIUpper: 2.2222}, got.ReturnPeriodCurves[0].Points[0])

	// The source is untouched.
	assert.Equal(t, 1.234567, r.AnnualMinima[0].Value)
	assert.Equal(t, 5.9708454, *r.BestFit.ShapeParams.Alpha)
	got.DiagnosticNotes[0] = "changed"
	assert.Equal(t, "note", r.DiagnosticNotes[0])
}
