package lowflow

import (
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Output precision tiers.
const (
	flowPlaces  = 4
	paramPlaces = 6
)

// Result is the outcome of one Compute call. It is never mutated after
// construction; Rounded returns a copy.
type Result struct {
	StationID          string            `json:"station_id"`
	PeriodStart        time.Time         `json:"period_start"`
	PeriodEnd          time.Time         `json:"period_end"`
	YearCount          int               `json:"year_count"`
	ZeroFlowDayCount   int               `json:"zero_flow_day_count"`
	AnnualMinima       []AnnualMinimum   `json:"annual_minima"`
	BestFit            DistributionFit   `json:"best_fit"`
	AllFits            []DistributionFit `json:"all_fits"`
	ReturnPeriodCurves []Curve           `json:"return_period_curves"`
	MethodNote         string            `json:"method_note"`
	DiagnosticNotes    []string          `json:"diagnostic_notes"`
}

// Rounded returns a deep copy with flow and quantile values rounded to 4
// decimal places and shape, scale, skewness, and K-factors to 6.
func (r Result) Rounded() Result {
	out := r
	out.AnnualMinima = make([]AnnualMinimum, len(r.AnnualMinima))
	for i, m := range r.AnnualMinima {
		out.AnnualMinima[i] = AnnualMinimum{Year: m.Year, Value: roundTo(m.Value, flowPlaces)}
	}

	out.BestFit = r.BestFit.rounded()
	out.AllFits = make([]DistributionFit, len(r.AllFits))
	for i, f := range r.AllFits {
		out.AllFits[i] = f.rounded()
	}

	out.ReturnPeriodCurves = make([]Curve, len(r.ReturnPeriodCurves))
	for i, c := range r.ReturnPeriodCurves {
		pts := make([]CurvePoint, len(c.Points))
		for j, p := range c.Points {
			pts[j] = CurvePoint{
				ReturnPeriod: p.ReturnPeriod,
				Value:        roundTo(p.Value, flowPlaces),
				CILower:      roundTo(p.CILower, flowPlaces),
				CIUpper:      roundTo(p.CIUpper, flowPlaces),
			}
		}
		out.ReturnPeriodCurves[i] = Curve{Distribution: c.Distribution, Points: pts}
	}

	out.DiagnosticNotes = slices.Clone(r.DiagnosticNotes)
	return out
}

func (f DistributionFit) rounded() DistributionFit {
	return DistributionFit{
		Name:          f.Name,
		PointEstimate: roundTo(f.PointEstimate, flowPlaces),
		CILower:       roundTo(f.CILower, flowPlaces),
		CIUpper:       roundTo(f.CIUpper, flowPlaces),
		CIWidth:       roundTo(f.CIWidth, flowPlaces),
		StandardError: roundTo(f.StandardError, flowPlaces),
		Mean:          roundTo(f.Mean, flowPlaces),
		Variance:      roundTo(f.Variance, flowPlaces),
		Skewness:      roundTo(f.Skewness, paramPlaces),
		ShapeParams: ShapeParams{
			Alpha: roundPtr(f.ShapeParams.Alpha),
			Beta:  roundPtr(f.ShapeParams.Beta),
			Xi:    roundPtr(f.ShapeParams.Xi),
			Shape: roundPtr(f.ShapeParams.Shape),
			Scale: roundPtr(f.ShapeParams.Scale),
		},
		KFactor: roundTo(f.KFactor, paramPlaces),
	}
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(roundTo(*v, paramPlaces))
}

// roundTo rounds half away from zero in decimal, so 0.00005 → 0.0001.
// Non-finite values pass through.
func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
