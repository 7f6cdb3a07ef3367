package lowflow

import (
	"fmt"
	"slices"
	"time"
)

// YearOf returns the accounting year of a window ending on end. In a
// hydrological year, months before hydroStartMonth belong to the previous year.
func YearOf(end time.Time, yearType YearType, hydroStartMonth time.Month) int {
	y := end.Year()
	if yearType == HydrologicalYear && end.Month() < hydroStartMonth {
		y--
	}
	return y
}

// AnnualMinima keeps the smallest window mean per year, sorted by year.
func AnnualMinima(windows []WindowValue, yearType YearType, hydroStartMonth time.Month) ([]AnnualMinimum, error) {
	mins := make(map[int]float64)
	for _, w := range windows {
		y := YearOf(w.End, yearType, hydroStartMonth)
		if cur, ok := mins[y]; !ok || w.Mean < cur {
			mins[y] = w.Mean
		}
	}
	if len(mins) == 0 {
		return nil, fmt.Errorf("%w: no windows to reduce", ErrNoAnnualValues)
	}

	out := make([]AnnualMinimum, 0, len(mins))
	for y, v := range mins {
		out = append(out, AnnualMinimum{Year: y, Value: v})
	}
	slices.SortFunc(out, func(a, b AnnualMinimum) int { return a.Year - b.Year })
	return out, nil
}

func minimaValues(minima []AnnualMinimum) []float64 {
	out := make([]float64, len(minima))
	for i, m := range minima {
		out[i] = m.Value
	}
	return out
}
