package lowflow

import (
	"fmt"
	"strings"
)

// Skewness range over which the frequency-factor approximations are trusted,
// and record lengths that qualify the confidence of the estimate.
const (
	skewLowerBound      = -1.02
	skewUpperBound      = 2.00
	minReliableYears    = 10
	unreliableYears     = 15
	highConfidenceYears = 30
)

// SelectBest returns the fit with the narrowest confidence interval. Ties go
// to the earliest fit in the slice.
func SelectBest(fits []DistributionFit) (DistributionFit, error) {
	if len(fits) == 0 {
		return DistributionFit{}, fmt.Errorf("%w: all candidate distributions were infeasible", ErrNoFeasibleDistribution)
	}
	best := fits[0]
	for _, f := range fits[1:] {
		if f.CIWidth < best.CIWidth {
			best = f
		}
	}
	return best, nil
}

// DiagnosticNotes describes the reliability of a run: skewness range, record
// length, zero-flow days, excluded distributions, and a negative selection.
func DiagnosticNotes(sample Summary, zeroFlowDays int, best DistributionFit, excluded []FitOutcome) []string {
	var notes []string

	switch {
	case !sample.HasSkewness:
		notes = append(notes, "warning: skewness of the annual minima is undefined (zero spread or fewer than 3 years)")
	case sample.Skewness < skewLowerBound || sample.Skewness > skewUpperBound:
		notes = append(notes, fmt.Sprintf(
			"warning: skewness %.4f of the annual minima is outside [%.2f, %.2f]; frequency factors are extrapolated",
			sample.Skewness, skewLowerBound, skewUpperBound))
	}

	switch {
	case sample.N < minReliableYears:
		notes = append(notes, fmt.Sprintf("warning: only %d years of annual minima; fewer than %d years is not recommended", sample.N, minReliableYears))
	case sample.N < unreliableYears:
		notes = append(notes, fmt.Sprintf("warning: %d years of record; estimates from fewer than %d years are unreliable", sample.N, unreliableYears))
	case sample.N >= highConfidenceYears:
		notes = append(notes, fmt.Sprintf("%d years of record; high confidence in the estimate", sample.N))
	}

	notes = append(notes, fmt.Sprintf("%d zero-flow days observed in the record", zeroFlowDays))

	for _, o := range excluded {
		notes = append(notes, fmt.Sprintf("%s excluded: %s", o.Distribution, exclusionReason(o.Err)))
	}

	if best.PointEstimate < 0 {
		notes = append(notes, fmt.Sprintf("warning: selected %s estimate %.4f is negative", best.Name, best.PointEstimate))
	}
	return notes
}

// exclusionReason strips the "<name>: distribution infeasible: " prefix that
// infeasible adds, leaving the specific cause.
func exclusionReason(err error) string {
	msg := err.Error()
	if _, cause, ok := strings.Cut(msg, ErrDistributionInfeasible.Error()+": "); ok {
		return cause
	}
	return msg
}
