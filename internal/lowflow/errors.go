package lowflow

import "errors"

var (
	// ErrInsufficientData means the record is empty or spans fewer than 365 days.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoCompleteWindows means no window of WindowSize consecutive valid days exists.
	ErrNoCompleteWindows = errors.New("no complete windows")

	// ErrNoAnnualValues means windowing produced no annual minimum.
	ErrNoAnnualValues = errors.New("no annual values")

	// ErrInsufficientYears means fewer annual minima than Params.MinYears.
	ErrInsufficientYears = errors.New("insufficient years")

	// ErrDistributionInfeasible is returned by a single fitter. It never aborts a run.
	ErrDistributionInfeasible = errors.New("distribution infeasible")

	// ErrNoFeasibleDistribution means every candidate distribution was infeasible.
	ErrNoFeasibleDistribution = errors.New("no feasible distribution")

	ErrInvalidParams = errors.New("invalid parameters")
)

// Reason maps an error from this package to a stable snake_case label for
// metrics and result messages.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrNoCompleteWindows):
		return "no_complete_windows"
	case errors.Is(err, ErrNoAnnualValues):
		return "no_annual_values"
	case errors.Is(err, ErrInsufficientYears):
		return "insufficient_years"
	case errors.Is(err, ErrNoFeasibleDistribution):
		return "no_feasible_distribution"
	case errors.Is(err, ErrDistributionInfeasible):
		return "distribution_infeasible"
	case errors.Is(err, ErrInvalidParams):
		return "invalid_params"
	default:
		return "internal"
	}
}
