// Package lowflow estimates Q7,10, the 7-day minimum mean flow with a
// 10-year return period, from a daily flow record of one monitoring station.
//
// # Pipeline
//
// A single call to [Compute] runs seven stages strictly forward:
//
//	AssembleSeries      scattered (date, flow) rows → contiguous daily series, gaps materialized
//	MovingMeans         gap-free windows of WindowSize days → one mean per window
//	AnnualMinima        windows grouped by calendar or hydrological year → yearly minimum
//	Summarize           mean, variance (n−1), unbiased skewness of the annual minima
//	FitAll              Normal, Log-Normal, Pearson III, Log-Pearson III, Weibull
//	SelectBest          narrowest 95% confidence interval wins
//	ReturnPeriodCurves  every fitted model re-evaluated at T = 2…100 years
//
// No stage holds state between calls. The first fatal error stops the run and
// is returned wrapped around one of the package sentinels; an infeasible
// distribution only removes that distribution from the result.
//
// # Hydrological conventions
//
// Low flows are the lower tail of the annual-minimum distribution, so the
// T-year event is the quantile at non-exceedance probability p = 1/T
// (p = 0.1 for Q7,10). Frequency factors are therefore negative for the
// usual return periods.
//
// Year assignment uses the end date of each window. In a hydrological year
// starting in month M, a window ending before M belongs to the previous year:
// with M = October, a window ending 15 March 2011 counts towards 2010.
//
// Zero-flow days are valid observations. They enter window means with full
// weight and make the log-space families (Log-Normal, Log-Pearson III) and
// Weibull infeasible for that record.
//
// # Output precision
//
// [Result.Rounded] applies the two precision tiers used by the result
// consumers: flow and quantile values to 4 decimal places, shape, scale,
// skewness, and frequency factors to 6.
package lowflow
