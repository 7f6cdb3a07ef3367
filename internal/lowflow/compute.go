package lowflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Option configures Compute.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	distributions []Distribution
}

// WithLogger traces quantiles, frequency factors, and exclusions at debug
// level. Without it Compute logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDistributions replaces the five default candidate families.
func WithDistributions(d ...Distribution) Option {
	return func(o *options) { o.distributions = d }
}

// Compute runs the full Q7,10 pipeline for one station. The first fatal
// stage error is returned wrapped around its sentinel; infeasible
// distributions are only reported in the diagnostic notes.
func Compute(req Request, opts ...Option) (Result, error) {
	o := options{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		distributions: Distributions(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With("station_id", req.StationID)

	params := req.Params.WithDefaults()
	if err := params.Validate(); err != nil {
		return Result{}, fmt.Errorf("station %s: %w", req.StationID, err)
	}

	points, err := AssembleSeries(req.Observations, params.Start, params.End)
	if err != nil {
		return Result{}, fmt.Errorf("station %s: assemble series: %w", req.StationID, err)
	}
	windows, err := MovingMeans(points, params.WindowSize)
	if err != nil {
		return Result{}, fmt.Errorf("station %s: %d-day windows: %w", req.StationID, params.WindowSize, err)
	}
	minima, err := AnnualMinima(windows, params.YearType, params.HydroStartMonth)
	if err != nil {
		return Result{}, fmt.Errorf("station %s: annual minima: %w", req.StationID, err)
	}
	if len(minima) < params.MinYears {
		return Result{}, fmt.Errorf("station %s: %w: %d years of annual minima, need at least %d",
			req.StationID, ErrInsufficientYears, len(minima), params.MinYears)
	}

	sample := minimaValues(minima)
	summary := Summarize(sample)
	log.Debug("annual minima summarized",
		"years", summary.N,
		"mean", summary.Mean,
		"std_dev", summary.StdDev,
		"skewness", summary.Skewness,
		"has_skewness", summary.HasSkewness,
	)

	var (
		fits     []DistributionFit
		models   []Model
		excluded []FitOutcome
	)
	for _, oc := range FitAll(sample, o.distributions) {
		if oc.Err == nil {
			fit, err := NewDistributionFit(oc.Model, TargetProbability)
			if err == nil {
				log.Debug("distribution fitted",
					"distribution", fit.Name,
					"k_factor", fit.KFactor,
					"point_estimate", fit.PointEstimate,
					"ci_lower", fit.CILower,
					"ci_upper", fit.CIUpper,
				)
				fits = append(fits, fit)
				models = append(models, oc.Model)
				continue
			}
			oc.Err = err
		}
		log.Debug("distribution excluded", "distribution", oc.Distribution, "reason", oc.Err)
		excluded = append(excluded, oc)
	}

	best, err := SelectBest(fits)
	if err != nil {
		return Result{}, fmt.Errorf("station %s: %w", req.StationID, err)
	}
	curves, err := ReturnPeriodCurves(models, StandardReturnPeriods())
	if err != nil {
		return Result{}, fmt.Errorf("station %s: return-period curves: %w", req.StationID, err)
	}

	zeroDays := ZeroFlowDays(points)
	return Result{
		StationID:          req.StationID,
		PeriodStart:        points[0].Date,
		PeriodEnd:          points[len(points)-1].Date,
		YearCount:          len(minima),
		ZeroFlowDayCount:   zeroDays,
		AnnualMinima:       minima,
		BestFit:            best,
		AllFits:            fits,
		ReturnPeriodCurves: curves,
		MethodNote:         methodNote(params, len(o.distributions), best),
		DiagnosticNotes:    DiagnosticNotes(summary, zeroDays, best, excluded),
	}, nil
}

func methodNote(p Params, candidates int, best DistributionFit) string {
	year := "calendar years"
	if p.YearType == HydrologicalYear {
		year = fmt.Sprintf("hydrological years starting in %s", p.HydroStartMonth)
	}
	return fmt.Sprintf(
		"Q%d,10 from %d-day moving-mean annual minima over %s; %d candidate distributions fitted at p=%.2f, %s selected for the narrowest %.0f%% confidence interval",
		p.WindowSize, p.WindowSize, year, candidates, TargetProbability, best.Name, ConfidenceLevel*100)
}

// Estimator is the service-facing entry point. It holds no per-run state and
// is safe for concurrent use.
type Estimator struct {
	logger *slog.Logger
}

// NewEstimator returns an Estimator tracing to logger.
func NewEstimator(logger *slog.Logger) *Estimator {
	return &Estimator{logger: logger}
}

// Estimate runs Compute. The context is checked once before starting; the
// computation itself is CPU-bound and not interruptible.
func (e *Estimator) Estimate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	res, err := Compute(req, WithLogger(e.logger))
	if err != nil {
		return Result{}, err
	}
	e.logger.Debug("q710 computed",
		"station_id", req.StationID,
		"best_fit", res.BestFit.Name,
		"q710", res.BestFit.PointEstimate,
		"duration", time.Since(start),
	)
	return res, nil
}
