package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/lowflow-etl/internal/domain"
	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
	"github.com/couchcryptid/lowflow-etl/internal/observability"
)

// Estimator computes the Q7,10 statistic for one request.
type Estimator interface {
	Estimate(ctx context.Context, req lowflow.Request) (lowflow.Result, error)
}

// Q710Transformer implements Transformer: parse the flow request, compute,
// and serialize a result message. Fatal computation errors are published as
// failed results, not returned.
type Q710Transformer struct {
	estimator Estimator
	defaults  lowflow.Params
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewTransformer creates a Q710Transformer. defaults fill parameters the
// request leaves unset.
func NewTransformer(estimator Estimator, defaults lowflow.Params, metrics *observability.Metrics, logger *slog.Logger) *Q710Transformer {
	return &Q710Transformer{
		estimator: estimator,
		defaults:  defaults,
		metrics:   metrics,
		logger:    logger,
	}
}

func (t *Q710Transformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseFlowRequest(raw, t.defaults)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	start := time.Now()
	res, err := t.estimator.Estimate(ctx, req)
	t.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return domain.OutputEvent{}, err
		}
		reason := lowflow.Reason(err)
		t.metrics.ComputationFailures.WithLabelValues(reason).Inc()
		t.logger.Warn("q710 computation failed",
			"station_id", req.StationID,
			"reason", reason,
			"error", err,
		)
	} else {
		recordFits(t.metrics, res)
		t.logger.Info("q710 computed",
			"station_id", req.StationID,
			"years", res.YearCount,
			"best_fit", res.BestFit.Name,
			"q710", res.BestFit.PointEstimate,
		)
	}

	return domain.SerializeResult(domain.NewResultMessage(req.StationID, res, err))
}

// recordFits counts the selected distribution and every default candidate
// absent from the feasible fits.
func recordFits(m *observability.Metrics, res lowflow.Result) {
	m.SelectedFits.WithLabelValues(res.BestFit.Name).Inc()
	fitted := make(map[string]bool, len(res.AllFits))
	for _, f := range res.AllFits {
		fitted[f.Name] = true
	}
	for _, d := range lowflow.Distributions() {
		if !fitted[d.Name()] {
			m.InfeasibleFits.WithLabelValues(d.Name()).Inc()
		}
	}
}
