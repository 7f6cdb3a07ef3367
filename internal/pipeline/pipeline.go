package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/lowflow-etl/internal/domain"
	"github.com/couchcryptid/lowflow-etl/internal/observability"
)

// BatchExtractor reads up to batchSize flow requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns one flow request into a result event. An error means the
// request could not be processed at all and is skipped.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes result events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Retry delays after a failed extract or load.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline consumes flow requests, computes a result message for each, and
// publishes them. Source offsets are committed only after the results of a
// batch are published, or immediately for requests that cannot be parsed.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
	published   atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has published at least one
// result.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.published.Load() {
		return errors.New("pipeline has not published any results yet")
	}
	return nil
}

// Run processes batches until the context is cancelled. Extract and load
// failures are retried with exponential backoff; Run itself only returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	delay := initialBackoff
	for ctx.Err() == nil {
		if err := p.runBatch(ctx); err != nil {
			retry.SleepWithContext(ctx, delay)
			delay = retry.NextBackoff(delay, maxBackoff)
			continue
		}
		delay = initialBackoff
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// runBatch runs one extract-compute-load-commit cycle.
func (p *Pipeline) runBatch(ctx context.Context) error {
	start := time.Now()

	requests, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("extract batch failed", "error", err)
		}
		return err
	}
	if len(requests) == 0 {
		return nil
	}
	p.metrics.RequestsConsumed.Add(float64(len(requests)))
	p.metrics.BatchSize.Observe(float64(len(requests)))

	b, err := p.compute(ctx, requests)
	if err != nil {
		return err
	}
	if len(b.results) == 0 {
		return nil
	}

	if err := p.loader.LoadBatch(ctx, b.results); err != nil {
		if ctx.Err() == nil {
			p.logger.Error("load batch failed", "error", err, "batch_size", len(b.results))
		}
		return err
	}
	for _, r := range b.results {
		p.metrics.ResultsProduced.WithLabelValues(statusOf(r)).Inc()
	}
	for _, raw := range b.sources {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.published.Store(true)
	return nil
}

// batch pairs each result with the request it answers.
type batch struct {
	results []domain.OutputEvent
	sources []domain.RawEvent
}

// compute transforms every request of a batch. Requests that fail to
// transform are committed and dropped. Cancellation abandons the batch
// without committing, so it is redelivered.
func (p *Pipeline) compute(ctx context.Context, requests []domain.RawEvent) (batch, error) {
	b := batch{
		results: make([]domain.OutputEvent, 0, len(requests)),
		sources: make([]domain.RawEvent, 0, len(requests)),
	}
	for _, raw := range requests {
		out, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				return batch{}, ctx.Err()
			}
			p.logger.Warn("skipping unprocessable flow request",
				"error", err,
				"key", string(raw.Key),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		b.results = append(b.results, out)
		b.sources = append(b.sources, raw)
	}
	return b, nil
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// statusOf reads the result status header; events without one count as ok.
func statusOf(e domain.OutputEvent) string {
	if s := e.Headers["status"]; s != "" {
		return s
	}
	return domain.StatusOK
}
