//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lowflow-etl/internal/adapter/kafka"
	"github.com/couchcryptid/lowflow-etl/internal/config"
	"github.com/couchcryptid/lowflow-etl/internal/domain"
	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
	"github.com/couchcryptid/lowflow-etl/internal/observability"
	"github.com/couchcryptid/lowflow-etl/internal/pipeline"
	"github.com/couchcryptid/lowflow-etl/internal/synthetic"
)

const (
	testSourceTopic = "test-flow-requests"
	testSinkTopic   = "test-q710-results"
)

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
		Q710:               lowflow.DefaultParams(),
	}
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter round-trips one flow request through the adapters:
// extract, commit, compute, load, and read back from the sink topic.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	payload := flowRequestPayload(t, "SYN00001", synthetic.DefaultConfig())
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{Key: []byte("SYN00001"), Value: payload}))

	// The consumer group may need a rebalance before partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for len(batch) == 0 {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("SYN00001"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	transformer := pipeline.NewTransformer(newEstimator(), cfg.Q710, observability.NewMetricsForTesting(), discardLogger())
	event, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{event}))

	rm := readResult(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "SYN00001", rm.Key)
	assert.Equal(t, "SYN00001", rm.Headers["station_id"])
	assert.Equal(t, domain.StatusOK, rm.Headers["status"])
	_, err = time.Parse(time.RFC3339, rm.Headers["computed_at"])
	assert.NoError(t, err, "computed_at should be valid RFC3339")

	require.NotNil(t, rm.Msg.Result)
	assert.Equal(t, 30, rm.Msg.Result.YearCount)
	assert.Positive(t, rm.Msg.Result.BestFit.PointEstimate)
}

// TestPipelineEndToEnd runs the full pipeline over several stations, one of
// which is too short to fit and must surface as a failed result.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	const stations = 4
	msgs := make([]kafkago.Message, 0, stations+1)
	for i := range stations {
		sc := synthetic.DefaultConfig()
		sc.Seed = uint64(100 + i)
		sc.GapProbability = 0.02
		id := fmt.Sprintf("SYN%05d", i+1)
		msgs = append(msgs, kafkago.Message{Key: []byte(id), Value: flowRequestPayload(t, id, sc)})
	}
	short := synthetic.DefaultConfig()
	short.Years = 3
	msgs = append(msgs, kafkago.Message{Key: []byte("SHORT"), Value: flowRequestPayload(t, "SHORT", short)})

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(newEstimator(), cfg.Q710, metrics, discardLogger())
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	byStation := make(map[string]resultMessage, len(msgs))
	for len(byStation) < len(msgs) {
		rm := readResult(ctx, t, consumer)
		byStation[rm.Key] = rm
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	require.NoError(t, p.CheckReadiness(ctx))

	for i := range stations {
		rm := byStation[fmt.Sprintf("SYN%05d", i+1)]
		require.Equal(t, domain.StatusOK, rm.Msg.Status, rm.Msg.Error)
		res := rm.Msg.Result
		require.NotNil(t, res)
		assert.Equal(t, 30, res.YearCount)
		assert.Len(t, res.AnnualMinima, 30)
		assert.LessOrEqual(t, res.BestFit.CILower, res.BestFit.PointEstimate)
		assert.GreaterOrEqual(t, res.BestFit.CIUpper, res.BestFit.PointEstimate)
		assert.Len(t, res.ReturnPeriodCurves, len(res.AllFits))
	}

	failed := byStation["SHORT"]
	assert.Equal(t, domain.StatusFailed, failed.Msg.Status)
	assert.Equal(t, "insufficient_years", failed.Msg.Reason)
	assert.Equal(t, domain.StatusFailed, failed.Headers["status"])
	assert.Nil(t, failed.Msg.Result)
}

// TestPipelineTransformError verifies that a message that is not a flow
// request is skipped and later messages are still processed.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("SYN00001"), Value: flowRequestPayload(t, "SYN00001", synthetic.DefaultConfig())},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(newEstimator(), cfg.Q710, metrics, discardLogger())
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	rm := readResult(ctx, t, consumer)
	assert.Equal(t, "SYN00001", rm.Key)
	assert.Equal(t, domain.StatusOK, rm.Msg.Status)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
