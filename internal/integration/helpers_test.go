//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/lowflow-etl/internal/domain"
	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
	"github.com/couchcryptid/lowflow-etl/internal/synthetic"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the lifetime of the test and
// returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("lowflow-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// flowRequestPayload encodes a synthetic record as a source-topic message body.
func flowRequestPayload(t *testing.T, station string, cfg synthetic.Config) []byte {
	t.Helper()
	obs := synthetic.Daily(cfg)
	req := domain.FlowRequest{StationID: station, Records: make([]domain.FlowRecord, len(obs))}
	for i, o := range obs {
		req.Records[i].Date = o.Date.Format(time.DateOnly)
		if o.HasFlow {
			req.Records[i].Flow = &o.Flow
		}
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return data
}

// resultMessage is a decoded sink-topic message.
type resultMessage struct {
	Msg     domain.ResultMessage
	Key     string
	Headers map[string]string
}

// readResult reads and decodes one message from the sink consumer.
func readResult(ctx context.Context, t *testing.T, consumer *kafkago.Reader) resultMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	decoded, err := domain.DecodeResultMessage(msg.Value)
	require.NoError(t, err, "decode sink message")

	return resultMessage{Msg: decoded, Key: string(msg.Key), Headers: headers}
}

func newEstimator() *lowflow.Estimator {
	return lowflow.NewEstimator(discardLogger())
}
