package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
)

// NewResultMessage wraps the outcome of one computation. A nil err gives an
// "ok" message with the rounded result.
func NewResultMessage(stationID string, res lowflow.Result, err error) ResultMessage {
	msg := ResultMessage{StationID: stationID, ComputedAt: now()}
	if err != nil {
		msg.Status = StatusFailed
		msg.Reason = lowflow.Reason(err)
		msg.Error = err.Error()
		return msg
	}
	rounded := res.Rounded()
	msg.Status = StatusOK
	msg.Result = &rounded
	return msg
}

// SerializeResult builds the sink-topic event, keyed by station id.
func SerializeResult(msg ResultMessage) (OutputEvent, error) {
	value, err := json.Marshal(msg)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("marshal result message: %w", err)
	}
	return OutputEvent{
		Key:   []byte(msg.StationID),
		Value: value,
		Headers: map[string]string{
			"station_id":  msg.StationID,
			"status":      msg.Status,
			"computed_at": msg.ComputedAt.Format(time.RFC3339),
		},
	}, nil
}
