package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// FlowRecord is one daily row of a flow request. Flow is null when the
// provider reported the date without a value.
type FlowRecord struct {
	Date string   `json:"date"`
	Flow *float64 `json:"flow"`
}

// RequestParams overrides the service defaults for one request. Zero values
// and empty strings keep the default.
type RequestParams struct {
	WindowSize      int    `json:"window_size,omitempty"`
	YearType        string `json:"year_type,omitempty"`
	HydroStartMonth int    `json:"hydro_start_month,omitempty"`
	StartDate       string `json:"start_date,omitempty"`
	EndDate         string `json:"end_date,omitempty"`
	MinYears        int    `json:"min_years,omitempty"`
}

// FlowRequest is the JSON body of a source-topic message and of POST /v1/q710.
type FlowRequest struct {
	StationID string        `json:"station_id"`
	Records   []FlowRecord  `json:"records"`
	Params    RequestParams `json:"params"`
}

// Result statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ResultMessage is published for every parsed request. A failed computation
// carries Reason and the error text instead of Result.
type ResultMessage struct {
	StationID  string          `json:"station_id"`
	Status     string          `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	Error      string          `json:"error,omitempty"`
	Result     *lowflow.Result `json:"result,omitempty"`
	ComputedAt time.Time       `json:"computed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// DecodeResultMessage is the inverse of SerializeResult's payload. Consumers
// and tests use it to read the sink topic.
func DecodeResultMessage(value []byte) (ResultMessage, error) {
	var msg ResultMessage
	err := json.Unmarshal(value, &msg)
	return msg, err
}
