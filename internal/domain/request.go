package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
)

// ErrMalformedRequest marks a request that cannot be turned into a
// computation at all: bad JSON, a missing station id, or an unreadable date.
var ErrMalformedRequest = errors.New("malformed flow request")

// ParseFlowRequest decodes a source-topic message into a computation request.
// Parameters the message leaves unset take their value from defaults.
func ParseFlowRequest(raw RawEvent, defaults lowflow.Params) (lowflow.Request, error) {
	req, err := DecodeFlowRequest(raw.Value)
	if err != nil {
		return lowflow.Request{}, err
	}
	return req.ToRequest(defaults)
}

// DecodeFlowRequest unmarshals a JSON flow request.
func DecodeFlowRequest(data []byte) (FlowRequest, error) {
	var req FlowRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return FlowRequest{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	return req, nil
}

// ToRequest converts the wire form. Parameter values are passed through
// unchecked; lowflow.Compute validates them so bad parameters yield a
// failed result rather than a dropped message.
func (r FlowRequest) ToRequest(defaults lowflow.Params) (lowflow.Request, error) {
	station := strings.TrimSpace(r.StationID)
	if station == "" {
		return lowflow.Request{}, fmt.Errorf("%w: station_id is required", ErrMalformedRequest)
	}

	obs := make([]lowflow.Observation, len(r.Records))
	for i, rec := range r.Records {
		d, err := parseDate(rec.Date)
		if err != nil {
			return lowflow.Request{}, fmt.Errorf("%w: records[%d]: %w", ErrMalformedRequest, i, err)
		}
		obs[i] = lowflow.Observation{Date: d}
		if rec.Flow != nil {
			obs[i].Flow = *rec.Flow
			obs[i].HasFlow = true
		}
	}

	params, err := r.Params.apply(defaults)
	if err != nil {
		return lowflow.Request{}, err
	}
	return lowflow.Request{StationID: station, Observations: obs, Params: params}, nil
}

func (p RequestParams) apply(defaults lowflow.Params) (lowflow.Params, error) {
	out := defaults
	if p.WindowSize != 0 {
		out.WindowSize = p.WindowSize
	}
	if p.YearType != "" {
		out.YearType = lowflow.YearType(strings.ToLower(strings.TrimSpace(p.YearType)))
	}
	if p.HydroStartMonth != 0 {
		out.HydroStartMonth = time.Month(p.HydroStartMonth)
	}
	if p.MinYears != 0 {
		// A request may demand a longer record, never accept a shorter one.
		out.MinYears = max(p.MinYears, defaults.MinYears)
	}
	if p.StartDate != "" {
		d, err := parseDate(p.StartDate)
		if err != nil {
			return lowflow.Params{}, fmt.Errorf("%w: start_date: %w", ErrMalformedRequest, err)
		}
		out.Start = d
	}
	if p.EndDate != "" {
		d, err := parseDate(p.EndDate)
		if err != nil {
			return lowflow.Params{}, fmt.Errorf("%w: end_date: %w", ErrMalformedRequest, err)
		}
		out.End = d
	}
	return out, nil
}

// parseDate accepts "2006-01-02" or RFC 3339 and keeps the calendar date as
// written, ignoring the time and offset.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
