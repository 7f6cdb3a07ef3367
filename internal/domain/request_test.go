package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
)

const testStation = "01646500"

func TestParseFlowRequest(t *testing.T) {
	data := []byte(`{
		"station_id": " 01646500 ",
		"records": [
			{"date": "1990-01-01", "flow": 412.5},
			{"date": "1990-01-02T18:30:00-05:00", "flow": 0},
			{"date": "1990-01-03", "flow": null},
			{"date": "1990-01-04"}
		],
		"params": {"window_size": 3, "year_type": "Hydrological", "hydro_start_month": 10, "start_date": "1990-01-01", "end_date": "2019-12-31", "min_years": 20}
	}`)

	req, err := ParseFlowRequest(RawEvent{Value: data}, lowflow.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, testStation, req.StationID)
	require.Len(t, req.Observations, 4)
	assert.Equal(t, lowflow.Observation{Date: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), Flow: 412.5, HasFlow: true}, req.Observations[0])
	assert.Equal(t, lowflow.Observation{Date: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), Flow: 0, HasFlow: true}, req.Observations[1])
	assert.False(t, req.Observations[2].HasFlow)
	assert.False(t, req.Observations[3].HasFlow)

	assert.Equal(t, lowflow.Params{
		WindowSize:      3,
		YearType:        lowflow.HydrologicalYear,
		HydroStartMonth: time.October,
		Start:           time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC),
		MinYears:        20,
	}, req.Params)
}

func TestParseFlowRequest_DefaultsApply(t *testing.T) {
	defaults := lowflow.DefaultParams()
	defaults.MinYears = 15

	req, err := ParseFlowRequest(RawEvent{Value: []byte(`{"station_id":"x","records":[]}`)}, defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, req.Params)
	assert.Empty(t, req.Observations)
}

func TestParseFlowRequest_MinYearsOnlyRaisesFloor(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"unset keeps default", 0, lowflow.DefaultMinYears},
		{"lower is ignored", 3, lowflow.DefaultMinYears},
		{"equal", lowflow.DefaultMinYears, lowflow.DefaultMinYears},
		{"higher applies", 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := fmt.Appendf(nil, `{"station_id":"x","records":[],"params":{"min_years":%d}}`, tt.requested)
			req, err := ParseFlowRequest(RawEvent{Value: data}, lowflow.DefaultParams())
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Params.MinYears)
		})
	}
}

func TestParseFlowRequest_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{not json`},
		{"missing station", `{"records":[{"date":"1990-01-01","flow":1}]}`},
		{"bad record date", `{"station_id":"x","records":[{"date":"01/02/1990","flow":1}]}`},
		{"bad start date", `{"station_id":"x","records":[],"params":{"start_date":"yesterday"}}`},
		{"bad end date", `{"station_id":"x","records":[],"params":{"end_date":"1990-13-01"}}`},
		{"flow as string", `{"station_id":"x","records":[{"date":"1990-01-01","flow":"1.0"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlowRequest(RawEvent{Value: []byte(tt.data)}, lowflow.DefaultParams())
			require.ErrorIs(t, err, ErrMalformedRequest)
		})
	}
}

func TestParseFlowRequest_InvalidParamsPassThrough(t *testing.T) {
	data := []byte(`{"station_id":"x","records":[],"params":{"window_size":-2,"year_type":"fiscal"}}`)

	req, err := ParseFlowRequest(RawEvent{Value: data}, lowflow.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, -2, req.Params.WindowSize)
	assert.ErrorIs(t, req.Params.Validate(), lowflow.ErrInvalidParams)
}
