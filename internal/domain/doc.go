// Package domain defines the wire envelopes around the Q7,10 computation.
//
// # Flow requests
//
// A source-topic message (and the body of POST /v1/q710) carries one
// station's daily record:
//
//	{
//	  "station_id": "01646500",
//	  "records": [{"date": "1990-01-01", "flow": 412.0}, {"date": "1990-01-02", "flow": null}],
//	  "params": {"window_size": 7, "year_type": "hydrological", "hydro_start_month": 10}
//	}
//
// Dates are ISO calendar dates or RFC 3339 timestamps; only the calendar date
// is kept. A null or absent flow marks a day the provider reported without a
// value. Params are optional and fall back to the service configuration.
//
// # Result messages
//
// Every parsed request yields one [ResultMessage] on the sink topic, keyed by
// station id. A computation that stops on a fatal condition (too short a
// record, no complete windows, every distribution infeasible) is published
// with status "failed", a stable reason label from [lowflow.Reason], and the
// error text. Messages that cannot be parsed at all are skipped.
//
// ComputedAt is the only wall-clock value in the message. The embedded result
// depends on the request alone, so replaying a request reproduces it exactly.
package domain
