package lowflow

import (
	"fmt"
	"math"
	"time"
)

// AssembleSeries turns unordered observations into one DailyPoint per day
// between the earliest and latest retained date. Days without a row, rows
// without a flow, and non-finite flows become invalid points. When two rows
// share a date the later one in input order wins. Zero start/end mean
// unbounded.
func AssembleSeries(obs []Observation, start, end time.Time) ([]DailyPoint, error) {
	var lo, hi int64
	if !start.IsZero() {
		lo = dayNumber(start)
	}
	if !end.IsZero() {
		hi = dayNumber(end)
	}

	byDay := make(map[int64]Observation, len(obs))
	var first, last int64
	for _, o := range obs {
		d := dayNumber(o.Date)
		if !start.IsZero() && d < lo {
			continue
		}
		if !end.IsZero() && d > hi {
			continue
		}
		if len(byDay) == 0 {
			first, last = d, d
		}
		first = min(first, d)
		last = max(last, d)
		byDay[d] = o
	}

	if len(byDay) == 0 {
		return nil, fmt.Errorf("%w: no flow records in the requested period", ErrInsufficientData)
	}

	span := int(last-first) + 1
	if span < minSeriesDays {
		return nil, fmt.Errorf("%w: record spans %d days, need at least %d", ErrInsufficientData, span, minSeriesDays)
	}

	points := make([]DailyPoint, span)
	for i := range points {
		d := first + int64(i)
		p := DailyPoint{Date: time.Unix(d*86400, 0).UTC()}
		if o, ok := byDay[d]; ok && o.HasFlow && !math.IsNaN(o.Flow) && !math.IsInf(o.Flow, 0) {
			p.Flow = o.Flow
			p.Valid = true
		}
		points[i] = p
	}
	return points, nil
}

// ZeroFlowDays counts valid days with exactly zero flow.
func ZeroFlowDays(points []DailyPoint) int {
	n := 0
	for _, p := range points {
		if p.Valid && p.Flow == 0 {
			n++
		}
	}
	return n
}
