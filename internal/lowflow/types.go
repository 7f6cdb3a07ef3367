package lowflow

import (
	"fmt"
	"time"
)

// YearType selects how windows are grouped into years.
type YearType string

const (
	CalendarYear     YearType = "calendar"
	HydrologicalYear YearType = "hydrological"
)

// ParseYearType accepts "calendar" or "hydrological". An empty string means calendar.
func ParseYearType(s string) (YearType, error) {
	switch YearType(s) {
	case "", CalendarYear:
		return CalendarYear, nil
	case HydrologicalYear:
		return HydrologicalYear, nil
	default:
		return "", fmt.Errorf("%w: unknown year type %q", ErrInvalidParams, s)
	}
}

const (
	DefaultWindowSize = 7
	DefaultMinYears   = 10

	// TargetProbability is the annual non-exceedance probability of the
	// 10-year low flow.
	TargetProbability = 0.1

	minSeriesDays = 365
)

// Observation is one source row. HasFlow is false when the provider reported
// the date without a value.
type Observation struct {
	Date    time.Time
	Flow    float64
	HasFlow bool
}

// DailyPoint is one calendar day of the assembled series. Flow is only
// meaningful when Valid.
type DailyPoint struct {
	Date  time.Time
	Flow  float64
	Valid bool
}

// WindowValue is the mean of a fully observed window.
type WindowValue struct {
	Start time.Time
	End   time.Time
	Mean  float64
}

// AnnualMinimum is the smallest window mean assigned to a year.
type AnnualMinimum struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Params controls windowing and year assignment. Zero values are replaced by
// the package defaults in [Params.WithDefaults].
type Params struct {
	WindowSize      int
	YearType        YearType
	HydroStartMonth time.Month

	// Start and End bound the record inclusively; zero means unbounded.
	Start time.Time
	End   time.Time

	MinYears int
}

// DefaultParams returns the standard Q7,10 configuration: 7-day windows over
// calendar years, at least 10 years of record.
func DefaultParams() Params {
	return Params{
		WindowSize:      DefaultWindowSize,
		YearType:        CalendarYear,
		HydroStartMonth: time.January,
		MinYears:        DefaultMinYears,
	}
}

// WithDefaults fills unset fields from [DefaultParams].
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.WindowSize == 0 {
		p.WindowSize = d.WindowSize
	}
	if p.YearType == "" {
		p.YearType = d.YearType
	}
	if p.HydroStartMonth == 0 {
		p.HydroStartMonth = d.HydroStartMonth
	}
	if p.MinYears == 0 {
		p.MinYears = d.MinYears
	}
	return p
}

// Validate reports the first malformed parameter.
func (p Params) Validate() error {
	if p.WindowSize < 1 {
		return fmt.Errorf("%w: window size %d, must be at least 1", ErrInvalidParams, p.WindowSize)
	}
	if _, err := ParseYearType(string(p.YearType)); err != nil {
		return err
	}
	if p.HydroStartMonth < time.January || p.HydroStartMonth > time.December {
		return fmt.Errorf("%w: hydrological start month %d outside 1-12", ErrInvalidParams, p.HydroStartMonth)
	}
	if p.MinYears < 1 {
		return fmt.Errorf("%w: minimum years %d, must be at least 1", ErrInvalidParams, p.MinYears)
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return fmt.Errorf("%w: end date %s before start date %s", ErrInvalidParams,
			p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly))
	}
	return nil
}

// Request is one station's record plus the computation parameters.
type Request struct {
	StationID    string
	Observations []Observation
	Params       Params
}

// civilDay truncates t to midnight UTC of its calendar date.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayNumber(t time.Time) int64 {
	return civilDay(t).Unix() / 86400
}
