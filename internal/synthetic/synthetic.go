// Package synthetic generates reproducible daily streamflow records with a
// known low-flow distribution. The service's mock fixtures and the lowflow
// tests both use it.
package synthetic

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
)

// troughDays is the length of the annual low-flow recession. It exceeds the
// 7-day window so each year's minimum window lies entirely inside it.
const troughDays = 14

// Config describes a generated record.
type Config struct {
	Start time.Time
	Years int

	// BaseFlow is the mean of the seasonal signal outside the trough.
	BaseFlow float64

	// Trough levels are drawn from Weibull(LowFlowShape, LowFlowScale).
	LowFlowShape float64
	LowFlowScale float64

	// GapProbability is the chance that any day outside the trough is
	// reported without a value.
	GapProbability float64

	// ZeroFlowYears forces the trough of the first N years to zero.
	ZeroFlowYears int

	Seed uint64
}

// DefaultConfig is 30 calendar years from 1990 with a Weibull(2.5, 4)
// low-flow regime and no gaps.
func DefaultConfig() Config {
	return Config{
		Start:        time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		Years:        30,
		BaseFlow:     120,
		LowFlowShape: 2.5,
		LowFlowScale: 4,
		Seed:         42,
	}
}

// Daily returns one observation per day. The same Config always yields the
// same record.
func Daily(cfg Config) []lowflow.Observation {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	low := distuv.Weibull{K: cfg.LowFlowShape, Lambda: cfg.LowFlowScale}

	var obs []lowflow.Observation
	for y := range cfg.Years {
		yearStart := cfg.Start.AddDate(y, 0, 0)
		yearEnd := cfg.Start.AddDate(y+1, 0, 0)
		days := int(yearEnd.Sub(yearStart).Hours() / 24)

		trough := low.Quantile(uniform(rng))
		if y < cfg.ZeroFlowYears {
			trough = 0
		}
		troughStart := 200 + rng.IntN(60)

		for d := range days {
			date := yearStart.AddDate(0, 0, d)
			if d >= troughStart && d < troughStart+troughDays {
				obs = append(obs, lowflow.Observation{Date: date, Flow: trough, HasFlow: true})
				continue
			}
			if cfg.GapProbability > 0 && rng.Float64() < cfg.GapProbability {
				obs = append(obs, lowflow.Observation{Date: date})
				continue
			}
			season := 1 + 0.5*math.Sin(2*math.Pi*float64(d)/float64(days))
			flow := cfg.BaseFlow * season * (1 + 0.1*rng.NormFloat64())
			obs = append(obs, lowflow.Observation{Date: date, Flow: math.Max(flow, trough+1), HasFlow: true})
		}
	}
	return obs
}

// Constant returns years of calendar days all carrying flow.
func Constant(start time.Time, years int, flow float64) []lowflow.Observation {
	end := start.AddDate(years, 0, 0)
	var obs []lowflow.Observation
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		obs = append(obs, lowflow.Observation{Date: d, Flow: flow, HasFlow: true})
	}
	return obs
}

// uniform draws from the open interval (0, 1).
func uniform(rng *rand.Rand) float64 {
	for {
		if u := rng.Float64(); u > 0 {
			return u
		}
	}
}
