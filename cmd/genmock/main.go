// Command genmock generates synthetic flow-request fixtures and the matching
// result messages. It runs the real computation so the expected results match
// pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -request-out data/mock/flow_requests.json \
//	  -result-out data/mock/q710_results.json \
//	  -stations 5 -years 30 -seed 42
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/lowflow-etl/internal/domain"
	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
	"github.com/couchcryptid/lowflow-etl/internal/synthetic"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	requestOut := flag.String("request-out", "", "output path for the flow request fixture")
	resultOut := flag.String("result-out", "", "output path for the expected result fixture")
	stations := flag.Int("stations", 5, "number of synthetic stations")
	years := flag.Int("years", 30, "years of record per station")
	seed := flag.Uint64("seed", 42, "seed of the first station; later stations add their index")
	gaps := flag.Float64("gap-probability", 0.01, "chance a non-trough day has no value")
	zeroYears := flag.Int("zero-years", 0, "leading years forced to zero flow on the last station")
	flag.Parse()

	if *requestOut == "" || *resultOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -request-out, -result-out")
	}
	if *stations < 1 {
		return fmt.Errorf("-stations must be at least 1, got %d", *stations)
	}

	// Fixed clock for reproducible computed_at values.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	estimator := lowflow.NewEstimator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	requests := make([]domain.FlowRequest, 0, *stations)
	results := make([]domain.ResultMessage, 0, *stations)

	for i := range *stations {
		cfg := synthetic.DefaultConfig()
		cfg.Years = *years
		cfg.Seed = *seed + uint64(i)
		cfg.GapProbability = *gaps
		if i == *stations-1 {
			cfg.ZeroFlowYears = *zeroYears
		}

		stationID := fmt.Sprintf("SYN%05d", i+1)
		fr := toFlowRequest(stationID, synthetic.Daily(cfg))
		requests = append(requests, fr)

		req, err := fr.ToRequest(lowflow.DefaultParams())
		if err != nil {
			return fmt.Errorf("station %s: %w", stationID, err)
		}
		res, err := estimator.Estimate(context.Background(), req)
		msg := domain.NewResultMessage(stationID, res, err)
		results = append(results, msg)
		logResult(msg)
	}

	if err := writeJSON(*requestOut, requests); err != nil {
		return fmt.Errorf("writing request fixture: %w", err)
	}
	log.Printf("wrote request fixture: %s", *requestOut)

	if err := writeJSON(*resultOut, results); err != nil {
		return fmt.Errorf("writing result fixture: %w", err)
	}
	log.Printf("wrote result fixture: %s", *resultOut)
	return nil
}

func toFlowRequest(stationID string, obs []lowflow.Observation) domain.FlowRequest {
	fr := domain.FlowRequest{StationID: stationID, Records: make([]domain.FlowRecord, len(obs))}
	for i, o := range obs {
		fr.Records[i].Date = o.Date.Format(time.DateOnly)
		if o.HasFlow {
			fr.Records[i].Flow = &o.Flow
		}
	}
	return fr
}

func logResult(msg domain.ResultMessage) {
	if msg.Status != domain.StatusOK {
		log.Printf("%s: %s (%s)", msg.StationID, msg.Status, msg.Reason)
		return
	}
	best := msg.Result.BestFit
	log.Printf("%s: %d years, q710=%g via %s [%g, %g]",
		msg.StationID, msg.Result.YearCount, best.PointEstimate, best.Name, best.CILower, best.CIUpper)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
