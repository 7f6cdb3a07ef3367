// Command q710 computes the 7-day, 10-year low flow for one station from a
// CSV of daily flows and prints the result as JSON.
//
// The CSV has a date,flow header. Dates are YYYY-MM-DD; an empty flow cell
// marks a day reported without a value.
//
// Usage:
//
//	go run ./cmd/q710 -csv flows.csv -station 01646500 -year-type hydrological -hydro-start 4
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "path to a date,flow CSV file")
	station := flag.String("station", "", "station identifier")
	window := flag.Int("window", lowflow.DefaultWindowSize, "moving-mean window in days")
	yearType := flag.String("year-type", string(lowflow.CalendarYear), "calendar or hydrological")
	hydroStart := flag.Int("hydro-start", int(lowflow.DefaultParams().HydroStartMonth), "first month of the hydrological year (1-12)")
	start := flag.String("start", "", "first date to include (YYYY-MM-DD)")
	end := flag.String("end", "", "last date to include (YYYY-MM-DD)")
	minYears := flag.Int("min-years", lowflow.DefaultMinYears, "minimum annual values required")
	verbose := flag.Bool("v", false, "log pipeline steps to stderr")
	flag.Parse()

	if *csvPath == "" || *station == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -station")
	}

	yt, err := lowflow.ParseYearType(strings.ToLower(*yearType))
	if err != nil {
		return err
	}
	params := lowflow.Params{
		WindowSize:      *window,
		YearType:        yt,
		HydroStartMonth: time.Month(*hydroStart),
		MinYears:        *minYears,
	}
	if params.Start, err = optionalDate(*start); err != nil {
		return fmt.Errorf("-start: %w", err)
	}
	if params.End, err = optionalDate(*end); err != nil {
		return fmt.Errorf("-end: %w", err)
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	obs, err := readObservations(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	res, err := lowflow.Compute(lowflow.Request{
		StationID:    *station,
		Observations: obs,
		Params:       params,
	}, lowflow.WithLogger(logger))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Rounded())
}

// readObservations parses a date,flow CSV. Column order follows the header.
func readObservations(r io.Reader) ([]lowflow.Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dateCol, flowCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			dateCol = i
		case "flow":
			flowCol = i
		}
	}
	if dateCol < 0 || flowCol < 0 {
		return nil, errors.New("header must contain date and flow columns")
	}

	var obs []lowflow.Observation
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return obs, nil
		}
		if err != nil {
			return nil, err
		}

		date, err := time.Parse(time.DateOnly, strings.TrimSpace(row[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		o := lowflow.Observation{Date: date}
		if cell := strings.TrimSpace(row[flowCol]); cell != "" {
			o.Flow, err = strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: flow %q: %w", line, cell, err)
			}
			o.HasFlow = true
		}
		obs = append(obs, o)
	}
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
