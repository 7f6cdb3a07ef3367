package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Q710 holds the defaults applied to requests that omit parameters.
	Q710 lowflow.Params

	// ResultCacheSize bounds the memoized results; 0 disables the cache.
	ResultCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	params, err := parseQ710Params()
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseNonNegativeInt("RESULT_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "flow-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "q710-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "lowflow-q710"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		Q710:               params,
		ResultCacheSize:    cacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parseQ710Params() (lowflow.Params, error) {
	p := lowflow.DefaultParams()

	window, err := parsePositiveInt("Q710_WINDOW_SIZE", p.WindowSize)
	if err != nil {
		return lowflow.Params{}, err
	}
	p.WindowSize = window

	yearType, err := lowflow.ParseYearType(strings.ToLower(os.Getenv("Q710_YEAR_TYPE")))
	if err != nil {
		return lowflow.Params{}, fmt.Errorf("invalid Q710_YEAR_TYPE: %w", err)
	}
	p.YearType = yearType

	month, err := parsePositiveInt("Q710_HYDRO_START_MONTH", int(p.HydroStartMonth))
	if err != nil {
		return lowflow.Params{}, err
	}
	if month > 12 {
		return lowflow.Params{}, fmt.Errorf("invalid Q710_HYDRO_START_MONTH %d: must be 1-12", month)
	}
	p.HydroStartMonth = time.Month(month)

	minYears, err := parsePositiveInt("Q710_MIN_YEARS", p.MinYears)
	if err != nil {
		return lowflow.Params{}, err
	}
	p.MinYears = minYears

	return p, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	n, err := parseNonNegativeInt(key, def)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return n, nil
}

func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, s)
	}
	return n, nil
}
