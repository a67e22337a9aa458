package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultThreshold = 20

// Config is everything the kith binary needs for one batch run. Input and
// output are required; every sink is optional and off by default.
type Config struct {
	InputPath   string
	OutputPath  string
	Threshold   int
	Workers     int
	StorePath   string
	RedisAddr   string
	RedisTTL    time.Duration
	MetricsAddr string
	LogLevel    string
	LogJSON     bool
}

// LoadConfig resolves flags with KITH_* environment fallbacks and validates
// the result before any file is touched. Validation failures must happen
// here, not mid-pipeline.
func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	input := os.Getenv("KITH_INPUT")
	output := os.Getenv("KITH_OUTPUT")
	threshold := defaultThreshold
	if env := os.Getenv("KITH_THRESHOLD"); env != "" {
		parsed, err := strconv.Atoi(env)
		if err != nil {
			return Config{}, fmt.Errorf("invalid KITH_THRESHOLD: %w", err)
		}
		threshold = parsed
	}
	workers := 0
	if env := os.Getenv("KITH_WORKERS"); env != "" {
		parsed, err := strconv.Atoi(env)
		if err != nil {
			return Config{}, fmt.Errorf("invalid KITH_WORKERS: %w", err)
		}
		workers = parsed
	}

	flagSet := flag.NewFlagSet("kith", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagInput := flagSet.String("input", input, "path to the edge list (TSV: source, target, weight)")
	flagOutput := flagSet.String("output", output, "path for the recommendation output (TSV)")
	flagThreshold := flagSet.Int("threshold", threshold, "exclusive minimum number of two-hop paths for a recommendation")
	flagWorkers := flagSet.Int("workers", workers, "parallel workers per stage (0 = auto)")
	flagStore := flagSet.String("store", os.Getenv("KITH_STORE_PATH"), "optional SQLite run store path")
	flagRedisAddr := flagSet.String("redis-addr", os.Getenv("KITH_REDIS_ADDR"), "optional Redis address for publishing recommendation sets")
	flagRedisTTL := flagSet.Duration("redis-ttl", 0, "TTL for published Redis sets (0 = keep)")
	flagMetricsAddr := flagSet.String("metrics-addr", os.Getenv("KITH_METRICS_ADDR"), "optional address to serve /metrics during the run")
	flagLogLevel := flagSet.String("log-level", envOrDefault("KITH_LOG_LEVEL", "info"), "log level: debug|info|warn|error")
	flagLogJSON := flagSet.Bool("log-json", false, "emit JSON logs")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	config := Config{
		InputPath:   resolvePath(*flagInput, cwd),
		OutputPath:  resolvePath(*flagOutput, cwd),
		Threshold:   *flagThreshold,
		Workers:     *flagWorkers,
		StorePath:   resolvePath(*flagStore, cwd),
		RedisAddr:   strings.TrimSpace(*flagRedisAddr),
		RedisTTL:    *flagRedisTTL,
		MetricsAddr: strings.TrimSpace(*flagMetricsAddr),
		LogLevel:    *flagLogLevel,
		LogJSON:     *flagLogJSON,
	}

	if config.InputPath == "" {
		return Config{}, errors.New("input is required")
	}
	if config.OutputPath == "" {
		return Config{}, errors.New("output is required")
	}
	if config.Threshold < 0 {
		return Config{}, fmt.Errorf("threshold must be non-negative, got %d", config.Threshold)
	}
	if config.Workers < 0 {
		return Config{}, fmt.Errorf("workers must be non-negative, got %d", config.Workers)
	}
	if config.RedisTTL < 0 {
		return Config{}, fmt.Errorf("redis-ttl must be non-negative, got %s", config.RedisTTL)
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
