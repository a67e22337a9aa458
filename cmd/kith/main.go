package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kithlabs/kith/pkg/engine"
	"github.com/kithlabs/kith/pkg/ingest"
	"github.com/kithlabs/kith/pkg/logging"
	"github.com/kithlabs/kith/pkg/store"
	redisstore "github.com/kithlabs/kith/pkg/store/redis"
)

func main() {
	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "kith: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{Level: config.LogLevel, JSON: config.LogJSON})
	if err != nil {
		fmt.Fprintf(os.Stderr, "kith: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, config Config, logger *slog.Logger) error {
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	logger.Info("starting run",
		"input", config.InputPath,
		"output", config.OutputPath,
		"threshold", config.Threshold,
	)

	if config.MetricsAddr != "" {
		shutdown := serveMetrics(config.MetricsAddr, logger)
		defer shutdown()
	}

	var runStore *store.Store
	if config.StorePath != "" {
		var err error
		runStore, err = store.NewStore(config.StorePath)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer runStore.Close()

		if err := runStore.BeginRun(ctx, store.Run{
			RunID:      runID,
			StartedAt:  time.Now(),
			InputPath:  config.InputPath,
			OutputPath: config.OutputPath,
			Threshold:  config.Threshold,
			Workers:    config.Workers,
		}); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}

	result, err := execute(ctx, config, logger)
	if err != nil {
		if runStore != nil {
			if storeErr := runStore.FailRun(context.WithoutCancel(ctx), runID, err); storeErr != nil {
				logger.Warn("failed to record run failure", "error", storeErr)
			}
		}
		return err
	}

	if runStore != nil {
		stored := make([]store.StoredRecommendation, 0, len(result.Recommendations))
		for _, r := range result.Recommendations {
			stored = append(stored, store.StoredRecommendation{RunID: runID, SourceID: r.Source, CandidateID: r.Candidate})
		}
		if err := runStore.SaveRecommendations(ctx, runID, stored); err != nil {
			return fmt.Errorf("persist recommendations: %w", err)
		}
		if err := runStore.CompleteRun(ctx, runID, result.Vertices, result.Edges, len(result.Recommendations)); err != nil {
			return fmt.Errorf("complete run: %w", err)
		}
	}

	if config.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: config.RedisAddr})
		defer client.Close()
		publisher := redisstore.NewPublisher(client, config.RedisTTL)
		if err := publisher.Publish(ctx, result.Recommendations); err != nil {
			return err
		}
		logger.Info("published recommendation sets", "addr", config.RedisAddr)
	}

	logger.Info("run complete",
		"vertices", result.Vertices,
		"edges", result.Edges,
		"recommendations", len(result.Recommendations),
	)
	return nil
}

// execute is the compute path: read edges, run the pipeline, publish the TSV
// output. Any error leaves the output path untouched.
func execute(ctx context.Context, config Config, logger *slog.Logger) (*engine.Result, error) {
	edges, err := ingest.ReadEdges(config.InputPath)
	if err != nil {
		return nil, err
	}

	pipeline := &engine.Pipeline{
		Threshold: config.Threshold,
		Workers:   config.Workers,
		Logger:    logger,
	}
	result, err := pipeline.Run(ctx, nil, edges)
	if err != nil {
		return nil, err
	}

	if err := ingest.WriteRecommendations(config.OutputPath, result.Recommendations); err != nil {
		return nil, err
	}
	return result, nil
}

// serveMetrics exposes /metrics while the run is in flight, for scraping
// long runs on large graphs. Errors are logged, never fatal.
func serveMetrics(addr string, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
