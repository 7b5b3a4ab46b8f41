package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insights/internal/runs"
	"github.com/dvloznov/finance-insights/internal/runs/inmemory"
	"github.com/dvloznov/finance-insights/internal/summarize"
)

// runBatch queues one detection run per JSON file in a directory, drains
// the queue with a small worker pool, and prints the finished jobs. The
// file name (without extension) is treated as the user ID.
func runBatch(log zerolog.Logger) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	inputDir := fs.String("input-dir", "", "directory of per-user JSON transaction files")
	configPath := fs.String("config", "", "optional YAML config file")
	workers := fs.Int("workers", 2, "concurrent detection workers")
	fs.Parse(os.Args[2:])

	if *inputDir == "" {
		log.Fatal().Msg("Error: --input-dir is required")
	}

	ctx, detector, classifier := setup(log, *configPath)
	aggregator := summarize.New(summarize.WithClassifier(classifier))

	entries, err := os.ReadDir(*inputDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read input directory")
	}

	store := inmemory.NewStore()
	queue := inmemory.NewQueue(len(entries)+1, *workers, store)

	if err := queue.Start(ctx, runs.DetectionHandler(detector, aggregator)); err != nil {
		log.Fatal().Err(err).Msg("Cannot start run queue")
	}

	queued := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(*inputDir, entry.Name())
		job := &runs.DetectionJob{
			UserID:       strings.TrimSuffix(entry.Name(), ".json"),
			Transactions: loadTransactions(log, path),
		}
		if err := queue.PublishDetection(ctx, job); err != nil {
			log.Fatal().Err(err).Str("file", entry.Name()).Msg("Cannot queue detection run")
		}
		queued++
	}

	waitForRuns(log, store, queued)
	_ = queue.Stop(ctx)

	jobs, err := store.ListJobs(ctx, runs.Filter{})
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot list runs")
	}
	printJSON(log, jobs)
}

// waitForRuns polls the store until every queued run reaches a terminal
// state. Retries keep a run non-terminal, so this also waits them out.
func waitForRuns(log zerolog.Logger, store *inmemory.Store, queued int) {
	ctx := context.Background()
	for {
		completed, err := store.ListJobs(ctx, runs.Filter{Status: runs.StatusCompleted})
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot poll runs")
		}
		failed, err := store.ListJobs(ctx, runs.Filter{Status: runs.StatusFailed})
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot poll runs")
		}
		if len(completed)+len(failed) >= queued {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}
