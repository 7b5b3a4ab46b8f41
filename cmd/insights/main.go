package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insights/internal/detect"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/enrich"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/memo"
	"github.com/dvloznov/finance-insights/internal/normalize"
	"github.com/dvloznov/finance-insights/internal/summarize"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "detect":
		runDetect(log)
	case "summary":
		runSummary(log)
	case "batch":
		runBatch(log)
	case "normalize":
		runNormalize(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  insights <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  detect     Detect recurring patterns in a JSON transaction file")
	fmt.Println("  summary    Detect patterns and print the subscription/income summary")
	fmt.Println("  batch      Queue detection runs for every JSON file in a directory")
	fmt.Println("  normalize  Print the normalized grouping key for a merchant string")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'insights <command> -h' for more information on a command.")
}

func runDetect(log zerolog.Logger) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	input := fs.String("input", "", "path to a JSON array of transactions")
	configPath := fs.String("config", "", "optional YAML config file")
	fs.Parse(os.Args[2:])

	ctx, detector, _ := setup(log, *configPath)

	patterns, err := detector.Detect(ctx, loadTransactions(log, *input))
	if err != nil {
		log.Fatal().Err(err).Msg("Detection failed")
	}
	printJSON(log, patterns)
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	input := fs.String("input", "", "path to a JSON array of transactions")
	configPath := fs.String("config", "", "optional YAML config file")
	categoriesPath := fs.String("categories", "", "optional YAML category keyword mappings")
	fs.Parse(os.Args[2:])

	ctx, detector, classifier := setup(log, *configPath)

	if *categoriesPath != "" {
		f, err := os.Open(*categoriesPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot open categories file")
		}
		if err := classifier.LoadMappings(f); err != nil {
			f.Close()
			log.Fatal().Err(err).Msg("Cannot load category mappings")
		}
		f.Close()
	}

	patterns, err := detector.Detect(ctx, loadTransactions(log, *input))
	if err != nil {
		log.Fatal().Err(err).Msg("Detection failed")
	}

	aggregator := summarize.New(summarize.WithClassifier(classifier))
	printJSON(log, aggregator.Summarize(patterns))
}

func runNormalize(log zerolog.Logger) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	merchant := fs.String("merchant", "", "raw merchant description")
	fs.Parse(os.Args[2:])

	if *merchant == "" {
		log.Fatal().Msg("Error: --merchant is required")
	}
	n := normalize.New()
	fmt.Printf("key:     %s\ndisplay: %s\n", n.Key(*merchant), n.DisplayName(*merchant))
}

// setup builds the detector and classifier from defaults plus an optional
// YAML config file.
func setup(log zerolog.Logger, configPath string) (context.Context, *detect.Detector, *summarize.KeywordClassifier) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	_ = cancel // run ends with the process
	ctx = logger.WithContext(ctx, log)

	cfg := detect.DefaultConfig()
	if configPath != "" {
		loaded, err := loadConfigFile(configPath, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid config file")
		}
		cfg = loaded
	}

	opts := []detect.DetectorOption{detect.WithMemo(memo.NewStore())}
	if cfg.EnableEnrichment {
		gemini, err := enrich.NewGeminiEnricher(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Enrichment unavailable, continuing deterministically")
		} else {
			gated := enrich.NewGate(gemini, enrich.GateConfig{
				MaxCostPerDay: cfg.EnrichmentMaxCostPerDay,
				CostPerCall:   0.001,
			})
			opts = append(opts, detect.WithEnricher(enrich.NewCache(gated, cfg.EnrichmentCacheTTL)))
		}
	}

	detector, err := detect.New(cfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	return ctx, detector, summarize.NewKeywordClassifier()
}

func loadTransactions(log zerolog.Logger, path string) []domain.Transaction {
	if path == "" {
		log.Fatal().Msg("Error: --input is required")
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot open input file")
	}
	defer f.Close()

	txs, err := detect.DecodeTransactions(f)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot decode transactions")
	}
	return txs
}

func printJSON(log zerolog.Logger, v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot encode output")
	}
	fmt.Println(string(out))
}
