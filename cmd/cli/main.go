package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/app"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/domain"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/insight"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/service"
	"github.com/dvloznov/finance-insights/internal/snapshot"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Logs go to stderr so stdout carries only command output.
	log := logger.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(cfg.LogLevel)

	switch os.Args[1] {
	case "insight":
		runInsight(log, cfg)
	case "stored":
		runStored(log, cfg)
	case "categories":
		printCategories(os.Stdout)
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
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  insight     Generate an insight from a JSON snapshot (file or gs:// URI)")
	fmt.Println("  stored      Generate an insight from transactions stored in BigQuery")
	fmt.Println("  categories  List the categories accepted for each kind")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runInsight(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("insight", flag.ExitOnError)
	location := fs.String("snapshot", "", "Path or gs:// URI of the transaction snapshot")
	fs.Parse(os.Args[2:])

	if *location == "" {
		log.Fatal().Msg("Error: --snapshot is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	txs, err := snapshot.NewLoader(nil).Load(ctx, *location)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load snapshot")
	}
	log.Info().Str("snapshot", *location).Int("transactions", len(txs)).Msg("Snapshot loaded")

	result := service.NewInsightService(app.NewGenerator(cfg), nil).Generate(ctx, "", txs)
	if err := printInsight(os.Stdout, result); err != nil {
		log.Fatal().Err(err).Msg("Failed to print insight")
	}
}

func runStored(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("stored", flag.ExitOnError)
	userID := fs.String("user-id", "", "User whose transactions are analysed")
	fromStr := fs.String("from", "", "First date of the range (YYYY-MM-DD)")
	toStr := fs.String("to", "", "Last date of the range (YYYY-MM-DD)")
	fs.Parse(os.Args[2:])

	if *userID == "" || *fromStr == "" || *toStr == "" {
		log.Fatal().Msg("Usage: cli stored -user-id ID -from YYYY-MM-DD -to YYYY-MM-DD")
	}
	if !cfg.BigQueryEnabled() {
		log.Fatal().Msg("Error: BIGQUERY_PROJECT is not set")
	}

	from, err := civil.ParseDate(*fromStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid --from")
	}
	to, err := civil.ParseDate(*toStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid --to")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	result, err := service.NewInsightService(app.NewGenerator(cfg), repo).GenerateForRange(ctx, *userID, from, to)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate insight")
	}
	if err := printInsight(os.Stdout, result); err != nil {
		log.Fatal().Err(err).Msg("Failed to print insight")
	}
}

func printInsight(w io.Writer, in insight.Insight) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(in)
}

func printCategories(w io.Writer) {
	for _, kind := range []domain.Kind{domain.KindIncome, domain.KindExpense} {
		fmt.Fprintf(w, "%s:\n", kind)
		for _, c := range domain.Categories(kind) {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
}
