package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/joho/godotenv"

	"github.com/dvloznov/bank-ingest/internal/config"
	infraBQ "github.com/dvloznov/bank-ingest/internal/infra/bigquery"
	"github.com/dvloznov/bank-ingest/internal/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	configPath := flag.String("config", "config.yaml", "Path to the config file")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	store, err := infraBQ.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to BigQuery")
	}
	defer store.Close()

	latest, err := store.FetchLatestDates(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch latest transaction dates")
	}

	fmt.Printf("Latest checking transaction: %s\n", formatDate(latest.Checking))
	fmt.Printf("Latest credit transaction:   %s\n", formatDate(latest.Credit))
}

// formatDate renders a nullable date in the export layout, or a placeholder
// when the account has no rows yet.
func formatDate(d bigquery.NullDate) string {
	if !d.Valid {
		return "none"
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Date.Month, d.Date.Day, d.Date.Year)
}
