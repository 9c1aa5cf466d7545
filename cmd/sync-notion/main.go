package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"

	"github.com/dvloznov/bank-ingest/internal/config"
	infraBQ "github.com/dvloznov/bank-ingest/internal/infra/bigquery"
	"github.com/dvloznov/bank-ingest/internal/logger"
	"github.com/dvloznov/bank-ingest/internal/notion"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	configPath := flag.String("config", "config.yaml", "Path to the config file")
	since := flag.String("since", "", "Sync transactions dated on or after this date (YYYY-MM-DD, default 30 days ago)")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing to Notion")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	token := os.Getenv("NOTION_TOKEN")
	databaseID := os.Getenv("NOTION_DATABASE_ID")
	if token == "" || databaseID == "" {
		log.Fatal().Msg("NOTION_TOKEN and NOTION_DATABASE_ID must be set")
	}

	sinceDate := civil.DateOf(time.Now().AddDate(0, 0, -30))
	if *since != "" {
		parsed, err := civil.ParseDate(*since)
		if err != nil {
			log.Fatal().Err(err).Str("since", *since).Msg("Invalid -since date")
		}
		sinceDate = parsed
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	store, err := infraBQ.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to BigQuery")
	}
	defer store.Close()

	svc := notion.NewClient(token)

	created, err := notion.SyncTransactions(ctx, store, svc, databaseID, sinceDate, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Notion sync failed")
	}

	if *dryRun {
		fmt.Printf("Pages that would be created: %d\n", created)
		return
	}
	fmt.Printf("Pages created: %d\n", created)
}
