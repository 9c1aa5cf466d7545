package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/bank-ingest/internal/config"
	infraBQ "github.com/dvloznov/bank-ingest/internal/infra/bigquery"
	"github.com/dvloznov/bank-ingest/internal/logger"
	"github.com/dvloznov/bank-ingest/internal/rules"
	"github.com/dvloznov/bank-ingest/internal/suggest"
)

func main() {
	// GEMINI_API_KEY may come from .env.
	_ = godotenv.Load()

	log := logger.New()

	configPath := flag.String("config", "config.yaml", "Path to the config file")
	limit := flag.Int("limit", 50, "Maximum number of uncategorized descriptions to send to the model")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	rs, err := rules.Load(cfg.RulesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load category rules")
	}

	store, err := infraBQ.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to BigQuery")
	}
	defer store.Close()

	descriptions, err := store.QueryUncategorizedDescriptions(ctx, rules.Uncategorized)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query uncategorized descriptions")
	}
	if len(descriptions) == 0 {
		fmt.Println("No uncategorized transactions found.")
		return
	}
	if len(descriptions) > *limit {
		descriptions = descriptions[:*limit]
	}

	log.Info().
		Int("descriptions", len(descriptions)).
		Msg("Requesting rule suggestions")

	suggestions, err := suggest.Suggest(ctx, descriptions, rs.Categories())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate rule suggestions")
	}
	if len(suggestions) == 0 {
		fmt.Println("The model returned no suggestions.")
		return
	}

	// Printed in the rules file format so accepted lines paste straight in.
	fmt.Println("# Proposed rules. Review before appending to the rules file.")
	fmt.Println("rules:")
	for _, s := range suggestions {
		fmt.Printf("  - keyword: %q\n    category: %q\n", s.Keyword, s.Category)
	}
}
