package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/bank-ingest/internal/config"
	"github.com/dvloznov/bank-ingest/internal/gcs"
	infraBQ "github.com/dvloznov/bank-ingest/internal/infra/bigquery"
	"github.com/dvloznov/bank-ingest/internal/logger"
	"github.com/dvloznov/bank-ingest/internal/manifest"
	"github.com/dvloznov/bank-ingest/internal/pipeline"
	"github.com/dvloznov/bank-ingest/internal/rules"
)

func main() {
	// Credentials (GOOGLE_APPLICATION_CREDENTIALS etc.) may come from .env.
	_ = godotenv.Load()

	log := logger.New()

	configPath := flag.String("config", "config.yaml", "Path to the config file")
	auditCSV := flag.String("audit-csv", "", "Optional path for a local CSV copy of the normalized batch")
	archiveBucket := flag.String("archive-bucket", "", "Optional GCS bucket to archive raw exports into after a successful run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
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

	runID, err := store.StartRun(ctx, cfg.ManifestPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start ingestion run")
	}

	log.Info().
		Str("ingestion_run_id", runID).
		Str("manifest", cfg.ManifestPath).
		Msg("Starting ingestion")

	state, err := pipeline.Run(ctx, cfg, rs, store, gcs.Client{})
	if err != nil {
		store.MarkRunFailed(ctx, runID, err)
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	if err := store.MarkRunSucceeded(ctx, runID, state.Appended); err != nil {
		log.Fatal().Err(err).Msg("Failed to mark ingestion run as succeeded")
	}

	if *auditCSV != "" {
		if err := pipeline.WriteBatchCSVFile(*auditCSV, state.Batch); err != nil {
			log.Error().Err(err).Str("path", *auditCSV).Msg("Failed to write audit CSV")
		}
	}

	if *archiveBucket != "" {
		archiveExports(ctx, cfg, *archiveBucket)
	}

	fmt.Printf("Transactions Added: %d\n", state.Appended)
}

// archiveExports copies the run's local raw exports into the archive bucket.
// Best-effort: the run already succeeded, failures here only log.
func archiveExports(ctx context.Context, cfg *config.Config, bucket string) {
	log := logger.FromContext(ctx)

	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reload manifest for archiving")
		return
	}

	client := gcs.Client{}
	for _, entry := range m.Entries {
		if gcs.IsURI(entry.Path) {
			continue
		}
		object := filepath.Base(entry.Path)
		if err := client.Upload(ctx, bucket, object, entry.Path); err != nil {
			log.Error().Err(err).Str("file", entry.Path).Msg("Failed to archive raw export")
			continue
		}
		log.Info().Str("file", entry.Path).Str("bucket", bucket).Msg("Archived raw export")
	}
}
