package main

import (
	"flag"

	"github.com/dvloznov/bank-ingest/internal/config"
	"github.com/dvloznov/bank-ingest/internal/logger"
	"github.com/dvloznov/bank-ingest/internal/manifest"
)

func main() {
	log := logger.New()

	configPath := flag.String("config", "config.yaml", "Path to the config file")
	dataDir := flag.String("dir", "", "Directory to scan for CSV exports (defaults to the configured data dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dir := cfg.DataDir
	if *dataDir != "" {
		dir = *dataDir
	}

	m, err := manifest.Scan(dir, cfg.CreditMarker)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("Failed to scan data directory")
	}
	if m.Len() == 0 {
		log.Warn().Str("dir", dir).Msg("No CSV exports found")
	}

	if err := m.Save(cfg.ManifestPath); err != nil {
		log.Fatal().Err(err).Str("path", cfg.ManifestPath).Msg("Failed to write manifest")
	}

	log.Info().
		Int("files", m.Len()).
		Str("manifest", cfg.ManifestPath).
		Msg("Manifest updated")
}
