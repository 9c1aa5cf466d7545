// Package pipeline turns raw per-account bank exports into normalized
// transaction records and reconciles them against the persisted store:
// parse, assemble, categorize, dedupe, assign ids, normalize, reconcile.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/bank-ingest/internal/config"
	"github.com/dvloznov/bank-ingest/internal/gcs"
	"github.com/dvloznov/bank-ingest/internal/rules"
)

// NewIngestionPipeline builds the standard seven-step pipeline for one run.
func NewIngestionPipeline(cfg *config.Config, rs *rules.Ruleset, store TransactionStore, storage gcs.Service) (*Pipeline, error) {
	sch, err := newRowSchema(cfg.Columns, cfg.DateLayout)
	if err != nil {
		return nil, fmt.Errorf("NewIngestionPipeline: %w", err)
	}

	return NewPipeline(
		&LoadManifestStep{Path: cfg.ManifestPath},
		&AssembleBatchStep{Schema: sch, Exclusions: cfg.CreditExclusions, Storage: storage},
		&CategorizeStep{Rules: rs},
		&DedupeStep{},
		&AssignIDsStep{Seed: cfg.IDSeed},
		&NormalizeStep{},
		&ReconcileStep{Store: store},
	), nil
}

// Run executes one full ingestion over the configured manifest. The returned
// state carries the normalized batch and the count of rows appended to the
// store. Any stage error aborts the run; nothing is written unless every
// earlier stage succeeded.
func Run(ctx context.Context, cfg *config.Config, rs *rules.Ruleset, store TransactionStore, storage gcs.Service) (*State, error) {
	p, err := NewIngestionPipeline(cfg, rs, store, storage)
	if err != nil {
		return nil, err
	}

	state := &State{}
	if err := p.Execute(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}
