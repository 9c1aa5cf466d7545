package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/bank-ingest/internal/gcs"
	"github.com/dvloznov/bank-ingest/internal/logger"
	"github.com/dvloznov/bank-ingest/internal/manifest"
	"github.com/dvloznov/bank-ingest/internal/rules"
)

// Step is a single stage of the ingestion pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is the shared batch snapshot every stage observes. There is no
// intra-run parallelism; stages run in order over one State.
type State struct {
	Manifest *manifest.Manifest
	Batch    []*Transaction
	Appended int
}

// LoadManifestStep reads the file manifest that drives the run.
type LoadManifestStep struct {
	Path string
}

func (s *LoadManifestStep) Execute(ctx context.Context, state *State) error {
	m, err := manifest.Load(s.Path)
	if err != nil {
		return err
	}
	state.Manifest = m
	return nil
}

// AssembleBatchStep parses every manifest entry and concatenates the results.
type AssembleBatchStep struct {
	Schema     *rowSchema
	Exclusions []string
	Storage    gcs.Service
}

func (s *AssembleBatchStep) Execute(ctx context.Context, state *State) error {
	batch, err := assembleBatch(ctx, state.Manifest, s.Schema, s.Exclusions, s.Storage)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Int("files", state.Manifest.Len()).
		Int("rows", len(batch)).
		Msg("Assembled batch")
	state.Batch = batch
	return nil
}

// CategorizeStep labels every row using the ordered keyword rules.
type CategorizeStep struct {
	Rules *rules.Ruleset
}

func (s *CategorizeStep) Execute(ctx context.Context, state *State) error {
	for _, tx := range state.Batch {
		tx.Category = s.Rules.Categorize(tx.Description)
	}
	return nil
}

// DedupeStep drops repeat (description, amount) pairs within the batch.
type DedupeStep struct{}

func (s *DedupeStep) Execute(ctx context.Context, state *State) error {
	before := len(state.Batch)
	state.Batch = dedupeBatch(state.Batch)
	if dropped := before - len(state.Batch); dropped > 0 {
		log := logger.FromContext(ctx)
		log.Info().Int("dropped", dropped).Msg("Removed duplicate rows")
	}
	return nil
}

// AssignIDsStep gives every row a unique-within-run transaction id.
type AssignIDsStep struct {
	Seed int64
}

func (s *AssignIDsStep) Execute(ctx context.Context, state *State) error {
	return assignTransactionIDs(state.Batch, s.Seed)
}

// NormalizeStep enforces canonical typing and derives the transaction type.
type NormalizeStep struct{}

func (s *NormalizeStep) Execute(ctx context.Context, state *State) error {
	return normalizeBatch(state.Batch)
}

// ReconcileStep appends unseen rows to the persisted store.
type ReconcileStep struct {
	Store TransactionStore
}

func (s *ReconcileStep) Execute(ctx context.Context, state *State) error {
	appended, err := reconcile(ctx, s.Store, state.Batch)
	if err != nil {
		return err
	}
	state.Appended = appended
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially against one State.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
