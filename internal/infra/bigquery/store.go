// Package bigquery implements the persisted transaction store against
// Google BigQuery.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/bank-ingest/internal/config"
	"github.com/dvloznov/bank-ingest/internal/pipeline"
)

// Store holds a shared BigQuery client plus the configured destination. It
// implements pipeline.TransactionStore.
type Store struct {
	client *bigquery.Client
	cfg    *config.Config
}

var _ pipeline.TransactionStore = (*Store)(nil)

// NewStore creates a Store with a shared BigQuery client for the configured
// project.
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := bigquery.NewClient(ctx, cfg.Project)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating client: %w", err)
	}
	return &Store{client: client, cfg: cfg}, nil
}

// Close closes the BigQuery client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// DistinctTransactionIDs returns the set of ids currently persisted.
func (s *Store) DistinctTransactionIDs(ctx context.Context) (map[string]struct{}, error) {
	return DistinctTransactionIDsWithClient(ctx, s.client, s.cfg)
}

// InsertTransactions appends normalized transactions to the store.
func (s *Store) InsertTransactions(ctx context.Context, txs []*pipeline.Transaction) error {
	return InsertTransactionsWithClient(ctx, s.client, s.cfg, txs)
}

// QueryTransactionsSince returns persisted rows dated on or after since.
func (s *Store) QueryTransactionsSince(ctx context.Context, since civil.Date) ([]*TransactionRow, error) {
	return QueryTransactionsSinceWithClient(ctx, s.client, s.cfg, since)
}

// FetchLatestDates returns the most recent persisted date per account kind.
func (s *Store) FetchLatestDates(ctx context.Context) (*LatestDates, error) {
	return FetchLatestDatesWithClient(ctx, s.client, s.cfg)
}

// QueryUncategorizedDescriptions returns the distinct descriptions of rows
// carrying the given uncategorized marker.
func (s *Store) QueryUncategorizedDescriptions(ctx context.Context, marker string) ([]string, error) {
	return QueryUncategorizedDescriptionsWithClient(ctx, s.client, s.cfg, marker)
}

// StartRun records a new ingestion run and returns its id.
func (s *Store) StartRun(ctx context.Context, manifestPath string) (string, error) {
	return StartIngestionRunWithClient(ctx, s.client, s.cfg, manifestPath)
}

// MarkRunFailed marks an ingestion run as failed.
func (s *Store) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	MarkIngestionRunFailedWithClient(ctx, s.client, s.cfg, runID, runErr)
}

// MarkRunSucceeded marks an ingestion run as succeeded.
func (s *Store) MarkRunSucceeded(ctx context.Context, runID string, rowsAppended int) error {
	return MarkIngestionRunSucceededWithClient(ctx, s.client, s.cfg, runID, rowsAppended)
}
