package pipeline

import (
	"context"
)

// TransactionStore is the persisted transaction table the reconciler runs
// against. The BigQuery implementation lives in internal/infra/bigquery;
// tests supply in-memory fakes.
type TransactionStore interface {
	// DistinctTransactionIDs returns the set of transaction ids currently
	// persisted in the store.
	DistinctTransactionIDs(ctx context.Context) (map[string]struct{}, error)

	// InsertTransactions appends rows to the store. Append-only: existing
	// rows are never updated or deleted.
	InsertTransactions(ctx context.Context, txs []*Transaction) error
}
