package pipeline

import (
	"context"
	"fmt"
)

// reconcile appends to the store only those batch rows whose transaction id
// is not already persisted, and reports how many were appended.
//
// The id set is read immediately before the write; two runs racing through
// this window can both see an id as absent. Single-writer discipline is
// assumed and documented, not enforced.
func reconcile(ctx context.Context, store TransactionStore, batch []*Transaction) (int, error) {
	existing, err := store.DistinctTransactionIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile: fetching persisted ids: %w", err)
	}

	fresh := make([]*Transaction, 0, len(batch))
	for _, tx := range batch {
		if _, seen := existing[tx.TransactionID]; seen {
			continue
		}
		fresh = append(fresh, tx)
	}

	if len(fresh) > 0 {
		if err := store.InsertTransactions(ctx, fresh); err != nil {
			return 0, fmt.Errorf("reconcile: inserting rows: %w", err)
		}
	}

	return len(fresh), nil
}
