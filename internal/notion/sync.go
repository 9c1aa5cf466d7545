package notion

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	"github.com/dvloznov/bank-ingest/internal/infra/bigquery"
	"github.com/dvloznov/bank-ingest/internal/logger"
)

// TransactionReader is the store query the sync depends on.
type TransactionReader interface {
	QueryTransactionsSince(ctx context.Context, since civil.Date) ([]*bigquery.TransactionRow, error)
}

// SyncTransactions mirrors persisted transactions dated on or after since
// into the Notion database. Pages already present (matched by transaction id)
// are left untouched; the warehouse stays the source of truth. Returns the
// number of pages created.
func SyncTransactions(ctx context.Context, store TransactionReader, svc Service, databaseID string, since civil.Date, dryRun bool) (int, error) {
	log := logger.FromContext(ctx)

	rows, err := store.QueryTransactionsSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("SyncTransactions: %w", err)
	}

	log.Info().Int("rows", len(rows)).Str("since", since.String()).Msg("Syncing transactions to Notion")

	created := 0
	for _, row := range rows {
		exists, err := pageExists(ctx, svc, databaseID, row.TransID)
		if err != nil {
			return created, fmt.Errorf("SyncTransactions: checking %s: %w", row.TransID, err)
		}
		if exists {
			continue
		}

		if dryRun {
			log.Info().Str("trans_id", row.TransID).Str("description", row.RawReason).Msg("Would create page")
			created++
			continue
		}

		if _, err := svc.CreatePage(ctx, databaseID, TransactionToProperties(row)); err != nil {
			return created, fmt.Errorf("SyncTransactions: creating page for %s: %w", row.TransID, err)
		}
		created++
	}

	return created, nil
}

func pageExists(ctx context.Context, svc Service, databaseID, transID string) (bool, error) {
	req := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: propTransID,
			RichText: &notionapi.TextFilterCondition{Equals: transID},
		},
		PageSize: 1,
	}

	resp, err := svc.QueryDatabase(ctx, databaseID, req)
	if err != nil {
		return false, err
	}

	return len(resp.Results) > 0, nil
}
