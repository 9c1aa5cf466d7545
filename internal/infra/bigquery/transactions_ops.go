package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/bank-ingest/internal/config"
	"github.com/dvloznov/bank-ingest/internal/pipeline"
)

func tableRef(cfg *config.Config) string {
	return fmt.Sprintf("`%s.%s.%s`", cfg.Project, cfg.Dataset, cfg.Table)
}

// DistinctTransactionIDsWithClient returns the set of transaction ids
// currently persisted in the unified transactions table.
func DistinctTransactionIDsWithClient(ctx context.Context, client *bigquery.Client, cfg *config.Config) (map[string]struct{}, error) {
	q := client.Query(fmt.Sprintf(`SELECT DISTINCT trans_id FROM %s`, tableRef(cfg)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("DistinctTransactionIDs: query read: %w", err)
	}

	ids := make(map[string]struct{})
	for {
		var row struct {
			TransID string `bigquery:"trans_id"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("DistinctTransactionIDs: iter next: %w", err)
		}
		ids[row.TransID] = struct{}{}
	}

	return ids, nil
}

// InsertTransactionsWithClient appends a batch of normalized transactions to
// the unified transactions table using the provided BigQuery client.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, cfg *config.Config, txs []*pipeline.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, rowFromTransaction(tx, now))
	}

	// Fully qualified table reference to avoid project ID ambiguity.
	table := client.DatasetInProject(cfg.Project, cfg.Dataset).Table(cfg.Table)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}

	return nil
}

// QueryTransactionsSinceWithClient returns all persisted rows with a
// transaction date on or after the given date, oldest first.
func QueryTransactionsSinceWithClient(ctx context.Context, client *bigquery.Client, cfg *config.Config, since civil.Date) ([]*TransactionRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT trans_id, d_date, amount, raw_reason, account, category, transaction_type, created_ts
		FROM %s
		WHERE d_date >= @since
		ORDER BY d_date, created_ts
	`, tableRef(cfg)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "since", Value: since.String()},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsSince: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsSince: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// FetchLatestDatesWithClient returns the most recent persisted transaction
// date for each account kind. Used to know how far back the next raw export
// download has to reach.
func FetchLatestDatesWithClient(ctx context.Context, client *bigquery.Client, cfg *config.Config) (*LatestDates, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			MAX(CASE WHEN account = 'checking' THEN d_date END) AS max_checking_date,
			MAX(CASE WHEN account = 'credit' THEN d_date END) AS max_credit_date
		FROM %s
	`, tableRef(cfg)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchLatestDates: query read: %w", err)
	}

	var dates LatestDates
	if err := it.Next(&dates); err != nil && err != iterator.Done {
		return nil, fmt.Errorf("FetchLatestDates: iter next: %w", err)
	}

	return &dates, nil
}

// QueryUncategorizedDescriptionsWithClient returns the distinct raw
// descriptions of persisted rows carrying the uncategorized marker.
func QueryUncategorizedDescriptionsWithClient(ctx context.Context, client *bigquery.Client, cfg *config.Config, marker string) ([]string, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT DISTINCT raw_reason FROM %s WHERE category = @marker ORDER BY raw_reason
	`, tableRef(cfg)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "marker", Value: marker},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryUncategorizedDescriptions: query read: %w", err)
	}

	var descriptions []string
	for {
		var row struct {
			RawReason string `bigquery:"raw_reason"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryUncategorizedDescriptions: iter next: %w", err)
		}
		descriptions = append(descriptions, row.RawReason)
	}

	return descriptions, nil
}
