package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/bank-ingest/internal/pipeline"
)

// TransactionRow is one record of the unified transactions table.
type TransactionRow struct {
	TransID         string     `bigquery:"trans_id"`         // REQUIRED
	DDate           civil.Date `bigquery:"d_date"`           // REQUIRED DATE
	Amount          float64    `bigquery:"amount"`           // REQUIRED FLOAT64
	RawReason       string     `bigquery:"raw_reason"`       // REQUIRED
	Account         string     `bigquery:"account"`          // checking | credit
	Category        string     `bigquery:"category"`         // REQUIRED
	TransactionType string     `bigquery:"transaction_type"` // credit | debit
	CreatedTS       time.Time  `bigquery:"created_ts"`       // REQUIRED
}

// rowFromTransaction maps a normalized domain transaction into the table
// schema.
func rowFromTransaction(tx *pipeline.Transaction, now time.Time) *TransactionRow {
	return &TransactionRow{
		TransID:         tx.TransactionID,
		DDate:           civil.DateOf(tx.Date),
		Amount:          tx.Amount,
		RawReason:       tx.Description,
		Account:         tx.Account,
		Category:        tx.Category,
		TransactionType: tx.TransactionType,
		CreatedTS:       now,
	}
}

// LatestDates holds the most recent persisted transaction date per account
// kind. A field is invalid when the store has no rows for that account.
type LatestDates struct {
	Checking bigquery.NullDate `bigquery:"max_checking_date"`
	Credit   bigquery.NullDate `bigquery:"max_credit_date"`
}
