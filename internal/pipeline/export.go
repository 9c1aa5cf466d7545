package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// csvRow is the audit-file rendering of one transaction.
type csvRow struct {
	TransID         string  `csv:"trans_id"`
	Date            string  `csv:"d_date"`
	Amount          float64 `csv:"amount"`
	RawReason       string  `csv:"raw_reason"`
	Account         string  `csv:"account"`
	Category        string  `csv:"category"`
	TransactionType string  `csv:"transaction_type"`
}

// WriteBatchCSV renders a batch as CSV, one row per transaction in batch
// order, with a header row. Used for the optional local audit copy of an
// ingestion run.
func WriteBatchCSV(w io.Writer, batch []*Transaction) error {
	rows := make([]*csvRow, 0, len(batch))
	for _, tx := range batch {
		rows = append(rows, &csvRow{
			TransID:         tx.TransactionID,
			Date:            tx.Date.Format("2006-01-02"),
			Amount:          tx.Amount,
			RawReason:       tx.Description,
			Account:         tx.Account,
			Category:        tx.Category,
			TransactionType: tx.TransactionType,
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("WriteBatchCSV: %w", err)
	}
	return nil
}

// WriteBatchCSVFile writes the audit CSV to the given path.
func WriteBatchCSVFile(path string, batch []*Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteBatchCSVFile: creating %q: %w", path, err)
	}
	defer f.Close()

	if err := WriteBatchCSV(f, batch); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("WriteBatchCSVFile: closing %q: %w", path, err)
	}
	return nil
}
