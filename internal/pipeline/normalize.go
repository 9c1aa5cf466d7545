package pipeline

import (
	"fmt"
	"strconv"
)

// normalizeBatch validates that every row carries the canonical types and
// derives the transaction type from the sign of the amount. A row that fails
// validation aborts the whole run; a partial-schema batch must not reach the
// store.
func normalizeBatch(batch []*Transaction) error {
	for i, tx := range batch {
		if err := validateRow(tx); err != nil {
			return fmt.Errorf("normalizeBatch: row %d (%q): %w", i, tx.Description, err)
		}

		if tx.Amount > 0 {
			tx.TransactionType = TypeCredit
		} else {
			tx.TransactionType = TypeDebit
		}
	}

	return nil
}

func validateRow(tx *Transaction) error {
	if n, err := strconv.Atoi(tx.TransactionID); err != nil || n < idMin || n > idMax {
		return fmt.Errorf("transaction id %q is not a six-digit numeric key", tx.TransactionID)
	}
	if tx.Date.IsZero() {
		return fmt.Errorf("date is unset")
	}
	if tx.Account != AccountChecking && tx.Account != AccountCredit {
		return fmt.Errorf("unknown account kind %q", tx.Account)
	}
	if tx.Category == "" {
		return fmt.Errorf("category is empty; categorizer must run before normalization")
	}
	return nil
}
