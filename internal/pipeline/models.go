package pipeline

import (
	"time"
)

// Account kinds. These are the only two sources of raw exports.
const (
	AccountChecking = "checking"
	AccountCredit   = "credit"
)

// Transaction types, derived from the sign of the amount.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

// Transaction is one normalized transaction in the canonical schema. Records
// are immutable once they leave the normalizer stage.
type Transaction struct {
	// TransactionID is a six-digit numeric key, unique within the run and
	// against the persisted store once reconciled.
	TransactionID string

	Date        time.Time // calendar date, no time component
	Amount      float64   // positive = credit, negative = debit
	Description string    // raw reason string as reported by the institution
	Account     string    // AccountChecking or AccountCredit

	// Category is always populated after the categorizer stage; rows with no
	// keyword match carry the uncategorized marker.
	Category string

	// TransactionType mirrors the sign of Amount. Set by the normalizer,
	// never independently.
	TransactionType string
}
