package pipeline

import (
	"fmt"
	"math/rand"
	"strconv"
)

// Identifier range for transaction ids. Values are rendered as six-digit
// decimal strings.
const (
	idMin = 100000
	idMax = 999999
)

// assignTransactionIDs gives every row without an id a numeric identifier
// drawn from a seeded pseudo-random sequence, redrawing on collision with any
// id already present in the run. The seed is fixed per run, so the sequence
// is reproducible for an identical batch; across non-identical batches the
// same logical transaction can receive different ids on different runs.
func assignTransactionIDs(batch []*Transaction, seed int64) error {
	rng := rand.New(rand.NewSource(seed))

	used := make(map[string]struct{}, len(batch))
	for _, tx := range batch {
		if tx.TransactionID != "" {
			used[tx.TransactionID] = struct{}{}
		}
	}

	if len(batch) > idMax-idMin+1 {
		return fmt.Errorf("assignTransactionIDs: batch of %d rows exceeds the id space", len(batch))
	}

	for _, tx := range batch {
		if tx.TransactionID != "" {
			continue
		}

		for {
			candidate := strconv.Itoa(idMin + rng.Intn(idMax-idMin+1))
			if _, taken := used[candidate]; taken {
				continue
			}
			used[candidate] = struct{}{}
			tx.TransactionID = candidate
			break
		}
	}

	return nil
}
