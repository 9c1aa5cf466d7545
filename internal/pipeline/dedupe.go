package pipeline

// dedupeKey is the duplicate heuristic: two rows with the same description
// and amount are treated as the same event regardless of date or account.
// Two genuinely distinct transactions sharing both fields collapse into one.
type dedupeKey struct {
	description string
	amount      float64
}

// dedupeBatch retains the first occurrence of each (description, amount) pair
// in batch order.
func dedupeBatch(batch []*Transaction) []*Transaction {
	seen := make(map[dedupeKey]struct{}, len(batch))
	out := make([]*Transaction, 0, len(batch))

	for _, tx := range batch {
		key := dedupeKey{description: tx.Description, amount: tx.Amount}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tx)
	}

	return out
}
