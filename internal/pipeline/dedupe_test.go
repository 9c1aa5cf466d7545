package pipeline

import (
	"testing"
	"time"
)

func TestDedupeBatch(t *testing.T) {
	day1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)

	batch := []*Transaction{
		{Date: day1, Amount: -3.00, Description: "ATM Fee", Account: AccountChecking},
		{Date: day2, Amount: -3.00, Description: "ATM Fee", Account: AccountChecking},
		{Date: day1, Amount: -4.00, Description: "ATM Fee", Account: AccountChecking},
		{Date: day1, Amount: -3.00, Description: "Wire Fee", Account: AccountChecking},
	}

	out := dedupeBatch(batch)

	if len(out) != 3 {
		t.Fatalf("dedupeBatch returned %d rows, want 3", len(out))
	}

	// First occurrence wins: the surviving ATM Fee/-3.00 row is the day1 one.
	if !out[0].Date.Equal(day1) {
		t.Errorf("surviving duplicate has date %v, want first occurrence %v", out[0].Date, day1)
	}

	// No two rows share both description and amount.
	seen := make(map[dedupeKey]bool)
	for _, tx := range out {
		key := dedupeKey{description: tx.Description, amount: tx.Amount}
		if seen[key] {
			t.Errorf("duplicate (description, amount) pair survived: %+v", key)
		}
		seen[key] = true
	}
}

func TestDedupeBatch_Empty(t *testing.T) {
	if out := dedupeBatch(nil); len(out) != 0 {
		t.Errorf("dedupeBatch(nil) returned %d rows, want 0", len(out))
	}
}
