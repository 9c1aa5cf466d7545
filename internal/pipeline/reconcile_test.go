package pipeline

import (
	"context"
	"errors"
	"testing"
)

// memStore is an in-memory TransactionStore for tests.
type memStore struct {
	rows      map[string]*Transaction
	failRead  bool
	failWrite bool
	inserts   int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*Transaction)}
}

func (s *memStore) DistinctTransactionIDs(ctx context.Context) (map[string]struct{}, error) {
	if s.failRead {
		return nil, errors.New("store unavailable")
	}
	ids := make(map[string]struct{}, len(s.rows))
	for id := range s.rows {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *memStore) InsertTransactions(ctx context.Context, txs []*Transaction) error {
	if s.failWrite {
		return errors.New("insert failed")
	}
	s.inserts++
	for _, tx := range txs {
		s.rows[tx.TransactionID] = tx
	}
	return nil
}

func TestReconcile_AppendsOnlyUnseen(t *testing.T) {
	store := newMemStore()
	store.rows["123456"] = &Transaction{TransactionID: "123456"}

	batch := []*Transaction{
		{TransactionID: "123456", Description: "coincidental id"},
		{TransactionID: "654321", Description: "fresh"},
	}

	appended, err := reconcile(context.Background(), store, batch)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if appended != 1 {
		t.Errorf("appended = %d, want 1", appended)
	}
	if _, ok := store.rows["654321"]; !ok {
		t.Error("fresh row was not appended")
	}
	if store.rows["123456"].Description == "coincidental id" {
		t.Error("existing row was overwritten; the store is append-only")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	store := newMemStore()
	batch := []*Transaction{
		{TransactionID: "111111"},
		{TransactionID: "222222"},
	}

	first, err := reconcile(context.Background(), store, batch)
	if err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}
	second, err := reconcile(context.Background(), store, batch)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}

	if first != 2 || second != 0 {
		t.Errorf("appended counts = %d then %d, want 2 then 0", first, second)
	}
	if len(store.rows) != 2 {
		t.Errorf("store holds %d rows, want 2", len(store.rows))
	}
}

func TestReconcile_StoreErrors(t *testing.T) {
	batch := []*Transaction{{TransactionID: "111111"}}

	readFail := newMemStore()
	readFail.failRead = true
	if _, err := reconcile(context.Background(), readFail, batch); err == nil {
		t.Error("reconcile should fail when the id fetch fails")
	}

	writeFail := newMemStore()
	writeFail.failWrite = true
	if _, err := reconcile(context.Background(), writeFail, batch); err == nil {
		t.Error("reconcile should fail when the insert fails")
	}
}

func TestReconcile_EmptyFreshSetSkipsInsert(t *testing.T) {
	store := newMemStore()
	store.rows["111111"] = &Transaction{TransactionID: "111111"}

	appended, err := reconcile(context.Background(), store, []*Transaction{{TransactionID: "111111"}})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if appended != 0 {
		t.Errorf("appended = %d, want 0", appended)
	}
	if store.inserts != 0 {
		t.Errorf("insert was called %d times for an all-seen batch, want 0", store.inserts)
	}
}
