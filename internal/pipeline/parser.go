package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/bank-ingest/internal/gcs"
)

// parseExport reads one raw account export into canonical transactions.
//
// The raw file is delimited text with no header row; fields are positional
// per the row schema. Credit exports drop rows whose description contains any
// of the exclusion substrings (card payments posted against the statement are
// not spending) and stamp account=credit; everything else is checking.
//
// Any malformed row fails the whole file: a partially parsed export must
// never reach the batch.
func parseExport(r io.Reader, isCredit bool, sch *rowSchema, exclusions []string) ([]*Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = sch.width

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parseExport: reading rows: %w", err)
	}

	account := AccountChecking
	if isCredit {
		account = AccountCredit
	}

	txs := make([]*Transaction, 0, len(records))
	for i, rec := range records {
		desc := rec[sch.descIdx]

		if isCredit && matchesAny(desc, exclusions) {
			continue
		}

		date, err := parseDate(rec[sch.dateIdx], sch.dateLayout)
		if err != nil {
			return nil, fmt.Errorf("parseExport: row %d: %w", i+1, err)
		}

		amountField := strings.TrimSpace(rec[sch.amountIdx])
		amount, err := strconv.ParseFloat(amountField, 64)
		if err != nil {
			return nil, fmt.Errorf("parseExport: row %d: invalid amount %q: %w", i+1, amountField, err)
		}

		txs = append(txs, &Transaction{
			Date:        date,
			Amount:      amount,
			Description: desc,
			Account:     account,
		})
	}

	return txs, nil
}

// parseAccountFile reads and parses one manifest entry. Entries may name a
// local path or a gs:// URI.
func parseAccountFile(ctx context.Context, path string, isCredit bool, sch *rowSchema, exclusions []string, storage gcs.Service) ([]*Transaction, error) {
	data, err := readExport(ctx, path, storage)
	if err != nil {
		return nil, err
	}

	txs, err := parseExport(bytes.NewReader(data), isCredit, sch, exclusions)
	if err != nil {
		return nil, fmt.Errorf("parseAccountFile: %q: %w", path, err)
	}

	return txs, nil
}

func readExport(ctx context.Context, path string, storage gcs.Service) ([]byte, error) {
	if gcs.IsURI(path) {
		if storage == nil {
			return nil, fmt.Errorf("readExport: %q: no storage client configured", path)
		}
		data, err := storage.Fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("readExport: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("readExport: %w", err)
	}
	return data, nil
}

func parseDate(field, layout string) (time.Time, error) {
	trimmed := strings.TrimSpace(field)
	date, err := time.Parse(layout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", trimmed, err)
	}
	return date, nil
}

func matchesAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
