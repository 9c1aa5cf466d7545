package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/bank-ingest/internal/gcs"
	"github.com/dvloznov/bank-ingest/internal/manifest"
)

// assembleBatch parses every manifest entry and concatenates the results into
// one batch. Row order within a file is preserved and files are taken in
// manifest order. An empty manifest is a hard error: a run with nothing to
// ingest is a misconfiguration, not a no-op.
func assembleBatch(ctx context.Context, m *manifest.Manifest, sch *rowSchema, exclusions []string, storage gcs.Service) ([]*Transaction, error) {
	if m == nil || m.Len() == 0 {
		return nil, fmt.Errorf("assembleBatch: manifest is empty, nothing to ingest")
	}

	var batch []*Transaction
	for _, entry := range m.Entries {
		txs, err := parseAccountFile(ctx, entry.Path, entry.IsCredit, sch, exclusions, storage)
		if err != nil {
			return nil, fmt.Errorf("assembleBatch: %w", err)
		}
		batch = append(batch, txs...)
	}

	return batch, nil
}
