package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/dvloznov/bank-ingest/internal/config"
	"github.com/dvloznov/bank-ingest/internal/logger"
)

// Ingestion run statuses.
const (
	runStatusRunning = "RUNNING"
	runStatusFailed  = "FAILED"
	runStatusSuccess = "SUCCESS"
)

func runsTableRef(cfg *config.Config) string {
	return fmt.Sprintf("`%s.%s.%s`", cfg.Project, cfg.Dataset, cfg.RunsTable)
}

// StartIngestionRunWithClient records a new ingestion run with status=RUNNING
// and returns its id.
func StartIngestionRunWithClient(ctx context.Context, client *bigquery.Client, cfg *config.Config, manifestPath string) (string, error) {
	runID := uuid.NewString()

	q := client.Query(fmt.Sprintf(`
		INSERT %s (ingestion_run_id, started_ts, manifest_path, status)
		VALUES (@ingestion_run_id, @started_ts, @manifest_path, @status)
	`, runsTableRef(cfg)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "ingestion_run_id", Value: runID},
		{Name: "started_ts", Value: time.Now()},
		{Name: "manifest_path", Value: manifestPath},
		{Name: "status", Value: runStatusRunning},
	}

	if err := runQuery(ctx, q); err != nil {
		return "", fmt.Errorf("StartIngestionRun: %w", err)
	}

	return runID, nil
}

// MarkIngestionRunFailedWithClient sets status=FAILED with the error message.
// Failures here are logged and swallowed; the run is already failing and the
// original error must win.
func MarkIngestionRunFailedWithClient(ctx context.Context, client *bigquery.Client, cfg *config.Config, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status, finished_ts = @finished_ts, error_message = @error_message
		WHERE ingestion_run_id = @ingestion_run_id
	`, runsTableRef(cfg)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: runStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "ingestion_run_id", Value: runID},
	}

	if err := runQuery(ctx, q); err != nil {
		log.Error().Err(err).Str("ingestion_run_id", runID).Msg("Failed to mark ingestion run as failed")
	}
}

// MarkIngestionRunSucceededWithClient sets status=SUCCESS and records the
// number of appended rows.
func MarkIngestionRunSucceededWithClient(ctx context.Context, client *bigquery.Client, cfg *config.Config, runID string, rowsAppended int) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status, finished_ts = @finished_ts, rows_appended = @rows_appended, error_message = ""
		WHERE ingestion_run_id = @ingestion_run_id
	`, runsTableRef(cfg)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: runStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "rows_appended", Value: rowsAppended},
		{Name: "ingestion_run_id", Value: runID},
	}

	if err := runQuery(ctx, q); err != nil {
		return fmt.Errorf("MarkIngestionRunSucceeded: %w", err)
	}

	return nil
}

func runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
