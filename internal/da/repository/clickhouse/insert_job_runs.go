package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
)

// InsertJobRuns stores job-run rows in ClickHouse.
func (r *Repository) InsertJobRuns(ctx context.Context, runs []model.JobRun) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_job_runs", err, start)
	}()

	if len(runs) == 0 {
		return nil
	}

	const query = `
INSERT INTO da_job_runs (
	layer,
	job_key,
	position,
	phase,
	attempts,
	status,
	duration_ms,
	finished_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare job runs batch: %w", err)
	}

	for _, run := range runs {
		if err = batch.Append(
			string(run.Layer),
			run.Key,
			run.Position,
			run.Phase,
			run.Attempts,
			string(run.Status),
			uint64(max(run.Duration.Milliseconds(), 0)),
			run.FinishedAt.UTC(),
		); err != nil {
			return fmt.Errorf("append job run: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert job runs: %w", err)
	}
	return nil
}
