package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
)

// JobRunsCount returns the number of stored runs of a layer with the given status.
func (r *Repository) JobRunsCount(ctx context.Context, layer model.Layer, status model.JobRunStatus) (uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("job_runs_count", err, start)
	}()

	const query = `
SELECT count()
FROM da_job_runs
WHERE layer = ? AND status = ?`

	var count uint64
	if err = r.conn.QueryRow(ctx, query, string(layer), string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count job runs: %w", err)
	}
	return count, nil
}
