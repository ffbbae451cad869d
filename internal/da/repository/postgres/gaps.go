package postgres

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/gap"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/pkg/safe"
)

// gapsQuery lists the ranges of [$1, $2] missing from column in table:
// the leading range below the first stored key, holes between consecutive keys,
// the trailing range above the last key, or the whole range when nothing is stored.
const gapsQuery = `
WITH stored AS (
	SELECT %[2]s AS k, LEAD(%[2]s) OVER (ORDER BY %[2]s) AS next_k
	FROM %[1]s
	WHERE %[2]s BETWEEN $1 AND $2
),
bounds AS (
	SELECT min(k) AS lo, max(k) AS hi FROM stored
)
SELECT $1::bigint AS gap_start, lo - 1 AS gap_end FROM bounds WHERE lo > $1
UNION ALL
SELECT k + 1, next_k - 1 FROM stored WHERE next_k > k + 1
UNION ALL
SELECT hi + 1, $2::bigint FROM bounds WHERE hi < $2
UNION ALL
SELECT $1::bigint, $2::bigint FROM bounds WHERE lo IS NULL
ORDER BY gap_start`

func findGaps(ctx context.Context, q querier, table, column string, floor, to uint64) ([]gap.Range, error) {
	if to < floor {
		return nil, nil
	}

	from, err := safe.Int64(floor)
	if err != nil {
		return nil, fmt.Errorf("gap floor: %w", err)
	}
	until, err := safe.Int64(to)
	if err != nil {
		return nil, fmt.Errorf("gap upper bound: %w", err)
	}

	rows, err := q.Query(ctx, fmt.Sprintf(gapsQuery, table, column), from, until)
	if err != nil {
		return nil, fmt.Errorf("query %s gaps: %w", table, err)
	}
	defer rows.Close()

	var gaps []gap.Range
	for rows.Next() {
		var start, end int64
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("scan %s gap: %w", table, err)
		}
		r, err := toRange(start, end)
		if err != nil {
			return nil, err
		}
		gaps = append(gaps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s gaps: %w", table, err)
	}
	return gaps, nil
}

func toRange(start, end int64) (gap.Range, error) {
	s, err := safe.Uint64(start)
	if err != nil {
		return gap.Range{}, fmt.Errorf("gap start: %w", err)
	}
	e, err := safe.Uint64(end)
	if err != nil {
		return gap.Range{}, fmt.Errorf("gap end: %w", err)
	}
	return gap.Range{Start: s, End: e}, nil
}
