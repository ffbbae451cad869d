package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/gap"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/pkg/safe"
	"github.com/jackc/pgx/v5"
)

// CelestiaRepository stores Celestia blocks and blobs.
type CelestiaRepository struct {
	db       *DB
	payloads payloads
	metrics  Metrics
}

// NewCelestiaRepository constructs a CelestiaRepository.
func NewCelestiaRepository(db *DB, metrics Metrics, opts ...Option) *CelestiaRepository {
	return &CelestiaRepository{
		db:       db,
		payloads: newPayloads(opts),
		metrics:  metrics,
	}
}

// InTx runs fn in one transaction shared by all repository calls made with its context.
func (r *CelestiaRepository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.InTx(ctx, fn)
}

// BlockExists reports whether height has been processed.
func (r *CelestiaRepository) BlockExists(ctx context.Context, height uint64) (exists bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("celestia_block_exists", model.Celestia, err, start)
	}()

	h, err := safe.Int64(height)
	if err != nil {
		return false, fmt.Errorf("block height: %w", err)
	}

	const query = `SELECT EXISTS (SELECT 1 FROM celestia_blocks WHERE height = $1)`
	if err = r.db.querier(ctx).QueryRow(ctx, query, h).Scan(&exists); err != nil {
		return false, fmt.Errorf("query celestia block exists: %w", err)
	}
	return exists, nil
}

// UpsertBlock inserts or overwrites the block record of a height.
func (r *CelestiaRepository) UpsertBlock(ctx context.Context, block model.CelestiaBlock) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("celestia_upsert_block", model.Celestia, err, start)
	}()

	height, err := safe.Int64(block.Height)
	if err != nil {
		return fmt.Errorf("block height: %w", err)
	}
	hash := block.Hash
	if hash == nil {
		hash = []byte{}
	}

	const query = `
INSERT INTO celestia_blocks (height, hash, blobs_count, block_timestamp)
VALUES ($1, $2, $3, $4)
ON CONFLICT (height) DO UPDATE SET
	hash = EXCLUDED.hash,
	blobs_count = EXCLUDED.blobs_count,
	block_timestamp = EXCLUDED.block_timestamp`

	if _, err = r.db.querier(ctx).Exec(ctx, query, height, hash, int64(block.BlobsCount), block.Timestamp); err != nil {
		return fmt.Errorf("upsert celestia block %d: %w", block.Height, err)
	}
	return nil
}

// UpsertBlobs writes one chunk of blobs with a single statement.
func (r *CelestiaRepository) UpsertBlobs(ctx context.Context, blobs []model.CelestiaBlob) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("celestia_upsert_blobs", model.Celestia, err, start)
	}()

	if len(blobs) == 0 {
		return nil
	}

	heights := make([]int64, len(blobs))
	indexes := make([]int64, len(blobs))
	namespaces := make([][]byte, len(blobs))
	commitments := make([][]byte, len(blobs))
	datas := make([][]byte, len(blobs))
	objectKeys := make([]*string, len(blobs))

	for i, blob := range blobs {
		if heights[i], err = safe.Int64(blob.Height); err != nil {
			return fmt.Errorf("blob height: %w", err)
		}
		indexes[i] = int64(blob.Index)
		namespaces[i] = nonNil(blob.Namespace)
		commitments[i] = nonNil(blob.Commitment)

		key := fmt.Sprintf("celestia/%d/%d", blob.Height, blob.Index)
		if datas[i], objectKeys[i], err = r.payloads.store(ctx, key, blob.Data); err != nil {
			return err
		}
	}

	const query = `
INSERT INTO celestia_blobs (height, blob_index, namespace, commitment, data, object_key)
SELECT * FROM unnest($1::bigint[], $2::bigint[], $3::bytea[], $4::bytea[], $5::bytea[], $6::text[])
ON CONFLICT (height, blob_index) DO UPDATE SET
	namespace = EXCLUDED.namespace,
	commitment = EXCLUDED.commitment,
	data = EXCLUDED.data,
	object_key = EXCLUDED.object_key`

	if _, err = r.db.querier(ctx).Exec(ctx, query, heights, indexes, namespaces, commitments, datas, objectKeys); err != nil {
		return fmt.Errorf("upsert celestia blobs: %w", err)
	}
	return nil
}

// FindGaps returns the heights of [floor, to] without a block record.
func (r *CelestiaRepository) FindGaps(ctx context.Context, floor, to uint64) (gaps []gap.Range, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("celestia_find_gaps", model.Celestia, err, start)
	}()

	return findGaps(ctx, r.db.querier(ctx), "celestia_blocks", "height", floor, to)
}

// HeightRange returns the lowest and highest stored heights; ok is false on an empty table.
func (r *CelestiaRepository) HeightRange(ctx context.Context) (lo, hi uint64, ok bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("celestia_height_range", model.Celestia, err, start)
	}()

	var minHeight, maxHeight *int64
	const query = `SELECT min(height), max(height) FROM celestia_blocks`
	if err = r.db.querier(ctx).QueryRow(ctx, query).Scan(&minHeight, &maxHeight); err != nil {
		return 0, 0, false, fmt.Errorf("query celestia height range: %w", err)
	}
	if minHeight == nil || maxHeight == nil {
		return 0, 0, false, nil
	}
	if lo, err = safe.Uint64(*minHeight); err != nil {
		return 0, 0, false, err
	}
	if hi, err = safe.Uint64(*maxHeight); err != nil {
		return 0, 0, false, err
	}
	return lo, hi, true, nil
}

// Blob loads one blob, reading offloaded payloads from the object store.
func (r *CelestiaRepository) Blob(ctx context.Context, height uint64, index uint32) (blob *model.CelestiaBlob, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("celestia_blob", model.Celestia, err, start)
	}()

	h, err := safe.Int64(height)
	if err != nil {
		return nil, fmt.Errorf("blob height: %w", err)
	}

	const query = `
SELECT namespace, commitment, data, object_key
FROM celestia_blobs
WHERE height = $1 AND blob_index = $2`

	var (
		namespace, commitment, data []byte
		objectKey                   *string
	)
	err = r.db.querier(ctx).QueryRow(ctx, query, h, int64(index)).Scan(&namespace, &commitment, &data, &objectKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("celestia blob %d/%d: %w", height, index, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query celestia blob: %w", err)
	}

	if data, err = r.payloads.load(ctx, data, objectKey); err != nil {
		return nil, err
	}
	return &model.CelestiaBlob{
		Height:     height,
		Index:      index,
		Namespace:  namespace,
		Commitment: commitment,
		Data:       data,
	}, nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
