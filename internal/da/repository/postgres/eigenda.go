package postgres

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/gap"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/pkg/safe"
	"github.com/jackc/pgx/v5"
)

// EigenDARepository stores EigenDA batches and blobs.
// Writes are not transactional: every chunk is an idempotent upsert and the batch row is written last.
type EigenDARepository struct {
	db       *DB
	payloads payloads
	metrics  Metrics
}

// NewEigenDARepository constructs an EigenDARepository.
func NewEigenDARepository(db *DB, metrics Metrics, opts ...Option) *EigenDARepository {
	return &EigenDARepository{
		db:       db,
		payloads: newPayloads(opts),
		metrics:  metrics,
	}
}

// UpsertBlobs writes one chunk of blobs with a single statement.
func (r *EigenDARepository) UpsertBlobs(ctx context.Context, blobs []model.EigenDABlob) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("eigenda_upsert_blobs", model.EigenDA, err, start)
	}()

	if len(blobs) == 0 {
		return nil
	}

	hashes := make([][]byte, len(blobs))
	indexes := make([]int64, len(blobs))
	datas := make([][]byte, len(blobs))
	objectKeys := make([]*string, len(blobs))
	txHashes := make([][]byte, len(blobs))
	l1Blocks := make([]int64, len(blobs))

	for i, blob := range blobs {
		if len(blob.BatchHeaderHash) == 0 {
			return errors.New("blob batch header hash is empty")
		}
		if l1Blocks[i], err = safe.Int64(blob.L1Block); err != nil {
			return fmt.Errorf("blob l1 block: %w", err)
		}
		hashes[i] = blob.BatchHeaderHash
		indexes[i] = int64(blob.Index)
		txHashes[i] = nonNil(blob.L1TxHash)

		key := fmt.Sprintf("eigenda/%s/%d", hex.EncodeToString(blob.BatchHeaderHash), blob.Index)
		if datas[i], objectKeys[i], err = r.payloads.store(ctx, key, blob.Data); err != nil {
			return err
		}
	}

	const query = `
INSERT INTO eigenda_blobs (batch_header_hash, blob_index, data, object_key, l1_tx_hash, l1_block)
SELECT * FROM unnest($1::bytea[], $2::bigint[], $3::bytea[], $4::text[], $5::bytea[], $6::bigint[])
ON CONFLICT (batch_header_hash, blob_index) DO UPDATE SET
	data = EXCLUDED.data,
	object_key = EXCLUDED.object_key,
	l1_tx_hash = EXCLUDED.l1_tx_hash,
	l1_block = EXCLUDED.l1_block`

	if _, err = r.db.querier(ctx).Exec(ctx, query, hashes, indexes, datas, objectKeys, txHashes, l1Blocks); err != nil {
		return fmt.Errorf("upsert eigenda blobs: %w", err)
	}
	return nil
}

// UpsertBatch inserts or overwrites the batch record.
func (r *EigenDARepository) UpsertBatch(ctx context.Context, batch model.EigenDABatch) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("eigenda_upsert_batch", model.EigenDA, err, start)
	}()

	if len(batch.BatchHeaderHash) == 0 {
		return errors.New("batch header hash is empty")
	}
	l1Block, err := safe.Int64(batch.L1Block)
	if err != nil {
		return fmt.Errorf("batch l1 block: %w", err)
	}

	const query = `
INSERT INTO eigenda_batches (batch_header_hash, batch_id, blobs_count, l1_tx_hash, l1_block)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (batch_header_hash) DO UPDATE SET
	batch_id = EXCLUDED.batch_id,
	blobs_count = EXCLUDED.blobs_count,
	l1_tx_hash = EXCLUDED.l1_tx_hash,
	l1_block = EXCLUDED.l1_block`

	_, err = r.db.querier(ctx).Exec(ctx, query,
		batch.BatchHeaderHash,
		int64(batch.BatchID),
		int64(batch.BlobsCount),
		nonNil(batch.L1TxHash),
		l1Block,
	)
	if err != nil {
		return fmt.Errorf("upsert eigenda batch %d: %w", batch.BatchID, err)
	}
	return nil
}

// BatchExists reports whether the batch has been processed.
func (r *EigenDARepository) BatchExists(ctx context.Context, batchHeaderHash []byte) (exists bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("eigenda_batch_exists", model.EigenDA, err, start)
	}()

	const query = `SELECT EXISTS (SELECT 1 FROM eigenda_batches WHERE batch_header_hash = $1)`
	if err = r.db.querier(ctx).QueryRow(ctx, query, batchHeaderHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("query eigenda batch exists: %w", err)
	}
	return exists, nil
}

// FindGaps returns the L1 blocks of [floor, to] without a batch record.
// Blocks that confirmed no batch are reported too; the backend resolves them by scanning logs.
func (r *EigenDARepository) FindGaps(ctx context.Context, floor, to uint64) (gaps []gap.Range, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("eigenda_find_gaps", model.EigenDA, err, start)
	}()

	return findGaps(ctx, r.db.querier(ctx), "eigenda_batches", "l1_block", floor, to)
}

// Blob loads one blob, reading offloaded payloads from the object store.
func (r *EigenDARepository) Blob(ctx context.Context, batchHeaderHash []byte, index uint32) (blob *model.EigenDABlob, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("eigenda_blob", model.EigenDA, err, start)
	}()

	const query = `
SELECT data, object_key, l1_tx_hash, l1_block
FROM eigenda_blobs
WHERE batch_header_hash = $1 AND blob_index = $2`

	var (
		data, txHash []byte
		objectKey    *string
		l1Block      int64
	)
	err = r.db.querier(ctx).QueryRow(ctx, query, batchHeaderHash, int64(index)).Scan(&data, &objectKey, &txHash, &l1Block)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("eigenda blob %x/%d: %w", batchHeaderHash, index, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query eigenda blob: %w", err)
	}

	block, err := safe.Uint64(l1Block)
	if err != nil {
		return nil, fmt.Errorf("blob l1 block: %w", err)
	}
	if data, err = r.payloads.load(ctx, data, objectKey); err != nil {
		return nil, err
	}
	return &model.EigenDABlob{
		BatchHeaderHash: batchHeaderHash,
		Index:           index,
		Data:            data,
		L1TxHash:        txHash,
		L1Block:         block,
	}, nil
}
