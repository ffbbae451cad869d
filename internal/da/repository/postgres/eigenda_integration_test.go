package postgres

import (
	"bytes"
	"errors"

	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/gap"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
)

func newBatch(seed byte, batchID uint32, l1Block uint64, count uint32) model.EigenDABatch {
	return model.EigenDABatch{
		BatchHeaderHash: bytes.Repeat([]byte{seed}, 32),
		BatchID:         batchID,
		BlobsCount:      count,
		L1TxHash:        bytes.Repeat([]byte{seed + 1}, 32),
		L1Block:         l1Block,
	}
}

func (s *RepositorySuite) TestEigenDAUpsertBatchIsIdempotent() {
	batch := newBatch(0x11, 4, 150, 3)

	s.expectObserve("eigenda_upsert_batch", 2)
	s.expectObserve("eigenda_batch_exists", 1)

	s.Require().NoError(s.eigenda.UpsertBatch(s.testCtx, batch))
	s.Require().NoError(s.eigenda.UpsertBatch(s.testCtx, batch))
	s.Equal(int64(1), s.countRows("eigenda_batches"))

	exists, err := s.eigenda.BatchExists(s.testCtx, batch.BatchHeaderHash)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *RepositorySuite) TestEigenDAUpsertBatchWithZeroBlobs() {
	batch := newBatch(0x22, 9, 10, 0)

	s.expectObserve("eigenda_upsert_batch", 1)

	s.Require().NoError(s.eigenda.UpsertBatch(s.testCtx, batch))

	var count int64
	s.Require().NoError(s.db.conn.QueryRow(s.testCtx,
		`SELECT blobs_count FROM eigenda_batches WHERE batch_header_hash = $1`, batch.BatchHeaderHash).Scan(&count))
	s.Equal(int64(0), count)
}

func (s *RepositorySuite) TestEigenDAUpsertBlobsInChunks() {
	batch := newBatch(0x33, 1, 42, 5)
	blobs := make([]model.EigenDABlob, 0, 5)
	for i := 0; i < 5; i++ {
		blobs = append(blobs, model.EigenDABlob{
			BatchHeaderHash: batch.BatchHeaderHash,
			Index:           uint32(i),
			Data:            []byte{byte(i)},
			L1TxHash:        batch.L1TxHash,
			L1Block:         batch.L1Block,
		})
	}

	s.expectObserve("eigenda_upsert_blobs", 4)
	s.expectObserve("eigenda_blob", 1)

	s.Require().NoError(s.eigenda.UpsertBlobs(s.testCtx, blobs[:2]))
	s.Require().NoError(s.eigenda.UpsertBlobs(s.testCtx, blobs[2:4]))
	s.Require().NoError(s.eigenda.UpsertBlobs(s.testCtx, blobs[4:]))
	s.Require().NoError(s.eigenda.UpsertBlobs(s.testCtx, blobs))
	s.Equal(int64(5), s.countRows("eigenda_blobs"))

	got, err := s.eigenda.Blob(s.testCtx, batch.BatchHeaderHash, 3)
	s.Require().NoError(err)
	s.Equal(blobs[3], *got)
}

func (s *RepositorySuite) TestEigenDAUpsertBlobsRejectsEmptyHash() {
	s.metrics.EXPECT().Observe("eigenda_upsert_blobs", model.EigenDA, gomock.Not(gomock.Nil()), gomock.Any()).Times(1)

	err := s.eigenda.UpsertBlobs(s.testCtx, []model.EigenDABlob{{Index: 0}})
	s.Require().Error(err)
	s.Equal(int64(0), s.countRows("eigenda_blobs"))
}

func (s *RepositorySuite) TestEigenDABlobNotFound() {
	s.metrics.EXPECT().Observe("eigenda_blob", model.EigenDA, gomock.Not(gomock.Nil()), gomock.Any()).Times(1)

	_, err := s.eigenda.Blob(s.testCtx, bytes.Repeat([]byte{1}, 32), 0)
	s.True(errors.Is(err, ErrNotFound))
}

func (s *RepositorySuite) TestEigenDAFindGaps() {
	s.expectObserve("eigenda_upsert_batch", 4)
	s.expectObserve("eigenda_find_gaps", 2)

	// two batches confirmed in block 120
	s.Require().NoError(s.eigenda.UpsertBatch(s.testCtx, newBatch(0x01, 1, 100, 1)))
	s.Require().NoError(s.eigenda.UpsertBatch(s.testCtx, newBatch(0x02, 2, 120, 1)))
	s.Require().NoError(s.eigenda.UpsertBatch(s.testCtx, newBatch(0x03, 3, 120, 1)))
	s.Require().NoError(s.eigenda.UpsertBatch(s.testCtx, newBatch(0x04, 4, 121, 1)))

	got, err := s.eigenda.FindGaps(s.testCtx, 90, 130)
	s.Require().NoError(err)
	s.Equal([]gap.Range{
		{Start: 90, End: 99},
		{Start: 101, End: 119},
		{Start: 122, End: 130},
	}, got)

	got, err = s.eigenda.FindGaps(s.testCtx, 100, 100)
	s.Require().NoError(err)
	s.Nil(got)
}
