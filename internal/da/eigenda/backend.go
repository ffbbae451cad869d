// Package eigenda indexes EigenDA batches discovered through BatchConfirmed events on L1.
//
// Batches have no blob count on chain, so blobs are probed by index until the
// disperser reports not found. Blob chunks are upserted as they fill and the
// batch row is written last; its presence marks the batch as processed.
package eigenda

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/gap"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"go.uber.org/zap"
)

const (
	// DefaultRPCBatchSize is the widest block window of one eth_getLogs call.
	DefaultRPCBatchSize = 1000
	// DefaultSaveBatchSize is the number of blobs written per statement.
	DefaultSaveBatchSize = 10
	// DefaultPruningBlockThreshold is roughly two weeks of L1 blocks.
	DefaultPruningBlockThreshold = 100_800
)

// Config configures the EigenDA backend.
type Config struct {
	ServiceManager common.Address
	// CreationBlock is the deployment block of the service manager and the floor of the gap query.
	CreationBlock uint64
	// StartBlock overrides the L1 head as the initial cursor.
	StartBlock            *uint64
	RPCBatchSize          uint64
	SaveBatchSize         int
	PruningBlockThreshold uint64
}

// Backend implements da.Backend for EigenDA.
type Backend struct {
	logger           *zap.Logger
	logs             LogSource
	disperser        Disperser
	repo             Repository
	serviceManager   common.Address
	rpcBatchSize     uint64
	saveBatchSize    int
	pruningThreshold uint64

	lastKnownBlock   atomic.Uint64
	catchUpCompleted atomic.Bool

	gapsMu          sync.RWMutex
	unprocessedGaps []gap.Range
}

var _ da.Backend = (*Backend)(nil)

// New resolves the initial cursor and seeds the historical gaps from storage.
func New(
	ctx context.Context,
	logs LogSource,
	disperser Disperser,
	repo Repository,
	cfg Config,
	logger *zap.Logger,
) (*Backend, error) {
	switch {
	case cfg.ServiceManager == (common.Address{}):
		return nil, fmt.Errorf("%w: eigenda service manager address is required", da.ErrInvalidConfig)
	case cfg.RPCBatchSize == 0:
		return nil, fmt.Errorf("%w: eigenda rpc batch size must be positive", da.ErrInvalidConfig)
	case cfg.SaveBatchSize <= 0:
		return nil, fmt.Errorf("%w: eigenda save batch size must be positive", da.ErrInvalidConfig)
	case logs == nil || disperser == nil || repo == nil:
		return nil, fmt.Errorf("%w: eigenda log source, disperser and repository are required", da.ErrInvalidConfig)
	}

	var start uint64
	if cfg.StartBlock != nil {
		start = *cfg.StartBlock
	} else {
		latest, err := logs.LatestBlock(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve eigenda start block: %w", err)
		}
		start = latest
	}

	var gaps []gap.Range
	if start >= cfg.CreationBlock {
		var err error
		if gaps, err = repo.FindGaps(ctx, cfg.CreationBlock, start); err != nil {
			return nil, fmt.Errorf("find eigenda gaps: %w", err)
		}
	}

	b := &Backend{
		logger:           logger.Named("eigenda").With(zap.String("layer", string(model.EigenDA))),
		logs:             logs,
		disperser:        disperser,
		repo:             repo,
		serviceManager:   cfg.ServiceManager,
		rpcBatchSize:     cfg.RPCBatchSize,
		saveBatchSize:    cfg.SaveBatchSize,
		pruningThreshold: cfg.PruningBlockThreshold,
		unprocessedGaps:  gaps,
	}
	b.lastKnownBlock.Store(start)
	b.logger.Info("eigenda backend initialized",
		zap.Uint64("start_block", start),
		zap.Uint64("creation_block", cfg.CreationBlock),
		zap.Int("gaps", len(gaps)),
	)
	return b, nil
}

// LastKnownBlock returns the live cursor.
func (b *Backend) LastKnownBlock() uint64 {
	return b.lastKnownBlock.Load()
}

// CatchUpCompleted reports whether every historical gap has been resolved.
func (b *Backend) CatchUpCompleted() bool {
	return b.catchUpCompleted.Load()
}

// UnprocessedGaps returns a copy of the gaps still to be probed.
func (b *Backend) UnprocessedGaps() []gap.Range {
	b.gapsMu.RLock()
	defer b.gapsMu.RUnlock()
	if len(b.unprocessedGaps) == 0 {
		return nil
	}
	gaps := make([]gap.Range, len(b.unprocessedGaps))
	copy(gaps, b.unprocessedGaps)
	return gaps
}

// ProcessJob probes and stores every blob of the batch, then the batch row.
func (b *Backend) ProcessJob(ctx context.Context, job da.Job) error {
	switch j := job.(type) {
	case da.EigenDAJob:
		return b.processBatch(ctx, j)
	default:
		return fmt.Errorf("%w: eigenda backend cannot process %T", da.ErrUnexpectedJob, job)
	}
}

func (b *Backend) processBatch(ctx context.Context, job da.EigenDAJob) error {
	var (
		count  uint32
		buffer = make([]model.EigenDABlob, 0, b.saveBatchSize)
	)
	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := b.repo.UpsertBlobs(ctx, buffer); err != nil {
			return fmt.Errorf("store eigenda blobs of batch %d: %w", job.BatchID, err)
		}
		buffer = make([]model.EigenDABlob, 0, b.saveBatchSize)
		return nil
	}

	for index := uint32(0); ; index++ {
		data, found, err := b.disperser.RetrieveBlob(ctx, job.BatchHeaderHash, index)
		if err != nil {
			return fmt.Errorf("retrieve eigenda blob %d of batch %d: %w", index, job.BatchID, err)
		}
		if !found {
			break
		}

		buffer = append(buffer, model.EigenDABlob{
			BatchHeaderHash: job.BatchHeaderHash.Bytes(),
			Index:           index,
			Data:            data,
			L1TxHash:        job.TxHash.Bytes(),
			L1Block:         job.BlockNumber,
		})
		count++
		if len(buffer) >= b.saveBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
		if index == math.MaxUint32 {
			break
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if count == 0 && b.withinPruningThreshold(job.BlockNumber) {
		return fmt.Errorf("%w: batch %d confirmed at block %d", da.ErrBlobsNotYetAvailable, job.BatchID, job.BlockNumber)
	}

	err := b.repo.UpsertBatch(ctx, model.EigenDABatch{
		BatchHeaderHash: job.BatchHeaderHash.Bytes(),
		BatchID:         job.BatchID,
		BlobsCount:      count,
		L1TxHash:        job.TxHash.Bytes(),
		L1Block:         job.BlockNumber,
	})
	if err != nil {
		return fmt.Errorf("store eigenda batch %d: %w", job.BatchID, err)
	}

	b.logger.Debug("eigenda batch stored",
		zap.Uint32("batch_id", job.BatchID),
		zap.Uint64("block", job.BlockNumber),
		zap.Uint32("blobs", count),
	)
	return nil
}

// withinPruningThreshold reports block + threshold > cursor without overflowing.
func (b *Backend) withinPruningThreshold(block uint64) bool {
	last := b.lastKnownBlock.Load()
	return block > last || last-block < b.pruningThreshold
}

// NewJobs returns jobs for batches confirmed after the cursor and advances it to the L1 head.
func (b *Backend) NewJobs(ctx context.Context) ([]da.Job, error) {
	tip, err := b.logs.LatestBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch l1 head: %w", err)
	}

	last := b.lastKnownBlock.Load()
	if tip <= last {
		return nil, nil
	}

	jobs, err := b.jobsInRange(ctx, last+1, tip, 0)
	if err != nil {
		return nil, err
	}
	if !b.lastKnownBlock.CompareAndSwap(last, tip) {
		return nil, errors.New("eigenda cursor advanced concurrently")
	}
	return jobs, nil
}

// UnprocessedJobs resolves the earliest gap holding a confirmed batch into the jobs of its
// earliest block. Empty gaps met on the way are dropped.
func (b *Backend) UnprocessedJobs(ctx context.Context) ([]da.Job, error) {
	if b.catchUpCompleted.Load() {
		return nil, nil
	}

	b.gapsMu.Lock()
	defer b.gapsMu.Unlock()

	for i, g := range b.unprocessedGaps {
		jobs, err := b.jobsInRange(ctx, g.Start, g.End, 1)
		if err != nil {
			return nil, fmt.Errorf("probe eigenda gap %s: %w", g, err)
		}
		if len(jobs) == 0 {
			continue
		}

		remaining := make([]gap.Range, 0, len(b.unprocessedGaps)-i)
		if earliest := jobs[0].Position(); earliest < g.End {
			remaining = append(remaining, gap.Range{Start: earliest + 1, End: g.End})
		}
		b.unprocessedGaps = append(remaining, b.unprocessedGaps[i+1:]...)
		return jobs, nil
	}

	b.unprocessedGaps = nil
	b.catchUpCompleted.Store(true)
	b.logger.Info("eigenda catch-up completed", zap.Uint64("cursor", b.lastKnownBlock.Load()))
	return nil, nil
}

// jobsInRange scans [from, to] for BatchConfirmed logs in windows of rpcBatchSize blocks.
// With a positive softLimit the scan stops at the first window reaching it and only
// the jobs of the earliest block found are returned.
func (b *Backend) jobsInRange(ctx context.Context, from, to uint64, softLimit int) ([]da.Job, error) {
	var jobs []da.EigenDAJob
	for _, window := range (gap.Range{Start: from, End: to}).Split(b.rpcBatchSize) {
		logs, err := b.logs.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(window.Start),
			ToBlock:   new(big.Int).SetUint64(window.End),
			Addresses: []common.Address{b.serviceManager},
			Topics:    [][]common.Hash{{BatchConfirmedTopic()}},
		})
		if err != nil {
			return nil, fmt.Errorf("scan BatchConfirmed logs %s: %w", window, err)
		}

		for _, log := range logs {
			if log.Removed {
				continue
			}
			job, err := parseBatchConfirmed(log)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
		}
		if softLimit > 0 && len(jobs) >= softLimit {
			break
		}
	}

	if softLimit > 0 && len(jobs) > 0 {
		jobs = earliestBlock(jobs)
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	result := make([]da.Job, 0, len(jobs))
	for _, j := range jobs {
		result = append(result, j)
	}
	return result, nil
}

func earliestBlock(jobs []da.EigenDAJob) []da.EigenDAJob {
	earliest := jobs[0].BlockNumber
	for _, j := range jobs[1:] {
		earliest = min(earliest, j.BlockNumber)
	}

	kept := jobs[:0]
	for _, j := range jobs {
		if j.BlockNumber == earliest {
			kept = append(kept, j)
		}
	}
	return kept
}
