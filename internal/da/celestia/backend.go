// Package celestia indexes Celestia blocks and blobs by height.
package celestia

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/gap"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/pkg/safe"
	"go.uber.org/zap"
)

// DefaultSaveBatchSize is the number of blobs written per statement.
const DefaultSaveBatchSize = 100

var errMissingHeader = errors.New("celestia header missing")

// Config configures the Celestia backend.
type Config struct {
	// StartHeight overrides the network head as the initial cursor.
	StartHeight   *uint64
	SaveBatchSize int
}

// Backend implements da.Backend for Celestia.
type Backend struct {
	logger        *zap.Logger
	source        Source
	repo          Repository
	saveBatchSize int

	lastKnownHeight  atomic.Uint64
	catchUpCompleted atomic.Bool
}

var _ da.Backend = (*Backend)(nil)

// New resolves the initial cursor and constructs the backend.
func New(ctx context.Context, source Source, repo Repository, cfg Config, logger *zap.Logger) (*Backend, error) {
	if cfg.SaveBatchSize <= 0 {
		return nil, fmt.Errorf("%w: celestia save batch size must be positive", da.ErrInvalidConfig)
	}
	if source == nil || repo == nil {
		return nil, fmt.Errorf("%w: celestia source and repository are required", da.ErrInvalidConfig)
	}

	var start uint64
	if cfg.StartHeight != nil {
		start = *cfg.StartHeight
	} else {
		latest, err := source.LatestHeight(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve celestia start height: %w", err)
		}
		start = latest
	}

	b := &Backend{
		logger:        logger.Named("celestia").With(zap.String("layer", string(model.Celestia))),
		source:        source,
		repo:          repo,
		saveBatchSize: cfg.SaveBatchSize,
	}
	b.lastKnownHeight.Store(start)
	b.logger.Info("celestia backend initialized", zap.Uint64("start_height", start))
	return b, nil
}

// LastKnownHeight returns the live cursor.
func (b *Backend) LastKnownHeight() uint64 {
	return b.lastKnownHeight.Load()
}

// CatchUpCompleted reports whether historical gaps have been handed out.
func (b *Backend) CatchUpCompleted() bool {
	return b.catchUpCompleted.Load()
}

// ProcessJob fetches one height and stores its block and blobs in a single transaction.
func (b *Backend) ProcessJob(ctx context.Context, job da.Job) error {
	switch j := job.(type) {
	case da.CelestiaJob:
		return b.processHeight(ctx, j.Height)
	default:
		return fmt.Errorf("%w: celestia backend cannot process %T", da.ErrUnexpectedJob, job)
	}
}

func (b *Backend) processHeight(ctx context.Context, height uint64) error {
	if height == 0 {
		return b.repo.UpsertBlock(ctx, model.GenesisPlaceholder())
	}

	header, err := b.source.Header(ctx, height)
	if err != nil {
		return fmt.Errorf("fetch celestia header %d: %w", height, err)
	}
	if header == nil {
		return fmt.Errorf("fetch celestia header %d: %w", height, errMissingHeader)
	}

	var blobs []Blob
	if header.MayContainBlobs() {
		if blobs, err = b.source.Blobs(ctx, height); err != nil {
			return fmt.Errorf("fetch celestia blobs %d: %w", height, err)
		}
	}

	count, err := safe.Uint32(len(blobs))
	if err != nil {
		return fmt.Errorf("celestia blobs count at %d: %w", height, err)
	}
	block := model.CelestiaBlock{
		Height:     height,
		Hash:       header.Hash,
		BlobsCount: count,
		Timestamp:  header.Time.Unix(),
	}
	records := make([]model.CelestiaBlob, 0, len(blobs))
	for i, blob := range blobs {
		records = append(records, model.CelestiaBlob{
			Height:     height,
			Index:      uint32(i),
			Namespace:  blob.Namespace,
			Commitment: blob.Commitment,
			Data:       blob.Data,
		})
	}

	err = b.repo.InTx(ctx, func(ctx context.Context) error {
		if err := b.repo.UpsertBlock(ctx, block); err != nil {
			return err
		}
		for chunk := range slices.Chunk(records, b.saveBatchSize) {
			if err := b.repo.UpsertBlobs(ctx, chunk); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store celestia height %d: %w", height, err)
	}

	b.logger.Debug("celestia height stored", zap.Uint64("height", height), zap.Uint32("blobs", count))
	return nil
}

// NewJobs returns one job per height above the cursor up to the network head.
func (b *Backend) NewJobs(ctx context.Context) ([]da.Job, error) {
	tip, err := b.source.LatestHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch celestia network head: %w", err)
	}

	for {
		last := b.lastKnownHeight.Load()
		if tip <= last {
			return nil, nil
		}
		if b.lastKnownHeight.CompareAndSwap(last, tip) {
			return da.CelestiaJobs(gap.Range{Start: last + 1, End: tip}.Heights()), nil
		}
	}
}

// UnprocessedJobs returns every missing height up to the cursor, newest first.
// It runs the gap query once; later calls return nothing.
func (b *Backend) UnprocessedJobs(ctx context.Context) ([]da.Job, error) {
	if b.catchUpCompleted.Load() {
		return nil, nil
	}

	if err := b.ensureGenesis(ctx); err != nil {
		return nil, err
	}

	cursor := b.lastKnownHeight.Load()
	gaps, err := b.repo.FindGaps(ctx, 0, cursor)
	if err != nil {
		return nil, fmt.Errorf("find celestia gaps: %w", err)
	}

	heights := gap.Heights(gaps)
	slices.Reverse(heights)
	b.catchUpCompleted.Store(true)

	b.logger.Info("celestia catch-up scheduled",
		zap.Int("gaps", len(gaps)),
		zap.Int("heights", len(heights)),
		zap.Uint64("cursor", cursor),
	)
	return da.CelestiaJobs(heights), nil
}

// ensureGenesis seeds height 0, which nodes cannot serve.
func (b *Backend) ensureGenesis(ctx context.Context) error {
	exists, err := b.repo.BlockExists(ctx, 0)
	if err != nil {
		return fmt.Errorf("check celestia genesis placeholder: %w", err)
	}
	if exists {
		return nil
	}
	if err := b.repo.UpsertBlock(ctx, model.GenesisPlaceholder()); err != nil {
		return fmt.Errorf("seed celestia genesis placeholder: %w", err)
	}
	return nil
}
