// Package stats buffers job-run statistics and writes them to a sink in batches.
package stats

import (
	"context"
	"errors"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/pkg/batcher"
	"go.uber.org/zap"
)

// Recorder queues job runs for batched insertion. Statistics are best effort:
// a run that cannot be queued or flushed is logged and dropped.
type Recorder struct {
	batcher *batcher.Batcher[model.JobRun]
	logger  *zap.Logger
}

// NewRecorder builds a recorder flushing into sink.
func NewRecorder(sink Sink, cfg batcher.Config, logger *zap.Logger) *Recorder {
	logger = logger.Named("stats")
	return &Recorder{
		batcher: batcher.New(logger, sink.InsertJobRuns, cfg),
		logger:  logger,
	}
}

// Start begins background flushing until ctx is done or Stop is called.
func (r *Recorder) Start(ctx context.Context) {
	r.batcher.Start(ctx)
}

// Stop flushes queued runs.
func (r *Recorder) Stop() {
	r.batcher.Stop()
}

// Record queues a finished job run.
func (r *Recorder) Record(ctx context.Context, run model.JobRun) {
	if err := r.batcher.Add(ctx, run); err != nil {
		level := r.logger.Warn
		if errors.Is(err, context.Canceled) {
			level = r.logger.Debug
		}
		level("job run not recorded",
			zap.String("layer", string(run.Layer)),
			zap.String("job", run.Key),
			zap.Error(err),
		)
	}
}

// Discard drops every run. It stands in when no statistics store is configured.
type Discard struct{}

// Record implements the driver's stats recorder.
func (Discard) Record(context.Context, model.JobRun) {}
