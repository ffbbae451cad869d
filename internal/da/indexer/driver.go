// Package indexer drives a DA backend: it interleaves historical catch-up with live
// jobs and runs them through a worker pool, retrying failed jobs in later iterations.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/clock"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/pkg/workerpool"
	"go.uber.org/zap"
)

const (
	DefaultWorkers        = 20
	DefaultInitialBackoff = time.Second
	DefaultMaxBackoff     = time.Minute
	DefaultPollInterval   = 5 * time.Second
	// DefaultCatchUpChunk bounds the catch-up jobs run per iteration so live jobs are not starved.
	DefaultCatchUpChunk = 1000

	phaseCatchUp = "catch_up"
	phaseLive    = "live"
)

var errJobPanicked = errors.New("job panicked")

// Config tunes the driver loop.
type Config struct {
	Workers      int
	Backoff      clock.Backoff
	PollInterval time.Duration
	CatchUpChunk int
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		Workers:      DefaultWorkers,
		Backoff:      clock.Backoff{Initial: DefaultInitialBackoff, Max: DefaultMaxBackoff},
		PollInterval: DefaultPollInterval,
		CatchUpChunk: DefaultCatchUpChunk,
	}
}

type task struct {
	job      da.Job
	phase    string
	attempts uint32
	started  time.Time
	retryAt  time.Time
}

// Driver owns the scheduling calls of one backend. Run must not be called concurrently.
type Driver struct {
	logger  *zap.Logger
	backend Backend
	stats   StatsRecorder
	metrics Metrics
	cfg     Config
	sleep   func(context.Context, time.Duration) error
	now     func() time.Time

	pending []da.Job

	mu       sync.Mutex
	retries  []task
	retrying map[string]struct{}
}

// NewDriver builds a Driver for backend.
func NewDriver(
	layer model.Layer,
	backend Backend,
	stats StatsRecorder,
	metrics Metrics,
	cfg Config,
	logger *zap.Logger,
) (*Driver, error) {
	switch {
	case backend == nil:
		return nil, errors.New("indexer backend is required")
	case stats == nil:
		return nil, errors.New("indexer stats recorder is required")
	case metrics == nil:
		return nil, errors.New("indexer metrics is required")
	case cfg.Workers <= 0:
		return nil, fmt.Errorf("%w: indexer workers must be positive", da.ErrInvalidConfig)
	case cfg.CatchUpChunk <= 0:
		return nil, fmt.Errorf("%w: indexer catch-up chunk must be positive", da.ErrInvalidConfig)
	}

	return &Driver{
		logger:   logger.Named("indexer").With(zap.String("layer", string(layer))),
		backend:  backend,
		stats:    stats,
		metrics:  metrics,
		cfg:      cfg,
		sleep:    clock.SleepWithContext,
		now:      time.Now,
		retrying: make(map[string]struct{}),
	}, nil
}

// Run processes jobs until ctx is canceled. Jobs still waiting for a retry are
// recorded as canceled on the way out.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Info("indexer started", zap.Int("workers", d.cfg.Workers))
	defer d.abandonRetries(ctx)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		processed, err := d.iterate(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			d.logger.Warn("fetch jobs failed", zap.Error(err))
		}
		if processed > 0 {
			continue
		}

		wait := d.idleWait()
		d.logger.Debug("no jobs due; sleeping", zap.Duration("sleep", wait))
		if err := d.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// iterate fetches one round of catch-up and live jobs and processes them together
// with the retries that are due. A failed fetch does not block the other phase.
func (d *Driver) iterate(ctx context.Context) (int, error) {
	var errs []error

	if len(d.pending) == 0 {
		jobs, err := d.fetch(ctx, phaseCatchUp, d.backend.UnprocessedJobs)
		if err != nil {
			errs = append(errs, err)
		}
		d.pending = jobs
	}

	live, err := d.fetch(ctx, phaseLive, d.backend.NewJobs)
	if err != nil {
		errs = append(errs, err)
	}

	n := min(len(d.pending), d.cfg.CatchUpChunk)
	catchUp := make([]task, 0, n)
	for _, job := range d.pending[:n] {
		// already owned by the retry queue
		if d.isRetrying(job) {
			continue
		}
		catchUp = append(catchUp, task{job: job, phase: phaseCatchUp})
	}
	d.pending = d.pending[n:]
	d.metrics.SetPending(len(d.pending))

	due := d.dueRetries()

	tasks := make([]task, 0, len(live)+len(due)+len(catchUp))
	for _, job := range live {
		tasks = append(tasks, task{job: job, phase: phaseLive})
	}
	tasks = append(tasks, due...)
	tasks = append(tasks, catchUp...)

	if len(tasks) > 0 {
		err := workerpool.Process(ctx, d.cfg.Workers, tasks, d.process, nil)
		d.metrics.SetRetrying(d.retryCount())
		if err != nil {
			return len(tasks), err
		}
	}
	return len(tasks), errors.Join(errs...)
}

func (d *Driver) fetch(ctx context.Context, phase string, fetch func(context.Context) ([]da.Job, error)) ([]da.Job, error) {
	started := time.Now()
	jobs, err := fetch(ctx)
	d.metrics.ObserveFetch(phase, err, len(jobs), started)
	if err != nil {
		return nil, fmt.Errorf("fetch %s jobs: %w", phase, err)
	}
	if len(jobs) > 0 {
		d.logger.Info("jobs fetched", zap.String("phase", phase), zap.Int("jobs", len(jobs)))
	}
	return jobs, nil
}

// process makes one attempt at a job. A failed attempt is queued for a later
// iteration so the live frontier keeps moving while the job waits.
// Only a context error is returned so one job never cancels its siblings.
func (d *Driver) process(ctx context.Context, t task) error {
	if t.started.IsZero() {
		t.started = d.now()
	}
	t.attempts++

	err := d.attempt(ctx, t.job)
	switch {
	case err == nil:
		d.finish(ctx, t, model.JobRunSucceeded)
		return nil
	case ctx.Err() != nil:
		d.finish(ctx, t, model.JobRunCanceled)
		return ctx.Err()
	case errors.Is(err, da.ErrUnexpectedJob):
		d.logger.Error("job rejected", zap.Stringer("job", t.job), zap.Error(err))
		d.finish(ctx, t, model.JobRunFailed)
		return nil
	}

	delay := d.cfg.Backoff.Delay(t.attempts)
	log := d.logger.Warn
	if errors.Is(err, da.ErrBlobsNotYetAvailable) {
		log = d.logger.Debug
	}
	log("job failed, retrying",
		zap.Stringer("job", t.job),
		zap.Uint32("attempt", t.attempts),
		zap.Duration("backoff", delay),
		zap.Error(err),
	)
	d.metrics.ObserveRetry(t.phase, err)

	t.retryAt = d.now().Add(delay)
	d.scheduleRetry(t)
	return nil
}

func (d *Driver) attempt(ctx context.Context, job da.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errJobPanicked, r)
		}
	}()
	return d.backend.ProcessJob(ctx, job)
}

// finish records a final status. The run is recorded even when ctx is already canceled.
func (d *Driver) finish(ctx context.Context, t task, status model.JobRunStatus) {
	finishedAt := d.now()
	d.metrics.ObserveJob(t.phase, status, t.attempts, t.started)
	d.stats.Record(context.WithoutCancel(ctx), model.JobRun{
		Layer:      t.job.Layer(),
		Key:        t.job.String(),
		Position:   t.job.Position(),
		Phase:      t.phase,
		Attempts:   t.attempts,
		Status:     status,
		Duration:   finishedAt.Sub(t.started),
		FinishedAt: finishedAt,
	})
}

func (d *Driver) scheduleRetry(t task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.retries = append(d.retries, t)
	d.retrying[t.job.String()] = struct{}{}
}

// dueRetries removes and returns the queued retries whose backoff has elapsed.
func (d *Driver) dueRetries() []task {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	var due []task
	waiting := d.retries[:0]
	for _, t := range d.retries {
		if t.retryAt.After(now) {
			waiting = append(waiting, t)
			continue
		}
		due = append(due, t)
		delete(d.retrying, t.job.String())
	}
	clear(d.retries[len(waiting):])
	d.retries = waiting
	return due
}

func (d *Driver) isRetrying(job da.Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.retrying[job.String()]
	return ok
}

func (d *Driver) retryCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.retries)
}

// idleWait is the poll interval, shortened to the earliest queued retry.
func (d *Driver) idleWait() time.Duration {
	now := d.now()
	wait := d.cfg.PollInterval

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.retries {
		if until := t.retryAt.Sub(now); until < wait {
			wait = max(until, 0)
		}
	}
	return wait
}

func (d *Driver) abandonRetries(ctx context.Context) {
	d.mu.Lock()
	retries := d.retries
	d.retries = nil
	clear(d.retrying)
	d.mu.Unlock()

	for _, t := range retries {
		d.finish(ctx, t, model.JobRunCanceled)
	}
	if len(retries) > 0 {
		d.metrics.SetRetrying(0)
	}
}
