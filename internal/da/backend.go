package da

import (
	"context"
	"errors"
)

var (
	// ErrUnexpectedJob is returned when a backend receives a job of another layer.
	ErrUnexpectedJob = errors.New("unexpected job type")
	// ErrBlobsNotYetAvailable marks a recent batch whose blobs are not retrievable yet.
	ErrBlobsNotYetAvailable = errors.New("blobs not yet available")
	// ErrInvalidConfig is returned by backend constructors on unusable settings.
	ErrInvalidConfig = errors.New("invalid config")
)

// Backend is the scheduling contract every DA source implements.
//
// NewJobs and UnprocessedJobs read and then write the backend cursor state and
// must be called from a single goroutine. ProcessJob may run concurrently for
// distinct jobs and must be idempotent with respect to storage.
type Backend interface {
	// ProcessJob fetches the payloads addressed by job and persists them.
	ProcessJob(ctx context.Context, job Job) error
	// NewJobs returns jobs covering the range between the cursor and the source tip
	// and advances the cursor to the tip.
	NewJobs(ctx context.Context) ([]Job, error)
	// UnprocessedJobs returns jobs for historical gaps. It returns nothing once
	// catch-up has completed.
	UnprocessedJobs(ctx context.Context) ([]Job, error)
}
