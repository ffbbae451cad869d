package indexer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Backend interface {
		ProcessJob(ctx context.Context, job da.Job) error
		NewJobs(ctx context.Context) ([]da.Job, error)
		UnprocessedJobs(ctx context.Context) ([]da.Job, error)
	}
	StatsRecorder interface {
		Record(ctx context.Context, run model.JobRun)
	}
	Metrics interface {
		ObserveFetch(phase string, err error, jobs int, started time.Time)
		ObserveJob(phase string, status model.JobRunStatus, attempts uint32, started time.Time)
		ObserveRetry(phase string, err error)
		SetPending(jobs int)
		SetRetrying(jobs int)
	}
)
