package stats

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Sink persists job-run rows.
	Sink interface {
		InsertJobRuns(ctx context.Context, runs []model.JobRun) error
	}
)
