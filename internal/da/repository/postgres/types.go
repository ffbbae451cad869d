package postgres

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Metrics observes repository operations.
	Metrics interface {
		Observe(operation string, layer model.Layer, err error, started time.Time)
	}
	// ObjectStore holds payloads above the inline threshold.
	ObjectStore interface {
		Put(ctx context.Context, key string, data []byte) error
		Get(ctx context.Context, key string) ([]byte, error)
	}
)
