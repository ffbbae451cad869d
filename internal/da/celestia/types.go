package celestia

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/gap"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Source fetches headers and blobs from a Celestia node.
	Source interface {
		LatestHeight(ctx context.Context) (uint64, error)
		Header(ctx context.Context, height uint64) (*Header, error)
		Blobs(ctx context.Context, height uint64) ([]Blob, error)
	}
	// Repository persists Celestia blocks and blobs.
	Repository interface {
		InTx(ctx context.Context, fn func(ctx context.Context) error) error
		BlockExists(ctx context.Context, height uint64) (bool, error)
		UpsertBlock(ctx context.Context, block model.CelestiaBlock) error
		UpsertBlobs(ctx context.Context, blobs []model.CelestiaBlob) error
		FindGaps(ctx context.Context, floor, to uint64) ([]gap.Range, error)
	}
	// RPCCaller is the JSON-RPC transport of the node client.
	RPCCaller interface {
		CallContext(ctx context.Context, result any, method string, args ...any) error
	}
	// RPCMetrics records metrics for node calls.
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
