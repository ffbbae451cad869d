package eigenda

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/gap"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"google.golang.org/grpc"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// LogSource reads the L1 chain the service manager is deployed on.
	LogSource interface {
		LatestBlock(ctx context.Context) (uint64, error)
		FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
	}
	// Disperser serves blobs of confirmed batches by index.
	// found is false once index is past the last blob of the batch.
	Disperser interface {
		RetrieveBlob(ctx context.Context, batchHeaderHash common.Hash, index uint32) (data []byte, found bool, err error)
	}
	// Repository persists EigenDA batches and blobs.
	Repository interface {
		UpsertBlobs(ctx context.Context, blobs []model.EigenDABlob) error
		UpsertBatch(ctx context.Context, batch model.EigenDABatch) error
		FindGaps(ctx context.Context, floor, to uint64) ([]gap.Range, error)
	}
	// EthClient is the part of ethclient.Client the log source uses.
	EthClient interface {
		BlockNumber(ctx context.Context) (uint64, error)
		FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
	}
	// Invoker issues unary gRPC calls; *grpc.ClientConn implements it.
	Invoker interface {
		Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error
	}
	// RPCMetrics records metrics for upstream calls.
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
