package eigenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// DialEthereum connects to an L1 JSON-RPC endpoint.
func DialEthereum(ctx context.Context, url string) (*ethclient.Client, error) {
	if url == "" {
		return nil, errors.New("ethereum rpc url is required")
	}
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum rpc: %w", err)
	}
	return client, nil
}

// RPCLogSource implements LogSource with metrics instrumentation.
type RPCLogSource struct {
	client  EthClient
	metrics RPCMetrics
}

// NewRPCLogSource wraps an ethereum client.
func NewRPCLogSource(client EthClient, metrics RPCMetrics) *RPCLogSource {
	return &RPCLogSource{client: client, metrics: metrics}
}

// LatestBlock returns the current L1 block number.
func (s *RPCLogSource) LatestBlock(ctx context.Context) (number uint64, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("block_number", err, started)
	}()

	number, err = s.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("get block number: %w", err)
	}
	return number, nil
}

// FilterLogs returns logs matching query.
func (s *RPCLogSource) FilterLogs(ctx context.Context, query ethereum.FilterQuery) (logs []types.Log, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("filter_logs", err, started)
	}()

	logs, err = s.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("filter logs %v-%v: %w", query.FromBlock, query.ToBlock, err)
	}
	return logs, nil
}
