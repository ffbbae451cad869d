package celestia

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/pkg/safe"
)

// errBlobNotFound is the message celestia-node returns for heights without blobs in the namespaces.
const errBlobNotFound = "blob: not found"

// Dial opens a JSON-RPC connection to a celestia-node, authenticating with a bearer token when set.
func Dial(ctx context.Context, url, authToken string) (*rpc.Client, error) {
	if url == "" {
		return nil, errors.New("celestia rpc url is required")
	}

	var opts []rpc.ClientOption
	if authToken != "" {
		opts = append(opts, rpc.WithHTTPAuth(func(h http.Header) error {
			h.Set("Authorization", "Bearer "+authToken)
			return nil
		}))
	}

	client, err := rpc.DialOptions(ctx, url, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial celestia rpc: %w", err)
	}
	return client, nil
}

// RPCClient implements Source over the celestia-node JSON-RPC API.
type RPCClient struct {
	client     RPCCaller
	namespaces [][]byte
	metrics    RPCMetrics
}

// NewRPCClient constructs an instrumented node client reading blobs of the given namespaces.
func NewRPCClient(client RPCCaller, namespaces [][]byte, metrics RPCMetrics) (*RPCClient, error) {
	if client == nil {
		return nil, errors.New("celestia rpc client is required")
	}
	if len(namespaces) == 0 {
		return nil, errors.New("at least one celestia namespace is required")
	}
	return &RPCClient{client: client, namespaces: namespaces, metrics: metrics}, nil
}

type extendedHeader struct {
	Header struct {
		Height int64     `json:"height,string"`
		Time   time.Time `json:"time"`
	} `json:"header"`
	Commit struct {
		BlockID struct {
			Hash string `json:"hash"`
		} `json:"block_id"`
	} `json:"commit"`
	DAH struct {
		RowRoots [][]byte `json:"row_roots"`
	} `json:"dah"`
}

type rpcBlob struct {
	Namespace  []byte `json:"namespace"`
	Data       []byte `json:"data"`
	Commitment []byte `json:"commitment"`
}

// LatestHeight returns the height of the network head.
func (c *RPCClient) LatestHeight(ctx context.Context) (height uint64, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("network_head", err, started)
	}()

	var raw extendedHeader
	if err = c.client.CallContext(ctx, &raw, "header.NetworkHead"); err != nil {
		return 0, fmt.Errorf("get network head: %w", err)
	}
	return safe.Uint64(raw.Header.Height)
}

// Header returns the extended header at height.
func (c *RPCClient) Header(ctx context.Context, height uint64) (header *Header, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("get_header", err, started)
	}()

	var raw extendedHeader
	if err = c.client.CallContext(ctx, &raw, "header.GetByHeight", height); err != nil {
		return nil, fmt.Errorf("get header %d: %w", height, err)
	}
	header, err = convertHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("convert header %d: %w", height, err)
	}
	if header.Height != height {
		err = fmt.Errorf("node returned header %d for height %d", header.Height, height)
		return nil, err
	}
	return header, nil
}

// Blobs returns the blobs of the configured namespaces at height, in node order.
func (c *RPCClient) Blobs(ctx context.Context, height uint64) (blobs []Blob, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("get_all_blobs", err, started)
	}()

	var raw []*rpcBlob
	err = c.client.CallContext(ctx, &raw, "blob.GetAll", height, c.namespaces)
	if err != nil && strings.Contains(err.Error(), errBlobNotFound) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get blobs %d: %w", height, err)
	}

	blobs = make([]Blob, 0, len(raw))
	for _, b := range raw {
		if b == nil {
			continue
		}
		blobs = append(blobs, Blob{Namespace: b.Namespace, Commitment: b.Commitment, Data: b.Data})
	}
	return blobs, nil
}

func convertHeader(raw extendedHeader) (*Header, error) {
	height, err := safe.Uint64(raw.Header.Height)
	if err != nil {
		return nil, err
	}
	hash, err := hex.DecodeString(raw.Commit.BlockID.Hash)
	if err != nil {
		return nil, fmt.Errorf("decode block hash: %w", err)
	}
	return &Header{
		Height:   height,
		Hash:     hash,
		Time:     raw.Header.Time,
		RowRoots: len(raw.DAH.RowRoots),
	}, nil
}
