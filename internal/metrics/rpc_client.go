package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "rpc_client",
		Name:      "operations_total",
		Help:      "Count of upstream RPC operations.",
	}, []string{"operation", "layer", "upstream", "status"})
	rpcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "rpc_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of upstream RPC operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "layer", "upstream", "status"})
)

// RPCClient tracks metrics for calls to one upstream of a layer.
type RPCClient struct {
	layer    string
	upstream string
}

// NewRPCClient constructs a metrics collector for RPC calls, e.g. ("eigenda", "disperser").
func NewRPCClient(layer model.Layer, upstream string) *RPCClient {
	if upstream == "" {
		upstream = "unknown"
	}
	return &RPCClient{layer: layerLabel(layer), upstream: upstream}
}

// Observe records a single RPC call outcome and duration.
func (m RPCClient) Observe(operation string, err error, started time.Time) {
	status := statusLabel(err)
	rpcRequestsTotal.WithLabelValues(operation, m.layer, m.upstream, status).Inc()
	rpcRequestDuration.WithLabelValues(operation, m.layer, m.upstream, status).Observe(time.Since(started).Seconds())
}
