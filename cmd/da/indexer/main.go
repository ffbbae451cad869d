package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/clock"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/celestia"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/eigenda"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/indexer"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/objectstore"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/repository/clickhouse"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/repository/postgres"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/stats"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/metrics"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/pkg/batcher"
	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var config struct {
	Addr     string `long:"addr" env:"DA_INDEXER_ADDR" description:"grpc health addr" default:":8010"`
	RestAddr string `long:"rest-addr" env:"DA_INDEXER_REST_ADDR" description:"rest addr serving /healthz and /metrics" default:":8011"`

	PostgresDSN      string `long:"postgres-dsn" env:"DA_INDEXER_POSTGRES_DSN" description:"postgres dsn" required:"true"`
	PostgresMaxConns int32  `long:"postgres-max-conns" env:"DA_INDEXER_POSTGRES_MAX_CONNS" description:"postgres pool size" default:"50"`

	ClickhouseDSN           string        `long:"clickhouse-dsn" env:"DA_INDEXER_CLICKHOUSE_DSN" description:"clickhouse dsn for job-run statistics; empty disables them"`
	StatsFlushSize          int           `long:"stats-flush-size" env:"DA_INDEXER_STATS_FLUSH_SIZE" description:"job runs per statistics insert" default:"1000"`
	StatsFlushInterval      time.Duration `long:"stats-flush-interval" env:"DA_INDEXER_STATS_FLUSH_INTERVAL" description:"statistics flush interval" default:"5s"`
	StatsFlushesPerSecond   int           `long:"stats-flushes-per-second" env:"DA_INDEXER_STATS_FLUSHES_PER_SECOND" description:"statistics insert rate cap" default:"2"`
	ObjectStoreEndpoint     string        `long:"object-store-endpoint" env:"DA_INDEXER_OBJECT_STORE_ENDPOINT" description:"s3/minio endpoint for oversized blobs; empty keeps blobs inline"`
	ObjectStoreAccessKey    string        `long:"object-store-access-key" env:"DA_INDEXER_OBJECT_STORE_ACCESS_KEY" description:"object store access key"`
	ObjectStoreSecretKey    string        `long:"object-store-secret-key" env:"DA_INDEXER_OBJECT_STORE_SECRET_KEY" description:"object store secret key"`
	ObjectStoreBucket       string        `long:"object-store-bucket" env:"DA_INDEXER_OBJECT_STORE_BUCKET" description:"object store bucket" default:"da-blobs"`
	ObjectStoreSSL          bool          `long:"object-store-ssl" env:"DA_INDEXER_OBJECT_STORE_SSL" description:"use tls for the object store"`
	ObjectStoreInlineThresh int           `long:"object-store-inline-threshold" env:"DA_INDEXER_OBJECT_STORE_INLINE_THRESHOLD" description:"largest payload kept inline, bytes" default:"1048576"`

	Workers        int           `long:"workers" env:"DA_INDEXER_WORKERS" description:"concurrent jobs per layer" default:"20"`
	InitialBackoff time.Duration `long:"initial-backoff" env:"DA_INDEXER_INITIAL_BACKOFF" description:"first retry delay" default:"1s"`
	MaxBackoff     time.Duration `long:"max-backoff" env:"DA_INDEXER_MAX_BACKOFF" description:"retry delay cap" default:"1m"`
	PollInterval   time.Duration `long:"poll-interval" env:"DA_INDEXER_POLL_INTERVAL" description:"sleep when there is nothing to do" default:"5s"`

	CelestiaEnabled       bool     `long:"celestia" env:"DA_INDEXER_CELESTIA" description:"index celestia"`
	CelestiaRPCURL        string   `long:"celestia-rpc-url" env:"DA_INDEXER_CELESTIA_RPC_URL" description:"celestia-node json-rpc url"`
	CelestiaAuthToken     string   `long:"celestia-auth-token" env:"DA_INDEXER_CELESTIA_AUTH_TOKEN" description:"celestia-node auth token"`
	CelestiaNamespaces    []string `long:"celestia-namespace" env:"DA_INDEXER_CELESTIA_NAMESPACES" env-delim:"," description:"hex namespace to index; repeatable"`
	CelestiaStartHeight   int64    `long:"celestia-start-height" env:"DA_INDEXER_CELESTIA_START_HEIGHT" default:"-1" description:"initial cursor; negative starts at the network head"`
	CelestiaSaveBatchSize int      `long:"celestia-save-batch-size" env:"DA_INDEXER_CELESTIA_SAVE_BATCH_SIZE" description:"blobs per insert" default:"100"`

	EigenDAEnabled          bool   `long:"eigenda" env:"DA_INDEXER_EIGENDA" description:"index eigenda"`
	EigenDARPCURL           string `long:"eigenda-rpc-url" env:"DA_INDEXER_EIGENDA_RPC_URL" description:"l1 json-rpc url"`
	EigenDADisperserAddr    string `long:"eigenda-disperser-addr" env:"DA_INDEXER_EIGENDA_DISPERSER_ADDR" description:"disperser grpc addr"`
	EigenDADisperserTLS     bool   `long:"eigenda-disperser-tls" env:"DA_INDEXER_EIGENDA_DISPERSER_TLS" description:"use tls for the disperser"`
	EigenDADisperserRPS     int    `long:"eigenda-disperser-rps" env:"DA_INDEXER_EIGENDA_DISPERSER_RPS" description:"disperser calls per second; 0 is unlimited" default:"50"`
	EigenDAServiceManager   string `long:"eigenda-service-manager" env:"DA_INDEXER_EIGENDA_SERVICE_MANAGER" description:"service manager contract address"`
	EigenDACreationBlock    uint64 `long:"eigenda-creation-block" env:"DA_INDEXER_EIGENDA_CREATION_BLOCK" description:"service manager deployment block"`
	EigenDAStartBlock       int64  `long:"eigenda-start-block" env:"DA_INDEXER_EIGENDA_START_BLOCK" default:"-1" description:"initial cursor; negative starts at the l1 head"`
	EigenDARPCBatchSize     uint64 `long:"eigenda-rpc-batch-size" env:"DA_INDEXER_EIGENDA_RPC_BATCH_SIZE" description:"blocks per eth_getLogs call" default:"1000"`
	EigenDASaveBatchSize    int    `long:"eigenda-save-batch-size" env:"DA_INDEXER_EIGENDA_SAVE_BATCH_SIZE" description:"blobs per insert" default:"10"`
	EigenDAPruningThreshold uint64 `long:"eigenda-pruning-threshold" env:"DA_INDEXER_EIGENDA_PRUNING_THRESHOLD" description:"blocks after which an empty batch is accepted" default:"100800"`
}

const (
	celestiaHealthService = "da.celestia"
	eigenDAHealthService  = "da.eigenda"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	grpcZap.ReplaceGrpcLoggerV2(logger)
	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}
	if !config.CelestiaEnabled && !config.EigenDAEnabled {
		logger.Fatal("No layer enabled; pass --celestia and/or --eigenda")
	}

	healthServer := health.NewServer()
	for _, service := range []string{"", celestiaHealthService, eigenDAHealthService} {
		healthServer.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	grpcServer := serveGRPC(ctx, healthServer, logger)
	httpServer := serveHTTP(ctx, logger)

	db, err := postgres.Open(ctx, config.PostgresDSN, config.PostgresMaxConns)
	if err != nil {
		logger.Fatal("Open postgres", zap.Error(err))
	}
	defer db.Close()

	var repoOpts []postgres.Option
	if config.ObjectStoreEndpoint != "" {
		store, err := objectstore.NewMinIO(ctx, objectstore.Config{
			Endpoint:  config.ObjectStoreEndpoint,
			AccessKey: config.ObjectStoreAccessKey,
			SecretKey: config.ObjectStoreSecretKey,
			Bucket:    config.ObjectStoreBucket,
			UseSSL:    config.ObjectStoreSSL,
		})
		if err != nil {
			logger.Fatal("Open object store", zap.Error(err))
		}
		repoOpts = append(repoOpts, postgres.WithObjectStore(store, config.ObjectStoreInlineThresh))
	}

	var recorder indexer.StatsRecorder = stats.Discard{}
	if config.ClickhouseDSN != "" {
		chRepo, err := clickhouse.NewRepository(config.ClickhouseDSN, metrics.NewClickhouseRepository())
		if err != nil {
			logger.Fatal("Open clickhouse", zap.Error(err))
		}
		defer func() {
			_ = chRepo.Close()
		}()
		r := stats.NewRecorder(chRepo, batcher.Config{
			FlushSize:        config.StatsFlushSize,
			FlushInterval:    config.StatsFlushInterval,
			FlushesPerSecond: config.StatsFlushesPerSecond,
		}, logger)
		r.Start(ctx)
		defer r.Stop()
		recorder = r
	}

	driverCfg := indexer.Config{
		Workers:      config.Workers,
		Backoff:      clock.Backoff{Initial: config.InitialBackoff, Max: config.MaxBackoff},
		PollInterval: config.PollInterval,
		CatchUpChunk: indexer.DefaultCatchUpChunk,
	}
	pgMetrics := metrics.NewPostgresRepository()

	var drivers []*indexer.Driver
	if config.CelestiaEnabled {
		backend := newCelestiaBackend(ctx, postgres.NewCelestiaRepository(db, pgMetrics, repoOpts...), logger)
		driver, err := indexer.NewDriver(model.Celestia, backend, recorder, metrics.NewIndexer(model.Celestia), driverCfg, logger)
		if err != nil {
			logger.Fatal("Create celestia indexer", zap.Error(err))
		}
		drivers = append(drivers, driver)
		healthServer.SetServingStatus(celestiaHealthService, healthpb.HealthCheckResponse_SERVING)
	}
	if config.EigenDAEnabled {
		backend := newEigenDABackend(ctx, postgres.NewEigenDARepository(db, pgMetrics, repoOpts...), logger)
		driver, err := indexer.NewDriver(model.EigenDA, backend, recorder, metrics.NewIndexer(model.EigenDA), driverCfg, logger)
		if err != nil {
			logger.Fatal("Create eigenda indexer", zap.Error(err))
		}
		drivers = append(drivers, driver)
		healthServer.SetServingStatus(eigenDAHealthService, healthpb.HealthCheckResponse_SERVING)
	}
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	var wg sync.WaitGroup
	for _, driver := range drivers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := driver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Indexer stopped", zap.Error(err))
				stop()
			}
		}()
	}
	wg.Wait()

	logger.Info("Shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(context.Background()); err != nil {
		logger.Error("Failed to shutdown http server", zap.Error(err))
	}
}

func newCelestiaBackend(ctx context.Context, repo *postgres.CelestiaRepository, logger *zap.Logger) *celestia.Backend {
	namespaces, err := celestia.ParseNamespaces(config.CelestiaNamespaces)
	if err != nil {
		logger.Fatal("Parse celestia namespaces", zap.Error(err))
	}
	rpcClient, err := celestia.Dial(ctx, config.CelestiaRPCURL, config.CelestiaAuthToken)
	if err != nil {
		logger.Fatal("Dial celestia node", zap.Error(err))
	}
	source, err := celestia.NewRPCClient(rpcClient, namespaces, metrics.NewRPCClient(model.Celestia, "node"))
	if err != nil {
		logger.Fatal("Create celestia client", zap.Error(err))
	}

	backend, err := celestia.New(ctx, source, repo, celestia.Config{
		StartHeight:   optional(config.CelestiaStartHeight),
		SaveBatchSize: config.CelestiaSaveBatchSize,
	}, logger)
	if err != nil {
		logger.Fatal("Create celestia backend", zap.Error(err))
	}
	return backend
}

func newEigenDABackend(ctx context.Context, repo *postgres.EigenDARepository, logger *zap.Logger) *eigenda.Backend {
	if !common.IsHexAddress(config.EigenDAServiceManager) {
		logger.Fatal("Invalid eigenda service manager address", zap.String("address", config.EigenDAServiceManager))
	}
	ethClient, err := eigenda.DialEthereum(ctx, config.EigenDARPCURL)
	if err != nil {
		logger.Fatal("Dial ethereum node", zap.Error(err))
	}
	conn, err := eigenda.DialDisperser(config.EigenDADisperserAddr, config.EigenDADisperserTLS)
	if err != nil {
		logger.Fatal("Dial eigenda disperser", zap.Error(err))
	}

	backend, err := eigenda.New(ctx,
		eigenda.NewRPCLogSource(ethClient, metrics.NewRPCClient(model.EigenDA, "ethereum")),
		eigenda.NewDisperserClient(conn, config.EigenDADisperserRPS, metrics.NewRPCClient(model.EigenDA, "disperser")),
		repo,
		eigenda.Config{
			ServiceManager:        common.HexToAddress(config.EigenDAServiceManager),
			CreationBlock:         config.EigenDACreationBlock,
			StartBlock:            optional(config.EigenDAStartBlock),
			RPCBatchSize:          config.EigenDARPCBatchSize,
			SaveBatchSize:         config.EigenDASaveBatchSize,
			PruningBlockThreshold: config.EigenDAPruningThreshold,
		},
		logger,
	)
	if err != nil {
		logger.Fatal("Create eigenda backend", zap.Error(err))
	}
	return backend
}

func serveGRPC(ctx context.Context, healthServer *health.Server, logger *zap.Logger) *grpc.Server {
	chain := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger),
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(chain...)),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	grpcPrometheus.EnableHandlingTimeHistogram()
	grpcPrometheus.Register(grpcServer)

	socket, err := (&net.ListenConfig{}).Listen(ctx, "tcp", config.Addr)
	if err != nil {
		logger.Fatal("net.Listen error", zap.Error(err))
	}
	go func() {
		if serveErr := grpcServer.Serve(socket); serveErr != nil {
			logger.Fatal("Start GRPC server", zap.Error(serveErr))
		}
	}()
	return grpcServer
}

func serveHTTP(ctx context.Context, logger *zap.Logger) *http.Server {
	conn, err := grpc.NewClient(config.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Fatal("Dial health server", zap.Error(err))
	}
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	mux := http.NewServeMux()
	gw := gwruntime.NewServeMux(gwruntime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))
	mux.Handle("/", gw)
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              config.RestAddr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", config.RestAddr))
		if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to listen and serve", zap.Error(err))
		}
	}()
	return s
}

// optional maps a negative flag value to "unset".
func optional(v int64) *uint64 {
	if v < 0 {
		return nil
	}
	u := uint64(v)
	return &u
}
