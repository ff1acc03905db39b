package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/asakaida/datastore/internal/handlers"
	"github.com/asakaida/datastore/internal/infrastructure/config"
	"github.com/asakaida/datastore/internal/infrastructure/database"
	"github.com/asakaida/datastore/internal/infrastructure/logger"
	"github.com/asakaida/datastore/internal/infrastructure/metrics"
	"github.com/asakaida/datastore/internal/repositories/relational"
	"github.com/asakaida/datastore/internal/services"
	"github.com/asakaida/datastore/internal/services/manipulation"
	"github.com/asakaida/datastore/internal/services/schema"
	"github.com/asakaida/datastore/pkg/cache"
	"github.com/asakaida/datastore/pkg/cache/memorycache"
)

const (
	defaultEnv            = "dev"
	metricsUpdateInterval = 15 * time.Second
	shutdownTimeout       = 30 * time.Second
)

func main() {
	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	// Initialize configuration
	if err := config.InitConfig(env); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	// Load the record type schema
	sc, err := schema.Load(cfg.DataStore.SchemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	sc.AllowRelationshipReplace = sc.AllowRelationshipReplace || cfg.DataStore.AllowRelationshipReplace
	zl.Info("schema loaded",
		zap.String("path", cfg.DataStore.SchemaPath),
		zap.Int("types", len(sc.Types)),
		zap.Bool("allow_relationship_replace", sc.AllowRelationshipReplace))

	// Connect to database
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zl.Warn("error closing database connection", zap.Error(err))
		}
	}()
	zl.Info("connected to database", zap.String("driver", cfg.Database.Driver))

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize cache
	var resultCache cache.Cache = cache.Noop{}
	if cfg.Cache.Enabled {
		resultCache = memorycache.New(&memorycache.Config{
			MaxEntries: cfg.Cache.MaxEntries,
			DefaultTTL: time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
		})
	}

	// Initialize metrics
	collector := metrics.NewCollector()
	collector.SetCache(resultCache)
	exporter := metrics.NewPrometheusExporter(collector)

	// Initialize repository and services
	repo := relational.New(db.DB, db.Driver, sc)
	engine := manipulation.NewEngine(sc, repo,
		manipulation.WithLogger(zl.Named("manipulation")),
		manipulation.WithRecorder(metrics.NewManipulationRecorder(collector, exporter)),
	)
	dataStore := services.NewDataStore(sc, repo,
		services.WithEngine(engine),
		services.WithLogger(zl.Named("datastore")),
		services.WithCache(resultCache),
		services.WithPageSizes(cfg.DataStore.DefaultPageSize, cfg.DataStore.MaxPageSize),
		services.WithStrategyDriver(cfg.DataStore.StrategyDriver),
	)

	// Create gRPC server
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(metrics.UnaryServerInterceptor(collector, exporter)),
	)
	handlers.RegisterDataStoreServer(grpcServer, handlers.NewDataStoreHandler(dataStore, sc))

	// Register reflection service (for grpcurl, etc.)
	reflection.Register(grpcServer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 2)
	go func() {
		zl.Info("gRPC server listening", zap.String("addr", addr))
		if err := grpcServer.Serve(listener); err != nil {
			serverErrors <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		zl.Info("metrics server listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go updateMetrics(ctx, exporter)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		grpcServer.Stop()
		_ = metricsServer.Close()
		return err
	case sig := <-sigChan:
		zl.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Channel to notify when graceful stop completes
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		zl.Info("gRPC server stopped gracefully")
	case <-shutdownCtx.Done():
		zl.Warn("shutdown timeout exceeded, forcing stop")
		grpcServer.Stop()
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zl.Warn("error stopping metrics server", zap.Error(err))
	}

	zl.Info("shutdown complete")
	return nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// updateMetrics refreshes the cache gauges until ctx is done
func updateMetrics(ctx context.Context, exporter *metrics.PrometheusExporter) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			exporter.Update()
		}
	}
}
