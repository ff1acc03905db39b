package e2e

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/handlers"
	"github.com/asakaida/datastore/internal/infrastructure/config"
	"github.com/asakaida/datastore/internal/infrastructure/database"
	"github.com/asakaida/datastore/internal/infrastructure/metrics"
	"github.com/asakaida/datastore/internal/repositories/relational"
	"github.com/asakaida/datastore/internal/services"
	"github.com/asakaida/datastore/internal/services/manipulation"
	"github.com/asakaida/datastore/internal/services/schema"
	"github.com/asakaida/datastore/pkg/cache/memorycache"
)

const bufSize = 1024 * 1024

// E2ETestServer represents an E2E test server
type E2ETestServer struct {
	Server    *grpc.Server
	Client    *handlers.DataStoreClient
	DataStore *services.DataStore
	Collector *metrics.Collector
	Conn      *grpc.ClientConn
	Listener  *bufconn.Listener
}

// SetupE2ETest wires the full server stack over a migrated sqlite database
// and serves it on an in-memory connection
func SetupE2ETest(t *testing.T) *E2ETestServer {
	t.Helper()

	projectRoot, err := findProjectRoot()
	if err != nil {
		t.Fatalf("failed to find project root: %v", err)
	}

	sc, err := schema.Load(filepath.Join(projectRoot, "schema.yaml"))
	if err != nil {
		t.Fatalf("failed to load schema: %v", err)
	}

	db, err := database.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "e2e.db"),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := zaptest.NewLogger(t)
	resultCache := memorycache.New(nil)

	collector := metrics.NewCollector()
	collector.SetCache(resultCache)

	repo := relational.New(db.DB, db.Driver, sc)
	engine := manipulation.NewEngine(sc, repo,
		manipulation.WithLogger(logger),
		manipulation.WithRecorder(metrics.NewManipulationRecorder(collector, nil)),
	)
	dataStore := services.NewDataStore(sc, repo,
		services.WithEngine(engine),
		services.WithLogger(logger),
		services.WithCache(resultCache),
	)

	// Create in-memory gRPC server with bufconn
	listener := bufconn.Listen(bufSize)
	server := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryServerInterceptor(collector, nil)))
	handlers.RegisterDataStoreServer(server, handlers.NewDataStoreHandler(dataStore, sc))

	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	bufDialer := func(context.Context, string) (net.Conn, error) {
		return listener.Dial()
	}

	conn, err := grpc.NewClient(
		"passthrough://bufconn",
		grpc.WithContextDialer(bufDialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to create client connection: %v", err)
	}

	e := &E2ETestServer{
		Server:    server,
		Client:    handlers.NewDataStoreClient(conn),
		DataStore: dataStore,
		Collector: collector,
		Conn:      conn,
		Listener:  listener,
	}
	t.Cleanup(func() {
		e.Teardown(t)
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close database: %v", err)
		}
	})
	return e
}

// Teardown stops the server and closes the client connection
func (e *E2ETestServer) Teardown(t *testing.T) {
	t.Helper()

	if e.Conn != nil {
		e.Conn.Close()
	}
	if e.Server != nil {
		e.Server.Stop()
	}
	if e.Listener != nil {
		e.Listener.Close()
	}
}

// Create stores a record through the data store and fails the test on error
func (e *E2ETestServer) Create(t *testing.T, recordType string, attrs map[string]any) *entities.Record {
	t.Helper()

	r, err := e.DataStore.Create(context.Background(), recordType, attrs)
	if err != nil {
		t.Fatalf("failed to create %s: %v", recordType, err)
	}
	return r
}

// Request builds a request struct and fails the test on unsupported values
func Request(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()

	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	return s
}

// Ref returns the {type, id} reference of a record
func Ref(r *entities.Record) map[string]any {
	return map[string]any{"type": r.Type, "id": r.ID}
}

// findProjectRoot finds the project root directory by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}
