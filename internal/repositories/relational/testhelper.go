package relational

import (
	"path/filepath"
	"testing"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/infrastructure/config"
	"github.com/asakaida/datastore/internal/infrastructure/database"
)

// SetupTestClient opens a migrated sqlite database in a temporary directory
// and returns a client over it. The database is closed when the test ends.
func SetupTestClient(t *testing.T, schema *entities.Schema) *Client {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close database: %v", err)
		}
	})

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return New(db.DB, db.Driver, schema)
}
