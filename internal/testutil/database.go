package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ndewijer/testnet-portfolio-panel/internal/database"
)

// SetupTestDB creates a file-backed SQLite database in a temporary directory
// and applies the production migrations. The database is automatically closed
// and removed when the test completes.
//
// A file is used instead of ":memory:" so that pooled connections share one
// database and concurrent readers exercise WAL behavior like production does.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(TestDBPath(t))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if _, err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestDBPath returns a fresh database path inside the test's temporary directory.
func TestDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "portfolio_history.db")
}
