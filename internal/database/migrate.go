package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SchemaStatus describes the migration state of the database.
type SchemaStatus struct {
	Version        int64
	LatestVersion  int64
	PendingChanges bool
}

func newProvider(db *sql.DB) (*goose.Provider, error) {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate applies all pending schema migrations and returns how many ran.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return len(results), nil
}

// Status reports the current and latest known schema versions.
func Status(ctx context.Context, db *sql.DB) (SchemaStatus, error) {
	provider, err := newProvider(db)
	if err != nil {
		return SchemaStatus{}, err
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	pending, err := provider.HasPending(ctx)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to check pending migrations: %w", err)
	}

	status := SchemaStatus{Version: version, PendingChanges: pending}
	for _, source := range provider.ListSources() {
		if source.Version > status.LatestVersion {
			status.LatestVersion = source.Version
		}
	}
	return status, nil
}
