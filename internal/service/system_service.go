package service

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/ndewijer/testnet-portfolio-panel/internal/database"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
	"github.com/ndewijer/testnet-portfolio-panel/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db     *sql.DB
	dbPath string
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, dbPath string) *SystemService {
	return &SystemService{
		db:     db,
		dbPath: dbPath,
	}
}

// DiskUsage describes the filesystem holding the history database.
type DiskUsage struct {
	Path        string
	FreeBytes   uint64
	UsedPercent float64
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckDiskUsage reports free space on the volume holding the database. A full
// disk is the usual cause of store write failures.
func (s *SystemService) CheckDiskUsage() (DiskUsage, error) {
	dir := filepath.Dir(s.dbPath)
	usage, err := disk.Usage(dir)
	if err != nil {
		return DiskUsage{}, fmt.Errorf("failed to read disk usage for %s: %w", dir, err)
	}
	return DiskUsage{
		Path:        dir,
		FreeBytes:   usage.Free,
		UsedPercent: usage.UsedPercent,
	}, nil
}

// CheckVersion reports the application version and migration status.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	status, err := database.Status(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	info := model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(status.Version, 10),
		Features: map[string]bool{
			"asset_breakdown":  true,
			"history_backfill": true,
			"history_metadata": true,
			"live_stream":      true,
			"retention":        true,
		},
		MigrationNeeded: status.PendingChanges,
	}
	if status.PendingChanges {
		msg := fmt.Sprintf("database schema at version %d, latest is %d", status.Version, status.LatestVersion)
		info.MigrationMessage = &msg
	}
	return info, nil
}
