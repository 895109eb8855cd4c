package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
)

// HistoryRepository provides access to the append-only portfolio_history table.
//
// Writes (Append and Prune) are serialized by a mutex so at most one write is in
// flight; every append is a single-row INSERT, so readers observe either the whole
// record or nothing. Reads take no lock and run concurrently on WAL snapshots.
type HistoryRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewHistoryRepository creates a new HistoryRepository with the provided database connection.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

const historyColumns = `id, timestamp, value, reference_balance, asset_count, assets`

// Append durably stores a snapshot. An empty record ID is replaced with a new UUID.
// The stored record is returned.
func (r *HistoryRepository) Append(ctx context.Context, record model.ValuationRecord) (model.ValuationRecord, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	var assets sql.NullString
	if len(record.Assets) > 0 {
		encoded, err := json.Marshal(record.Assets)
		if err != nil {
			return model.ValuationRecord{}, fmt.Errorf("failed to encode asset breakdown: %w", err)
		}
		assets = sql.NullString{String: string(encoded), Valid: true}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portfolio_history (id, timestamp, value, reference_balance, asset_count, assets)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Timestamp,
		record.Value,
		record.ReferenceBalance,
		record.AssetCount,
		assets,
	)
	if err != nil {
		return model.ValuationRecord{}, fmt.Errorf("%w: failed to insert snapshot: %w", apperrors.ErrStoreWriteFailure, err)
	}

	return record, nil
}

// Query streams every record with start <= timestamp <= end in ascending timestamp
// order; records sharing a timestamp are returned in insertion order.
//
// The callback pattern lets callers build whatever series shape they need without
// materializing an intermediate slice. Returning an error from the callback stops
// iteration and is returned as-is.
func (r *HistoryRepository) Query(
	ctx context.Context,
	start, end int64,
	callback func(record model.ValuationRecord) error,
) error {
	if start > end {
		return nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+historyColumns+`
		FROM portfolio_history
		WHERE timestamp >= ?
		AND timestamp <= ?
		ORDER BY timestamp ASC, seq ASC
	`, start, end)
	if err != nil {
		return fmt.Errorf("failed to query portfolio_history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return err
		}
		if err := callback(record); err != nil {
			return err
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating portfolio_history: %w", err)
	}

	return nil
}

// LatestAtOrBefore returns the most recent record with timestamp <= ts.
// Returns apperrors.ErrSnapshotNotFound when history starts after ts.
func (r *HistoryRepository) LatestAtOrBefore(ctx context.Context, ts int64) (model.ValuationRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+`
		FROM portfolio_history
		WHERE timestamp <= ?
		ORDER BY timestamp DESC, seq DESC
		LIMIT 1
	`, ts)
	return scanSingle(row)
}

// Latest returns the most recent record.
func (r *HistoryRepository) Latest(ctx context.Context) (model.ValuationRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+`
		FROM portfolio_history
		ORDER BY timestamp DESC, seq DESC
		LIMIT 1
	`)
	return scanSingle(row)
}

// Earliest returns the oldest record.
func (r *HistoryRepository) Earliest(ctx context.Context) (model.ValuationRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+`
		FROM portfolio_history
		ORDER BY timestamp ASC, seq ASC
		LIMIT 1
	`)
	return scanSingle(row)
}

// Count returns the number of stored records.
func (r *HistoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM portfolio_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count portfolio_history: %w", err)
	}
	return count, nil
}

// Prune removes every record older than cutoff and returns how many were removed.
// This is the retention policy; individual records are never deleted.
func (r *HistoryRepository) Prune(ctx context.Context, cutoff int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, `DELETE FROM portfolio_history WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prune snapshots: %w", apperrors.ErrStoreWriteFailure, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	return removed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (model.ValuationRecord, error) {
	var (
		record model.ValuationRecord
		assets sql.NullString
	)
	err := row.Scan(
		&record.ID,
		&record.Timestamp,
		&record.Value,
		&record.ReferenceBalance,
		&record.AssetCount,
		&assets,
	)
	if err != nil {
		return model.ValuationRecord{}, fmt.Errorf("failed to scan portfolio_history row: %w", err)
	}

	if assets.Valid && assets.String != "" {
		if err := json.Unmarshal([]byte(assets.String), &record.Assets); err != nil {
			return model.ValuationRecord{}, fmt.Errorf("failed to decode asset breakdown of %s: %w", record.ID, err)
		}
	}
	return record, nil
}

func scanSingle(row *sql.Row) (model.ValuationRecord, error) {
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ValuationRecord{}, apperrors.ErrSnapshotNotFound
	}
	return record, err
}
