package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
)

// SnapshotBuilder provides a fluent interface for creating stored snapshots.
//
// Example usage:
//
//	// Simple creation with defaults
//	record := testutil.NewSnapshot(1000, 200).Build(t, db)
//
//	// Customized snapshot
//	record := testutil.NewSnapshot(1000, 200).
//	    WithReferenceBalance(50).
//	    WithAssetCount(3).
//	    Build(t, db)
type SnapshotBuilder struct {
	record model.ValuationRecord
}

// NewSnapshot creates a SnapshotBuilder for the given timestamp and value.
func NewSnapshot(timestamp int64, value float64) *SnapshotBuilder {
	return &SnapshotBuilder{
		record: model.ValuationRecord{
			ID:         uuid.New().String(),
			Timestamp:  timestamp,
			Value:      value,
			AssetCount: 1,
		},
	}
}

// WithReferenceBalance sets the reference currency balance.
func (b *SnapshotBuilder) WithReferenceBalance(balance float64) *SnapshotBuilder {
	b.record.ReferenceBalance = balance
	return b
}

// WithAssetCount sets the number of held assets.
func (b *SnapshotBuilder) WithAssetCount(count int) *SnapshotBuilder {
	b.record.AssetCount = count
	return b
}

// Build appends the snapshot to the history table and returns it.
func (b *SnapshotBuilder) Build(t *testing.T, db *sql.DB) model.ValuationRecord {
	t.Helper()

	record, err := repository.NewHistoryRepository(db).Append(context.Background(), b.record)
	if err != nil {
		t.Fatalf("Failed to create snapshot: %v", err)
	}
	return record
}

// CreateSnapshots appends one snapshot per (timestamp, value) pair, in order.
func CreateSnapshots(t *testing.T, db *sql.DB, points ...[2]float64) []model.ValuationRecord {
	t.Helper()

	records := make([]model.ValuationRecord, len(points))
	for i, p := range points {
		records[i] = NewSnapshot(int64(p[0]), p[1]).Build(t, db)
	}
	return records
}

// Balances builds a balance map from asset → free amount strings.
func Balances(free map[string]string) map[string]model.Balance {
	balances := make(map[string]model.Balance, len(free))
	for asset, amount := range free {
		balances[asset] = model.Balance{
			Free:   decimal.RequireFromString(amount),
			Locked: decimal.Zero,
		}
	}
	return balances
}

// Prices builds a price map from symbol → price strings.
func Prices(prices map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		out[symbol] = decimal.RequireFromString(price)
	}
	return out
}
