package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
)

// ReferenceCurrency is the reference currency used by test services.
const ReferenceCurrency = "USDT"

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// NewTestHistoryService creates a HistoryService whose clock is fixed at now.
func NewTestHistoryService(t *testing.T, db *sql.DB, now time.Time) *service.HistoryService {
	t.Helper()

	return service.NewHistoryService(repository.NewHistoryRepository(db)).
		WithClock(FixedClock(now))
}

// NewTestValuationService creates a ValuationService valuing in USDT.
// broadcaster may be nil.
func NewTestValuationService(t *testing.T, db *sql.DB, minInterval time.Duration, broadcaster *service.Broadcaster) *service.ValuationService {
	t.Helper()

	return service.NewValuationService(
		repository.NewHistoryRepository(db),
		broadcaster,
		ReferenceCurrency,
		minInterval,
		zerolog.Nop(),
	)
}

// NewTestSnapshotService creates a SnapshotService backed by source and a
// recorder without minimum interval, timestamping every capture at now.
func NewTestSnapshotService(t *testing.T, db *sql.DB, source service.AccountSource, now time.Time) *service.SnapshotService {
	t.Helper()

	recorder := NewTestValuationService(t, db, 0, nil)
	return service.NewSnapshotService(source, recorder).WithClock(FixedClock(now))
}

// NewTestSystemService creates a SystemService for the database at dbPath.
func NewTestSystemService(t *testing.T, db *sql.DB, dbPath string) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, dbPath)
}
