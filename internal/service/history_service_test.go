package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
	"github.com/ndewijer/testnet-portfolio-panel/internal/testutil"
)

const week = int64(7 * 24 * 60 * 60)

var historyNow = time.Unix(1_700_000_000, 0).UTC()

// TestHistoryService_GetHistory tests range queries with stats.
//
// WHY: The chart endpoint is the main consumer of the history store. Empty ranges
// must be a normal result and stats must reflect exactly the returned series.
func TestHistoryService_GetHistory(t *testing.T) {
	ctx := context.Background()
	now := historyNow.Unix()

	t.Run("empty store returns zero stats", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		result, err := svc.GetHistory(ctx, "1w", false)
		require.NoError(t, err)

		assert.NotNil(t, result.Series)
		assert.Empty(t, result.Series)
		assert.Equal(t, model.HistoryStats{}, result.Stats)
		assert.Equal(t, model.RangeWeek, result.Range)
		assert.Equal(t, now-week, result.Start)
		assert.Equal(t, now, result.End)
		assert.True(t, result.InsufficientHistory)
		assert.Equal(t, "No portfolio history recorded yet", result.Message)
	})

	t.Run("unknown token fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		_, err := svc.GetHistory(ctx, "2w", false)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRangeToken)
	})

	t.Run("token matching ignores case", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		result, err := svc.GetHistory(ctx, "YTD", false)
		require.NoError(t, err)
		assert.Equal(t, model.RangeYearToDate, result.Range)
		assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC).Unix(), result.Start)
	})

	t.Run("stats follow the window series", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db,
			[2]float64{float64(now - 2*week), 50},
			[2]float64{float64(now - 3000), 200},
			[2]float64{float64(now - 2000), 150},
			[2]float64{float64(now - 1000), 260},
			[2]float64{float64(now - 10), 250},
		)

		result, err := svc.GetHistory(ctx, "1w", false)
		require.NoError(t, err)

		require.Len(t, result.Series, 4)
		assert.Equal(t, model.HistoryStats{
			StartValue:    200,
			EndValue:      250,
			MinValue:      150,
			MaxValue:      260,
			ChangePercent: 25,
		}, result.Stats)
		assert.False(t, result.InsufficientHistory)
		assert.Empty(t, result.Message)
	})

	t.Run("zero start value reports zero change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db,
			[2]float64{float64(now - 2000), 0},
			[2]float64{float64(now - 1000), 500},
		)

		result, err := svc.GetHistory(ctx, "1d", false)
		require.NoError(t, err)
		assert.Zero(t, result.Stats.ChangePercent)
		assert.Equal(t, 500.0, result.Stats.EndValue)
	})

	t.Run("duplicate timestamps keep the last value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db,
			[2]float64{float64(now - 1000), 100},
			[2]float64{float64(now - 1000), 120},
			[2]float64{float64(now - 500), 130},
		)

		result, err := svc.GetHistory(ctx, "1d", false)
		require.NoError(t, err)
		assert.Equal(t, []model.HistoryPoint{
			{Timestamp: now - 1000, Value: 120},
			{Timestamp: now - 500, Value: 130},
		}, result.Series)
	})

	t.Run("all never reports insufficient history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db, [2]float64{float64(now - 1000), 100})

		result, err := svc.GetHistory(ctx, "all", true)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Start)
		assert.Len(t, result.Series, 1)
		assert.False(t, result.InsufficientHistory)
	})
}

// TestHistoryService_Backfill tests window-start backfill through GetHistory.
//
// WHY: Without a point at the window edge the chart ramps from nothing. The
// synthetic point must carry the last known value and only exist when history
// really reaches back to the window start.
func TestHistoryService_Backfill(t *testing.T) {
	ctx := context.Background()
	now := historyNow.Unix()
	start := now - week

	t.Run("carries the last value back to the window start", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db,
			[2]float64{float64(start - 100), 200},
			[2]float64{float64(now - 10), 300},
		)

		result, err := svc.GetHistory(ctx, "1w", true)
		require.NoError(t, err)

		require.Len(t, result.Series, 2)
		assert.Equal(t, model.HistoryPoint{Timestamp: start, Value: 200, Estimated: true}, result.Series[0])
		assert.Equal(t, model.HistoryPoint{Timestamp: now - 10, Value: 300}, result.Series[1])
		assert.Equal(t, 50.0, result.Stats.ChangePercent)
		assert.False(t, result.InsufficientHistory)
	})

	t.Run("no backfill without the flag", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db,
			[2]float64{float64(start - 100), 200},
			[2]float64{float64(now - 10), 300},
		)

		result, err := svc.GetHistory(ctx, "1w", false)
		require.NoError(t, err)
		require.Len(t, result.Series, 1)
		assert.Equal(t, 300.0, result.Stats.StartValue)
	})

	t.Run("history starting inside the window is not backfilled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		first := start + 500
		testutil.CreateSnapshots(t, db, [2]float64{float64(first), 200})

		result, err := svc.GetHistory(ctx, "1w", true)
		require.NoError(t, err)

		require.Len(t, result.Series, 1)
		assert.Equal(t, first, result.Series[0].Timestamp)
		assert.True(t, result.InsufficientHistory)
		assert.Equal(t,
			"Portfolio history begins at "+time.Unix(first, 0).UTC().Format(time.RFC3339)+", after the start of the requested range",
			result.Message,
		)
	})

	t.Run("a record at the window start needs no backfill", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db,
			[2]float64{float64(start), 200},
			[2]float64{float64(now - 10), 300},
		)

		result, err := svc.GetHistory(ctx, "1w", true)
		require.NoError(t, err)

		require.Len(t, result.Series, 2)
		assert.False(t, result.Series[0].Estimated)
		assert.False(t, result.InsufficientHistory)
	})

	t.Run("empty window with history before it yields one point", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db, [2]float64{float64(start - week), 75.5})

		result, err := svc.GetHistory(ctx, "1w", true)
		require.NoError(t, err)

		assert.Equal(t, []model.HistoryPoint{{Timestamp: start, Value: 75.5, Estimated: true}}, result.Series)
		assert.Equal(t, model.HistoryStats{StartValue: 75.5, EndValue: 75.5, MinValue: 75.5, MaxValue: 75.5}, result.Stats)
	})
}

// TestHistoryService_Prune tests the retention policy.
func TestHistoryService_Prune(t *testing.T) {
	ctx := context.Background()
	now := historyNow.Unix()
	day := int64(24 * 60 * 60)

	t.Run("removes snapshots older than the retention window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db,
			[2]float64{float64(now - 40*day), 1},
			[2]float64{float64(now - 20*day), 2},
			[2]float64{float64(now - day), 3},
		)

		removed, err := svc.Prune(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		count, err := repository.NewHistoryRepository(db).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("non-positive retention keeps everything", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db, [2]float64{float64(now - 400*day), 1})

		removed, err := svc.Prune(ctx, 0)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}

// TestHistoryService_Metadata tests the history store summary.
func TestHistoryService_Metadata(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		metadata, err := svc.Metadata(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.HistoryMetadata{}, metadata)
	})

	t.Run("reports first, last and count", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)

		testutil.CreateSnapshots(t, db,
			[2]float64{3000, 30},
			[2]float64{1000, 10},
			[2]float64{2000, 20},
		)

		metadata, err := svc.Metadata(ctx)
		require.NoError(t, err)
		require.NotNil(t, metadata.FirstSnapshot)
		require.NotNil(t, metadata.LastSnapshot)
		assert.Equal(t, int64(1000), *metadata.FirstSnapshot)
		assert.Equal(t, int64(3000), *metadata.LastSnapshot)
		assert.Equal(t, 3, metadata.TotalSnapshots)
	})

	t.Run("follows the retention policy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHistoryService(t, db, historyNow)
		now := historyNow.Unix()

		testutil.CreateSnapshots(t, db,
			[2]float64{float64(now - 40*24*60*60), 1},
			[2]float64{float64(now - 60), 2},
		)
		_, err := svc.Prune(ctx, 30)
		require.NoError(t, err)

		metadata, err := svc.Metadata(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, metadata.TotalSnapshots)
		assert.Equal(t, now-60, *metadata.FirstSnapshot)
	})
}
