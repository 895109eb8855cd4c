package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/testnet-portfolio-panel/internal/binance"
	"github.com/ndewijer/testnet-portfolio-panel/internal/config"
	"github.com/ndewijer/testnet-portfolio-panel/internal/database"
	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
	"github.com/ndewijer/testnet-portfolio-panel/internal/testutil"
)

// seedStore points the -db flag at a fresh database holding the given snapshots.
func seedStore(t *testing.T, points ...[2]float64) {
	t.Helper()

	path := testutil.TestDBPath(t)
	db, err := database.Open(path)
	require.NoError(t, err)
	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err)
	testutil.CreateSnapshots(t, db, points...)
	require.NoError(t, db.Close())

	previous := *dbPath
	*dbPath = path
	t.Cleanup(func() { *dbPath = previous })
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()

	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func TestHistoryCmd(t *testing.T) {
	now := time.Now().Unix()
	day := float64(24 * 60 * 60)

	t.Run("prints the series as json", func(t *testing.T) {
		seedStore(t,
			[2]float64{float64(now) - 10*day, 100},
			[2]float64{float64(now) - 2*day, 120},
			[2]float64{float64(now) - day, 150},
		)

		var out bytes.Buffer
		status := run(t, &historyCmd{out: &out}, "-range", "1w", "-backfill")
		require.Equal(t, subcommands.ExitSuccess, status)

		var got historyOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "1w", got.Range)
		require.Len(t, got.Data, 3)
		assert.Equal(t, 100.0, got.Data[0].Value)
		assert.Equal(t, 50.0, got.Stats.ChangePercent)
		assert.False(t, got.InsufficientHistory)
	})

	t.Run("invalid range is a usage error", func(t *testing.T) {
		seedStore(t)

		var out bytes.Buffer
		status := run(t, &historyCmd{out: &out}, "-range", "10y")
		assert.Equal(t, subcommands.ExitUsageError, status)
		assert.Zero(t, out.Len())
	})

	t.Run("unreadable store is a failure", func(t *testing.T) {
		seedStore(t, [2]float64{float64(now) - day, 1})

		db, err := database.Open(*dbPath)
		require.NoError(t, err)
		_, err = db.Exec(`DROP TABLE portfolio_history`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		var out bytes.Buffer
		status := run(t, &historyCmd{out: &out}, "-range", "1w")
		assert.Equal(t, subcommands.ExitFailure, status)
		assert.Zero(t, out.Len())
	})
}

func mockSource(exchange *testutil.MockExchange) func(config.ExchangeConfig) service.AccountSource {
	return func(config.ExchangeConfig) service.AccountSource { return exchange }
}

func TestSnapshotCmd(t *testing.T) {
	t.Run("records a snapshot from the exchange", func(t *testing.T) {
		seedStore(t)
		exchange := testutil.NewMockExchange()

		var out, errOut bytes.Buffer
		status := run(t, &snapshotCmd{out: &out, errOut: &errOut, newSource: mockSource(exchange)})
		require.Equal(t, subcommands.ExitSuccess, status, errOut.String())

		assert.Contains(t, out.String(), "51000.00 USDT  (2 assets)")
		assert.Contains(t, out.String(), "BTC")
		assert.Equal(t, 2, exchange.QueryCount)

		db, err := database.Open(*dbPath)
		require.NoError(t, err)
		defer db.Close()
		latest, err := repository.NewHistoryRepository(db).Latest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 51000.0, latest.Value)
		assert.Len(t, latest.Assets, 2)
	})

	t.Run("exchange rejection is reported", func(t *testing.T) {
		seedStore(t)
		exchange := testutil.NewMockExchange().WithBalancesError(&binance.APIError{
			StatusCode: http.StatusUnauthorized,
			Code:       -2015,
			Message:    "Invalid API-key, IP, or permissions for action.",
		})

		var out, errOut bytes.Buffer
		status := run(t, &snapshotCmd{out: &out, errOut: &errOut, newSource: mockSource(exchange)})
		assert.Equal(t, subcommands.ExitFailure, status)
		assert.Zero(t, out.Len())
		assert.Equal(t,
			"exchange rejected the request (HTTP 401, code -2015): Invalid API-key, IP, or permissions for action.\n",
			errOut.String())
	})

	t.Run("snapshot inside the minimum interval fails", func(t *testing.T) {
		seedStore(t, [2]float64{float64(time.Now().Unix()), 1})
		exchange := testutil.NewMockExchange()

		var out, errOut bytes.Buffer
		status := run(t, &snapshotCmd{out: &out, errOut: &errOut, newSource: mockSource(exchange)})
		assert.Equal(t, subcommands.ExitFailure, status)
		assert.Contains(t, errOut.String(), "snapshot too recent")
	})
}

func TestPruneCmd(t *testing.T) {
	now := time.Now().Unix()
	day := float64(24 * 60 * 60)

	t.Run("removes old snapshots", func(t *testing.T) {
		seedStore(t,
			[2]float64{float64(now) - 100*day, 1},
			[2]float64{float64(now) - 5*day, 2},
		)

		var out bytes.Buffer
		status := run(t, &pruneCmd{out: &out}, "-days", "30")
		require.Equal(t, subcommands.ExitSuccess, status)
		assert.Equal(t, "pruned 1 snapshots older than 30 days\n", out.String())
	})

	t.Run("zero days disables pruning", func(t *testing.T) {
		seedStore(t, [2]float64{float64(now) - 100*day, 1})

		var out bytes.Buffer
		status := run(t, &pruneCmd{out: &out}, "-days", "0")
		require.Equal(t, subcommands.ExitSuccess, status)
		assert.Contains(t, out.String(), "nothing pruned")
	})
}
