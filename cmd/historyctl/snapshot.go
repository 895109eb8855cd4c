package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/google/subcommands"

	"github.com/ndewijer/testnet-portfolio-panel/internal/binance"
	"github.com/ndewijer/testnet-portfolio-panel/internal/config"
	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
)

type snapshotCmd struct {
	out    io.Writer
	errOut io.Writer

	// newSource builds the account source; nil uses the Binance client.
	newSource func(cfg config.ExchangeConfig) service.AccountSource
}

func (c *snapshotCmd) source(cfg config.ExchangeConfig) service.AccountSource {
	if c.newSource != nil {
		return c.newSource(cfg)
	}
	return binance.NewClient(cfg)
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "value the exchange account now and record it" }
func (*snapshotCmd) Usage() string {
	return `historyctl snapshot

  Fetches balances and prices from the configured exchange and appends one
  snapshot, honoring SNAPSHOT_MIN_INTERVAL.
`
}

func (*snapshotCmd) SetFlags(*flag.FlagSet) {}

func (c *snapshotCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, cfg, log, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(c.errOut, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	recorder := service.NewValuationService(
		repository.NewHistoryRepository(db),
		nil,
		cfg.History.ReferenceCurrency,
		cfg.History.MinInterval,
		log,
	)
	record, err := service.NewSnapshotService(c.source(cfg.Exchange), recorder).Capture(ctx)
	if err != nil {
		if apiErr, ok := binance.IsAPIError(err); ok {
			fmt.Fprintf(c.errOut, "exchange rejected the request (HTTP %d, code %d): %s\n",
				apiErr.StatusCode, apiErr.Code, apiErr.Message)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(c.errOut, err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.out, "%s  %.2f %s  (%d assets)\n",
		time.Unix(record.Timestamp, 0).UTC().Format(time.RFC3339),
		record.Value,
		cfg.History.ReferenceCurrency,
		record.AssetCount,
	)
	for _, asset := range record.Assets {
		fmt.Fprintf(c.out, "  %-8s %16g  %12.2f\n", asset.Asset, asset.Total, asset.Value)
	}
	return subcommands.ExitSuccess
}
