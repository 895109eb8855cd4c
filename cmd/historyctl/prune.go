package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
)

type pruneCmd struct {
	days int
	out  io.Writer
}

func (*pruneCmd) Name() string     { return "prune" }
func (*pruneCmd) Synopsis() string { return "delete snapshots older than the retention window" }
func (*pruneCmd) Usage() string {
	return `historyctl prune [-days <n>]

  Applies the retention policy once. Defaults to HISTORY_RETENTION_DAYS.
`
}

func (c *pruneCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", -1, "Keep this many days of history (defaults to HISTORY_RETENTION_DAYS).")
}

func (c *pruneCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, cfg, _, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	days := c.days
	if days < 0 {
		days = cfg.History.RetentionDays
	}
	if days == 0 {
		fmt.Fprintln(c.out, "retention disabled, nothing pruned")
		return subcommands.ExitSuccess
	}

	removed, err := service.NewHistoryService(repository.NewHistoryRepository(db)).Prune(ctx, days)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.out, "pruned %d snapshots older than %d days\n", removed, days)
	return subcommands.ExitSuccess
}
