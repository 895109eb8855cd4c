package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
	"github.com/ndewijer/testnet-portfolio-panel/internal/repository"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
)

type historyCmd struct {
	rangeToken string
	backfill   bool
	out        io.Writer
}

func (*historyCmd) Name() string { return "history" }
func (*historyCmd) Synopsis() string {
	return "print the portfolio value series and stats for a range"
}
func (*historyCmd) Usage() string {
	return `historyctl history [-range <1d|1w|1m|6m|1y|ytd|all>] [-backfill]

  Prints the same series and statistics the chart endpoint returns, as JSON.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rangeToken, "range", model.DefaultRange.String(), "Range to query.")
	f.BoolVar(&c.backfill, "backfill", false, "Carry the last known value back to the start of the range.")
}

type historyOutput struct {
	Range               string               `json:"range"`
	Start               int64                `json:"start"`
	End                 int64                `json:"end"`
	Data                []model.HistoryPoint `json:"data"`
	Stats               model.HistoryStats   `json:"stats"`
	InsufficientHistory bool                 `json:"insufficient_history"`
	Message             string               `json:"message,omitempty"`
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, _, _, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	result, err := service.NewHistoryService(repository.NewHistoryRepository(db)).
		GetHistory(ctx, c.rangeToken, c.backfill)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, apperrors.ErrInvalidRangeToken) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}

	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(historyOutput{
		Range:               result.Range.String(),
		Start:               result.Start,
		End:                 result.End,
		Data:                result.Series,
		Stats:               result.Stats,
		InsufficientHistory: result.InsufficientHistory,
		Message:             result.Message,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
