// Command historyctl inspects and maintains the portfolio history database
// without going through the HTTP server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/ndewijer/testnet-portfolio-panel/internal/config"
	"github.com/ndewijer/testnet-portfolio-panel/internal/database"
	"github.com/ndewijer/testnet-portfolio-panel/internal/logger"
)

var dbPath = flag.String("db", "", "path to the history database (defaults to DB_PATH)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&historyCmd{out: os.Stdout}, "")
	commander.Register(&pruneCmd{out: os.Stdout}, "")
	commander.Register(&snapshotCmd{out: os.Stdout, errOut: os.Stderr}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// openStore loads the configuration, opens the database and brings its schema
// up to date. The -db flag overrides DB_PATH.
func openStore(ctx context.Context) (*sql.DB, *config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: true})

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, log, err
	}
	if _, err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, log, fmt.Errorf("failed to migrate %s: %w", cfg.Database.Path, err)
	}
	return db, cfg, log, nil
}
