package main

import (
	"context"
	"flag"
	"os"

	zlog "github.com/rs/zerolog/log"

	"github.com/ruralpay/ledger/internal/config"
	"github.com/ruralpay/ledger/internal/database"
	"github.com/ruralpay/ledger/internal/services"
	"github.com/ruralpay/ledger/internal/shell"
)

func main() {
	envFile := flag.String("env", ".env", "optional env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}
	// Logs go to stderr so they do not interleave with the menu.
	zlog.Logger = cfg.Log.Logger(os.Stderr)

	ctx := context.Background()

	store, closeStore, err := database.OpenStore(ctx, cfg, zlog.Logger)
	if err != nil {
		zlog.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open store")
	}
	defer closeStore()

	activity := services.NewActivityLogger(zlog.Logger)
	ledger := services.OpenLedger(ctx, store, activity, zlog.Logger)

	if err := shell.New(ledger, store, os.Stdin, os.Stdout).Run(ctx); err != nil {
		closeStore()
		os.Exit(1)
	}
}
