package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ruralpay/ledger/internal/config"
	"github.com/ruralpay/ledger/internal/storage"
)

// OpenStore builds the ledger store selected by storage.driver. The returned
// close function releases any connection the store holds.
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.Store, func(), error) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := InitDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, noop, err
		}
		store := storage.NewPostgresStore(db, cfg.Storage.PreserveRates)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("migrate: %w", err)
		}
		return store, func() { db.Close() }, nil

	case config.DriverRedis:
		client := InitRedis(ctx, cfg.Redis, logger)
		if client == nil {
			return nil, noop, fmt.Errorf("redis store at %s unavailable", cfg.Redis.Addr())
		}
		return storage.NewRedisStore(client, cfg.Storage.RedisPrefix, cfg.Storage.PreserveRates), func() { client.Close() }, nil
	}

	return storage.NewFileStore(cfg.Storage.CustomersFile, cfg.Storage.AccountsFile, cfg.Storage.PreserveRates), noop, nil
}
