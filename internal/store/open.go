package store

import (
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/flashcards/internal/config"
	"github.com/at-ishikawa/flashcards/internal/database"
)

// Open returns the store selected by cfg.Storage.Driver, with card writes retried.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	var (
		inner Store
		err   error
	)
	switch cfg.Storage.Driver {
	case config.DriverYAML:
		inner, err = NewYAMLStore(cfg.Storage.YAMLDirectory, logger)
	case config.DriverBolt:
		inner, err = OpenBoltStore(cfg.Storage.BoltPath, logger)
	case config.DriverMySQL, config.DriverSQLite:
		db, dbErr := database.Open(cfg.Storage.Driver, cfg.Database)
		if dbErr != nil {
			return nil, dbErr
		}
		inner = NewDBStore(db)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}
	return NewRetryingStore(inner, cfg.Storage.RetryAttempts, DefaultRetryDelay, logger), nil
}
