package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/at-ishikawa/flashcards/internal/config"
	"github.com/at-ishikawa/flashcards/schemas"
)

// Migrate applies every pending migration for driver. It opens its own
// connection because the migrator closes the database when it is done.
func Migrate(driver string, cfg config.DatabaseConfig) error {
	db, err := Open(driver, cfg)
	if err != nil {
		return err
	}

	var instance migratedb.Driver
	switch driver {
	case config.DriverMySQL:
		instance, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case config.DriverSQLite:
		instance, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create %s migration driver: %w", driver, err)
	}

	source, err := iofs.New(schemas.Migrations, "migrations/"+driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			slog.Warn("failed to close migrator", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("database schema is up to date", "driver", driver)
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	slog.Info("applied migrations", "driver", driver, "version", version)
	return nil
}
