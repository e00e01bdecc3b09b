package sqlite

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/aussiebroadwan/qaboard/internal/qa/store/drivers/sqlite/migrations"
)

// ApplyMigrations brings the schema up to the latest embedded version. It
// is safe to call on an already migrated database.
func (s *Store) ApplyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return wrapErr("migrate driver", err)
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return wrapErr("migrate source", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return wrapErr("migrate init", err)
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return wrapErr("migrate up", err)
	}
	return nil
}
