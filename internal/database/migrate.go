package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// source for MIGRATIONS_PATH
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

// Go Pattern: embed compiles the SQL files into the binary and iofs adapts
// the embed.FS into a golang-migrate source.
//
//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations brings the schema up to date. An empty dir uses the
// embedded migrations; otherwise the SQL files are read from dir.
func (db *DB) RunMigrations(dir string, log zerolog.Logger) error {
	// The postgres migrate driver works on any *sql.DB, whichever
	// database/sql driver opened it.
	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	var m *migrate.Migrate
	if dir == "" {
		var src source.Driver
		src, err = iofs.New(embeddedMigrations, "migrations")
		if err != nil {
			return fmt.Errorf("failed to open embedded migrations: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "postgres", driver)
	} else {
		m, err = migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Msg("📦 Database: no new migrations to apply")
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	default:
		version, dirty, _ := m.Version()
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("📦 Database migrated")
	}
	return nil
}
