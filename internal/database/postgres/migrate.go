package postgres

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/qolzam/telar/apps/feeds/internal/pkg/log"
)

// RunMigrations applies every pending up migration found in dirName of fsys.
func RunMigrations(dbx *sqlx.DB, fsys fs.FS, dirName string) error {
	source, err := iofs.New(fsys, dirName)
	if err != nil {
		return fmt.Errorf("error creating migrations source: %w", err)
	}

	driver, err := migratepg.WithInstance(dbx.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("error creating postgres instance for migration: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("error creating migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error migrating: %w", err)
	}

	version, dirty, _ := migrator.Version()
	log.Info("database migrated to version %d (dirty=%t)", version, dirty)
	return nil
}
