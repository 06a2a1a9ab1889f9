package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log"

	"payment_installments/internal/infrastructure/config"

	migrate "github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var requiredTables = []string{"payments", "installments"}

// Migrate brings the schema up to date. Postgres with MIGRATIONS enabled runs
// the embedded SQL migrations; every other setup falls back to AutoMigrate
// over models.
func Migrate(ctx context.Context, db *gorm.DB, cfg config.Config, models ...any) error {
	if cfg.DatabaseDriver == config.DriverPostgres && cfg.Migrations {
		if err := runSQLMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		log.Printf("[payment][database] running automigrate models=%d", len(models))
		for _, m := range models {
			if err := db.WithContext(ctx).AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}

	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	log.Printf("[payment][database] schema ready")
	return nil
}

func runSQLMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// A dedicated connection keeps m.Close from closing the shared pool.
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return err
	}

	driver, err := migratepostgres.WithConnection(ctx, conn, &migratepostgres.Config{})
	if err != nil {
		_ = conn.Close()
		return err
	}
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		_ = driver.Close()
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = src.Close()
		_ = driver.Close()
		return err
	}
	defer m.Close()

	log.Printf("[payment][database] running sql migrations")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	log.Printf("[payment][database] sql migrations applied version=%d dirty=%t", version, dirty)
	return nil
}
