package database

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"payment_installments/internal/infrastructure/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	kvPasswordPattern  = regexp.MustCompile(`(password=)(\S+)`)
	urlPasswordPattern = regexp.MustCompile(`(://[^:/@]+:)([^@/\s]+)(@)`)
)

// OpenSQL opens the gorm connection pool described by cfg and checks that the
// database answers.
func OpenSQL(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	logLevel := logger.Silent
	if cfg.DBDebug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DatabaseDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	log.Printf("[payment][database] connection established driver=%s dsn=%s", cfg.DatabaseDriver, MaskDSN(cfg.DatabaseDSN))
	return db, nil
}

// CloseSQL releases the pool behind db.
func CloseSQL(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MaskDSN hides the password of a key=value or URL style DSN.
func MaskDSN(dsn string) string {
	if strings.Contains(dsn, "password=") {
		dsn = kvPasswordPattern.ReplaceAllString(dsn, "${1}***")
	}
	return urlPasswordPattern.ReplaceAllString(dsn, "${1}***${3}")
}
