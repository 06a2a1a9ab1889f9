package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageSQL      = "sql"
	StorageDynamoDB = "dynamodb"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	StorageBackend string

	DatabaseDriver  string
	DatabaseDSN     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DBDebug         bool
	Migrations      bool

	CacheBackend string
	RedisURL     string
	CacheTTL     time.Duration
}

// Load reads configuration from the environment with defaults.
// Precedence: explicit env var > .env file (autoloaded by main) > default.
func Load() Config {
	return Config{
		StorageBackend: strings.ToLower(getenvDefault("STORAGE_BACKEND", StorageSQL)),

		DatabaseDriver:  strings.ToLower(getenvDefault("DATABASE_DRIVER", DriverSQLite)),
		DatabaseDSN:     getenvDefault("DATABASE_DSN", "file:payments.db?_foreign_keys=on"),
		MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: time.Duration(parseInt("DB_CONN_MAX_LIFETIME_MINUTES", 60)) * time.Minute,
		DBDebug:         parseBool("DB_DEBUG", false),
		Migrations:      parseBool("MIGRATIONS", false),

		CacheBackend: strings.ToLower(getenvDefault("CACHE_BACKEND", CacheMemory)),
		RedisURL:     getenvDefault("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:     time.Duration(parseInt("PAYMENT_CACHE_TTL_SECONDS", 300)) * time.Second,
	}
}

// Validate rejects backend names the wiring does not know.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case StorageSQL, StorageDynamoDB:
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.StorageBackend == StorageSQL {
		switch c.DatabaseDriver {
		case DriverPostgres, DriverSQLite:
		default:
			return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
		}
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is empty")
		}
	}
	switch c.CacheBackend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("PAYMENT_CACHE_TTL_SECONDS must be positive")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Values like "1", "true" and "yes" are true; anything unparsable falls back to def.
func parseBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	if v == "yes" {
		return true
	}
	if v == "no" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[payment][config] invalid boolean for %s: %s", key, v)
		return def
	}
	return b
}

func parseInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[payment][config] invalid integer for %s: %s", key, v)
		return def
	}
	return n
}
