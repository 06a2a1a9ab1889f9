package cli

import (
	"context"
	"errors"
	"log"

	paymentcache "payment_installments/internal/adapter/cache"
	"payment_installments/internal/adapter/persistence/repository"
	infracache "payment_installments/internal/infrastructure/cache"
	"payment_installments/internal/infrastructure/config"
	"payment_installments/internal/infrastructure/database"
	"payment_installments/internal/usecase"
	"payment_installments/internal/usecase/interfaces"
)

// BuildApp wires store, cache and usecase from the environment.
// SQLite databases are migrated on open so a fresh file is usable at once.
func BuildApp(ctx context.Context) (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	app := &App{Close: closeAll}

	var repo interfaces.IPaymentRepository
	switch cfg.StorageBackend {
	case config.StorageDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx)
		if err != nil {
			return nil, err
		}
		repo = repository.NewPaymentDynamoRepository(ddb)
	default:
		db, err := database.OpenSQL(cfg)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() error { return database.CloseSQL(db) })
		app.Migrate = func(ctx context.Context) error {
			return database.Migrate(ctx, db, cfg, repository.Models()...)
		}
		if cfg.DatabaseDriver == config.DriverSQLite {
			if err := app.Migrate(ctx); err != nil {
				_ = closeAll()
				return nil, err
			}
		}
		repo = repository.NewPaymentGormRepository(db)
	}

	var cache interfaces.IPaymentCache
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client, err := infracache.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			_ = closeAll()
			return nil, err
		}
		closers = append(closers, client.Close)
		cache = paymentcache.NewPaymentRedisCache(client, "")
	default:
		cache = paymentcache.NewPaymentMemoryCache()
	}

	log.Printf("[payment][cli] backends ready storage=%s cache=%s ttl=%s", cfg.StorageBackend, cfg.CacheBackend, cfg.CacheTTL)
	app.UseCase = usecase.NewPaymentUseCase(repo, cache, cfg.CacheTTL)
	return app, nil
}
