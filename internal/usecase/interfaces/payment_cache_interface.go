package interfaces

import (
	"context"
	"time"

	"payment_installments/internal/domain/entities"
)

// IPaymentCache memoizes payment snapshots by id for a bounded time.
//
// Get reports a hit only while the entry is within its TTL. Snapshots
// returned by Get never alias the cached value.
//
// Every id carries an invalidation generation. Invalidate bumps it and
// returns the new value; Clear leaves generations alone. PutIfUnchanged
// stores only while the generation still equals the one the caller read
// before loading p, so a snapshot read before a write cannot land after
// that write's invalidation.

type IPaymentCache interface {
	Get(ctx context.Context, id string) (entities.Payment, bool, error)
	Put(ctx context.Context, id string, p entities.Payment, ttl time.Duration) error
	Generation(ctx context.Context, id string) (uint64, error)
	PutIfUnchanged(ctx context.Context, id string, gen uint64, p entities.Payment, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, id string) (uint64, error)
	Clear(ctx context.Context) error
}
