package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"payment_installments/internal/domain/entities"
	"payment_installments/internal/usecase/interfaces"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "payment:"
	generationPrefix = "gen:"
	scanBatch        = 100
)

type redisEntry struct {
	Payment    entities.Payment `json:"payment"`
	CachedAt   time.Time        `json:"cached_at"`
	TTLSeconds float64          `json:"ttl_seconds"`
}

// PaymentRedisCache stores payment snapshots as JSON in Redis so several
// processes share one cache. Keys expire server side after the TTL; Get
// re-checks freshness against cached_at as well.
//
// Generations live under "gen:<prefix>{id}" without expiry, outside the
// snapshot namespace that Clear scans. The id is hash-tagged so a snapshot
// and its generation share a cluster slot.
type PaymentRedisCache struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ interfaces.IPaymentCache = (*PaymentRedisCache)(nil)

func NewPaymentRedisCache(client redis.UniversalClient, prefix string) *PaymentRedisCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &PaymentRedisCache{client: client, prefix: prefix, now: time.Now}
}

func (c *PaymentRedisCache) key(id string) string { return c.prefix + "{" + id + "}" }

func (c *PaymentRedisCache) genKey(id string) string {
	return generationPrefix + c.prefix + "{" + id + "}"
}

func (c *PaymentRedisCache) Get(ctx context.Context, id string) (entities.Payment, bool, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.Payment{}, false, nil
	}
	if err != nil {
		return entities.Payment{}, false, err
	}

	var entry redisEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Printf("[payment][cache] dropping undecodable entry id=%s err=%v", id, err)
		return entities.Payment{}, false, c.client.Del(ctx, c.key(id)).Err()
	}
	ttl := time.Duration(entry.TTLSeconds * float64(time.Second))
	if c.now().Sub(entry.CachedAt) > ttl {
		return entities.Payment{}, false, c.client.Del(ctx, c.key(id)).Err()
	}
	if entry.Payment.Installments == nil {
		entry.Payment.Installments = []entities.Installment{}
	}
	return entry.Payment, true, nil
}

func (c *PaymentRedisCache) encode(p entities.Payment, ttl time.Duration) ([]byte, error) {
	return json.Marshal(redisEntry{Payment: p, CachedAt: c.now().UTC(), TTLSeconds: ttl.Seconds()})
}

func (c *PaymentRedisCache) Put(ctx context.Context, id string, p entities.Payment, ttl time.Duration) error {
	data, err := c.encode(p, ttl)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(id), data, ttl).Err()
}

func (c *PaymentRedisCache) Generation(ctx context.Context, id string) (uint64, error) {
	return readGeneration(ctx, c.client, c.genKey(id))
}

// PutIfUnchanged watches the generation key so an Invalidate landing
// between the check and the SET aborts the transaction.
func (c *PaymentRedisCache) PutIfUnchanged(ctx context.Context, id string, gen uint64, p entities.Payment, ttl time.Duration) (bool, error) {
	data, err := c.encode(p, ttl)
	if err != nil {
		return false, err
	}

	genKey := c.genKey(id)
	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(id), data, ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored, nil
}

// Invalidate deletes the snapshot and bumps the generation in one
// MULTI/EXEC.
func (c *PaymentRedisCache) Invalidate(ctx context.Context, id string) (uint64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(id))
		incr = pipe.Incr(ctx, c.genKey(id))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

// Clear drops every snapshot under the prefix. Generation keys are not in
// the scanned namespace and survive.
func (c *PaymentRedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
	keys := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatch {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, g stringGetter, key string) (uint64, error) {
	gen, err := g.Get(ctx, key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}
