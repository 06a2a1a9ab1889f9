package cache

import (
	"context"
	"sync"
	"time"

	"payment_installments/internal/domain/entities"
	"payment_installments/internal/usecase/interfaces"
)

type cachedPayment struct {
	payment  entities.Payment
	cachedAt time.Time
	ttl      time.Duration
}

func (e *cachedPayment) fresh(now time.Time) bool {
	return now.Sub(e.cachedAt) <= e.ttl
}

// PaymentMemoryCache keeps payment snapshots in process memory.
//
// Reads share the lock; writes and stale eviction take it exclusively.
// Snapshots are cloned on the way in and on the way out. The generation
// check and the store in PutIfUnchanged happen under one lock hold.
type PaymentMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cachedPayment
	gens    map[string]uint64
	now     func() time.Time
}

var _ interfaces.IPaymentCache = (*PaymentMemoryCache)(nil)

func NewPaymentMemoryCache() *PaymentMemoryCache {
	return &PaymentMemoryCache{
		entries: make(map[string]*cachedPayment),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (c *PaymentMemoryCache) WithClock(now func() time.Time) *PaymentMemoryCache {
	c.now = now
	return c
}

func (c *PaymentMemoryCache) Get(_ context.Context, id string) (entities.Payment, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return entities.Payment{}, false, nil
	}
	if entry.fresh(c.now()) {
		return entry.payment.Clone(), true, nil
	}

	c.mu.Lock()
	// A concurrent Put may have replaced the entry since the read.
	if current, ok := c.entries[id]; ok && current == entry {
		delete(c.entries, id)
	}
	c.mu.Unlock()
	return entities.Payment{}, false, nil
}

func (c *PaymentMemoryCache) Put(_ context.Context, id string, p entities.Payment, ttl time.Duration) error {
	entry := &cachedPayment{payment: p.Clone(), cachedAt: c.now(), ttl: ttl}

	c.mu.Lock()
	c.entries[id] = entry
	c.mu.Unlock()
	return nil
}

func (c *PaymentMemoryCache) Generation(_ context.Context, id string) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[id], nil
}

func (c *PaymentMemoryCache) PutIfUnchanged(_ context.Context, id string, gen uint64, p entities.Payment, ttl time.Duration) (bool, error) {
	entry := &cachedPayment{payment: p.Clone(), cachedAt: c.now(), ttl: ttl}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[id] != gen {
		return false, nil
	}
	c.entries[id] = entry
	return true, nil
}

func (c *PaymentMemoryCache) Invalidate(_ context.Context, id string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.gens[id]++
	return c.gens[id], nil
}

// Clear drops every snapshot but keeps generations.
func (c *PaymentMemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*cachedPayment)
	c.mu.Unlock()
	return nil
}

// Len reports the number of entries, fresh or not.
func (c *PaymentMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
