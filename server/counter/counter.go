// Package counter owns the cumulative Hi-Lo running count and its durable
// copy.
package counter

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Store persists the running count. Load on a store that holds nothing yet
// returns zero.
type Store interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, value int) error
}

// PersistError reports a failed write. Value is the new in-memory count,
// which stays authoritative for the life of the process.
type PersistError struct {
	Value int
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist running count %d: %v", e.Value, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

type Counter struct {
	mu    sync.Mutex
	value int
	store Store
}

// Open loads the persisted count. A missing or unreadable store starts the
// count at zero.
func Open(ctx context.Context, store Store) *Counter {
	c := &Counter{store: store}
	if store == nil {
		return c
	}
	v, err := store.Load(ctx)
	if err != nil {
		log.Printf("running count: load failed, starting from 0: %v", err)
		return c
	}
	c.value = v
	return c
}

// Accumulate adds delta and writes the result through to the store while
// holding the lock, so concurrent frames never build on a stale value.
func (c *Counter) Accumulate(ctx context.Context, delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
	return c.value, c.persist(ctx)
}

func (c *Counter) Reset(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = 0
	return 0, c.persist(ctx)
}

func (c *Counter) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *Counter) persist(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Save(ctx, c.value); err != nil {
		return &PersistError{Value: c.value, Err: err}
	}
	return nil
}
