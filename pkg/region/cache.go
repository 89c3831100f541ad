package region

import (
	"context"
	"sync"
)

// Handle is a region-scoped data-store connection.
type Handle interface {
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close releases the connection's resources.
	Close()
}

// Factory builds the connection handle for a region.
// Open may block while dialing; it is only called on a cache miss.
type Factory interface {
	Open(ctx context.Context, region string) (Handle, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, region string) (Handle, error)

func (f FactoryFunc) Open(ctx context.Context, region string) (Handle, error) {
	return f(ctx, region)
}

// Cache hands out one shared connection handle per region.
//
// The first request for a region pays the construction cost; concurrent
// first requests for the same region wait on a single construction rather
// than racing to create duplicates. Failed constructions are not cached,
// so a later request retries.
type Cache struct {
	factory Factory

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

type entry struct {
	once   sync.Once
	handle Handle
	err    error

	// released marks a handle already closed, either by Close or by the
	// Get that finished building it after Close ran. Guarded by Cache.mu,
	// as are handle and err once construction publishes them.
	released bool
}

// NewCache creates a handle cache over the given factory.
// Panics if factory is nil: the cache is wired at startup and a missing
// factory is a programming error.
func NewCache(factory Factory) *Cache {
	if factory == nil {
		panic(ErrFactoryRequired)
	}
	return &Cache{
		factory: factory,
		entries: make(map[string]*entry),
	}
}

// Get returns the shared handle for the region, building it on first use.
func (c *Cache) Get(ctx context.Context, region string) (Handle, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrCacheClosed
	}
	e, ok := c.entries[region]
	if !ok {
		e = &entry{}
		c.entries[region] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		handle, err := c.factory.Open(ctx, region)
		c.mu.Lock()
		e.handle, e.err = handle, err
		c.mu.Unlock()
	})

	c.mu.Lock()
	if e.err != nil {
		// Drop the failed entry so the next request can retry, unless a
		// concurrent retry already replaced it.
		if c.entries[region] == e {
			delete(c.entries, region)
		}
		err := e.err
		c.mu.Unlock()
		return nil, err
	}
	if c.closed {
		// Close ran while this handle was still being built and never saw
		// it; release it here so it cannot leak.
		release := !e.released
		e.released = true
		handle := e.handle
		c.mu.Unlock()
		if release {
			handle.Close()
		}
		return nil, ErrCacheClosed
	}
	handle := e.handle
	c.mu.Unlock()

	return handle, nil
}

// Close closes every cached handle. The cache is unusable afterwards.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	var handles []Handle
	for _, e := range c.entries {
		if e.handle != nil && !e.released {
			e.released = true
			handles = append(handles, e.handle)
		}
	}
	c.entries = nil
	c.mu.Unlock()

	for _, h := range handles {
		h.Close()
	}
}
