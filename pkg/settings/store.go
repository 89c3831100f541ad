package settings

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// Values holds a tenant's settings. A nil map means settings were
// unavailable; readers must treat missing keys as absent, not as errors.
type Values map[string]string

// Get returns the value for key, or def when absent.
func (v Values) Get(key, def string) string {
	if val, ok := v[key]; ok {
		return val
	}
	return def
}

// Store loads settings for a tenant.
type Store interface {
	// Get returns the tenant's settings. Returning an error is allowed;
	// callers treat it as "no settings available".
	Get(ctx context.Context, tenantID uuid.UUID) (Values, error)
}

// MemStore is an in-memory Store for tests and single-process setups.
type MemStore struct {
	mu     sync.RWMutex
	values map[uuid.UUID]Values
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[uuid.UUID]Values)}
}

// Set replaces the settings for a tenant.
func (s *MemStore) Set(tenantID uuid.UUID, values Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[tenantID] = maps.Clone(values)
}

// Get returns a copy of the tenant's settings, or nil when none are stored.
func (s *MemStore) Get(ctx context.Context, tenantID uuid.UUID) (Values, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values[tenantID]), nil
}
