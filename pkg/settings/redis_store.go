package settings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore reads tenant settings from a Redis hash per tenant.
// Keys follow the pattern "tenant:settings:<tenant-id>".
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the namespace prepended to every settings key.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed settings store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "tenant:settings:",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get loads the tenant's settings hash. An absent hash yields nil Values
// with no error; transport failures are returned for the caller to swallow.
func (s *RedisStore) Get(ctx context.Context, tenantID uuid.UUID) (Values, error) {
	raw, err := s.client.HGetAll(ctx, s.prefix+tenantID.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("settings: redis get: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return Values(raw), nil
}
