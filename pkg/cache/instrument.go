package cache

import (
	"context"
	"time"

	"github.com/matzehuels/coursegraph/pkg/observability"
)

type instrumented struct {
	Cache
	keyType string
}

// Instrument reports every Get and Set on c to [observability.Cache] under
// keyType.
func Instrument(c Cache, keyType string) Cache {
	return &instrumented{Cache: c, keyType: keyType}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	switch {
	case err != nil:
	case ok:
		observability.Cache().OnCacheHit(ctx, c.keyType)
	default:
		observability.Cache().OnCacheMiss(ctx, c.keyType)
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	}
	return err
}
