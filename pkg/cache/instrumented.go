package cache

import (
	"context"
	"time"

	"github.com/matzehuels/districtviz/pkg/observability"
)

// Instrumented reports every Get and Set on c to the registered cache hooks,
// labelled with keyType ("dataset", "artifact", "address").
func Instrumented(c Cache, keyType string) Cache {
	return &instrumented{Cache: c, keyType: keyType}
}

type instrumented struct {
	Cache
	keyType string
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	}
	return err
}
