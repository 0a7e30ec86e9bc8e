package cache

import (
	"context"
	"time"
)

// NullCache backs `--cache none`: every layout is recomputed and nothing is
// kept. Like the real backends it reports a cancelled context as an error.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, ctx.Err()
}

func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return ctx.Err()
}

func (NullCache) Delete(ctx context.Context, key string) error {
	return ctx.Err()
}

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
