// Package provider adapts the external data APIs to the lookup interfaces
// used by the signal checks. Adapters never return errors: failures are
// logged and reported as "no data".
package provider

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/credibility-cli/internal/resilience"
	"github.com/sells-group/credibility-cli/internal/store"
)

// Option configures an adapter.
type Option func(*base)

// WithGuard routes API calls through g.
func WithGuard(g *resilience.Guard) Option {
	return func(b *base) {
		b.guard = g
	}
}

// WithCache stores successful lookups in c for ttl. A nil cache or
// non-positive ttl disables caching.
func WithCache(c store.Cache, ttl time.Duration) Option {
	return func(b *base) {
		b.cache = c
		b.ttl = ttl
	}
}

type base struct {
	name  string
	guard *resilience.Guard
	cache store.Cache
	ttl   time.Duration
}

func newBase(name string, opts []Option) base {
	b := base{name: name}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b *base) cacheEnabled() bool {
	return b.cache != nil && b.ttl > 0
}

// cached decodes the cached value for key into dst. Cache errors count as
// misses.
func (b *base) cached(ctx context.Context, key string, dst any) bool {
	if !b.cacheEnabled() {
		return false
	}
	data, err := b.cache.Get(ctx, key)
	if err != nil {
		zap.L().Warn("provider: cache read failed", zap.String("provider", b.name), zap.String("key", key), zap.Error(err))
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		zap.L().Warn("provider: cache entry unreadable", zap.String("provider", b.name), zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (b *base) store(ctx context.Context, key string, v any) {
	if !b.cacheEnabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := b.cache.Set(ctx, key, data, b.ttl); err != nil {
		zap.L().Warn("provider: cache write failed", zap.String("provider", b.name), zap.String("key", key), zap.Error(err))
	}
}
