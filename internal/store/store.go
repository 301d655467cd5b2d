// Package store persists provider lookups so repeated analyses of the same
// company do not hit rate-limited APIs again.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credibility-cli/internal/config"
)

// Cache is a TTL key/value store for raw provider responses.
type Cache interface {
	// Get returns the cached value for key, or nil if it is missing or
	// expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteExpired(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates and migrates the cache selected by cfg. It returns nil when
// caching is disabled.
func Open(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		c, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		c, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unsupported cache driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := c.Migrate(ctx); err != nil {
		c.Close() //nolint:errcheck
		return nil, err
	}
	return c, nil
}

// TTL converts configured hours to a duration.
func TTL(cfg config.CacheConfig) time.Duration {
	return time.Duration(cfg.TTLHours) * time.Hour
}
