package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inkpost/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside reads key into dst. On a miss it calls fetch, which must fill dst, and
// stores the result for ttl. Cache failures fall through to fetch; only fetch
// errors are returned, and nothing is stored when fetch fails.
func Aside(ctx context.Context, key string, dst any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}
	entity := entityOf(key)

	ctx, span := observability.TraceRedisOperation(ctx, "get")
	raw, err := client.Get(ctx, key).Bytes()
	span.End()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dst); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(entity, "hit").Inc()
			return nil
		}
		// Unreadable entry: drop it and refetch.
		client.Del(ctx, key)
		observability.CacheLookups.WithLabelValues(entity, "error").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues(entity, "miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues(entity, "error").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if encoded, err := json.Marshal(dst); err == nil {
		client.Set(ctx, key, encoded, ttl)
	}
	return nil
}
