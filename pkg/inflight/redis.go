package inflight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"photocritic/pkg/logger"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares leases between instances. The TTL caps how long a lease
// survives a crashed holder.
type RedisGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, prefix string, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisGuard{client: client, prefix: prefix, ttl: ttl}
}

func (g *RedisGuard) key(k string) string {
	return g.prefix + k
}

func (g *RedisGuard) TryAcquire(ctx context.Context, key string) (Release, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.key(key), token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("inflight: acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, g.client, []string{g.key(key)}, token).Err(); err != nil {
				logger.Error(logger.CategoryAnalysis, "guard_release_failed", "Failed to release redis lease", err, map[string]interface{}{"key": key})
			}
		})
	}, nil
}

func (g *RedisGuard) IsProcessing(ctx context.Context, key string) bool {
	n, err := g.client.Exists(ctx, g.key(key)).Result()
	return err == nil && n > 0
}
