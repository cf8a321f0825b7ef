package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the marker only if it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares markers between instances with SET NX. The TTL only
// reclaims markers left behind by a crashed instance.
type RedisGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisGuard{
		client: client,
		prefix: "biomeai:upload:",
		ttl:    ttl,
	}
}

func (g *RedisGuard) TryAcquire(ctx context.Context, userId string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.prefix+userId, token, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire upload guard: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (g *RedisGuard) Release(ctx context.Context, userId, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.prefix + userId}, token).Err(); err != nil {
		return fmt.Errorf("release upload guard: %w", err)
	}
	return nil
}
