package guard

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryGuard keeps markers in a process-local cache. Markers never expire;
// they live exactly as long as the ingestion that holds them.
type MemoryGuard struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (g *MemoryGuard) TryAcquire(ctx context.Context, userId string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	token := uuid.NewString()
	// Add fails if the key is present, which makes it a check-and-set
	if err := g.cache.Add(userId, token, cache.NoExpiration); err != nil {
		return "", false, nil
	}
	return token, true, nil
}

func (g *MemoryGuard) Release(ctx context.Context, userId, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if owner, ok := g.cache.Get(userId); ok && owner == token {
		g.cache.Delete(userId)
	}
	return nil
}
