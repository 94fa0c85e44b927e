package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"omni-backend/internal/pkg/logger"
	"omni-backend/pkg/embedding"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "omni:embedding:"

// CachedProvider memoizes embeddings per (model, text). The in-process cache is always on;
// Redis is consulted only when a client is given. Cache failures degrade to a provider call.
type CachedProvider struct {
	inner  embedding.Provider
	model  string
	ttl    time.Duration
	local  *gocache.Cache
	rdb    *redis.Client
	logger logger.ILogger
}

var _ embedding.Provider = &CachedProvider{}

func NewCachedProvider(inner embedding.Provider, model string, ttl time.Duration, rdb *redis.Client, log logger.ILogger) *CachedProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CachedProvider{
		inner:  inner,
		model:  model,
		ttl:    ttl,
		local:  gocache.New(ttl, 10*time.Minute),
		rdb:    rdb,
		logger: log,
	}
}

func (p *CachedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		key := p.key(text)
		if vec, ok := p.lookup(ctx, key); ok {
			vectors[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := p.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	for j, vec := range fresh {
		vectors[missIdx[j]] = vec
		p.store(ctx, p.key(missTexts[j]), vec)
	}

	return vectors, nil
}

func (p *CachedProvider) key(text string) string {
	sum := sha256.Sum256([]byte(p.model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (p *CachedProvider) lookup(ctx context.Context, key string) ([]float32, bool) {
	if x, found := p.local.Get(key); found {
		return x.([]float32), true
	}
	if p.rdb == nil {
		return nil, false
	}

	raw, err := p.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			p.logger.Warn("EMBEDDING", "Redis lookup failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false
	}
	p.local.Set(key, vec, gocache.DefaultExpiration)
	return vec, true
}

func (p *CachedProvider) store(ctx context.Context, key string, vec []float32) {
	p.local.Set(key, vec, gocache.DefaultExpiration)
	if p.rdb == nil {
		return
	}

	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := p.rdb.Set(ctx, redisKeyPrefix+key, raw, p.ttl).Err(); err != nil {
		p.logger.Warn("EMBEDDING", "Redis store failed", map[string]interface{}{"error": err.Error()})
	}
}
