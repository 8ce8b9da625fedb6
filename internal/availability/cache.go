package availability

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go-commerce-core/internal/model"

	"github.com/redis/go-redis/v9"
)

// RuleCache holds the ordered rule list between loads. Get reports a miss
// with ok == false.
type RuleCache interface {
	Get(ctx context.Context) (rules []model.AvailabilityRule, ok bool, err error)
	Set(ctx context.Context, rules []model.AvailabilityRule) error
	Invalidate(ctx context.Context) error
}

// NoCache always misses, so every classification re-queries the store.
type NoCache struct{}

func (NoCache) Get(context.Context) ([]model.AvailabilityRule, bool, error) { return nil, false, nil }
func (NoCache) Set(context.Context, []model.AvailabilityRule) error        { return nil }
func (NoCache) Invalidate(context.Context) error                           { return nil }

// MemoryCache is a per-process cache with a TTL.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	rules   []model.AvailabilityRule
	expires time.Time
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(context.Context) ([]model.AvailabilityRule, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.rules == nil || !c.now().Before(c.expires) {
		return nil, false, nil
	}
	out := make([]model.AvailabilityRule, len(c.rules))
	copy(out, c.rules)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, rules []model.AvailabilityRule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = make([]model.AvailabilityRule, len(rules))
	copy(c.rules, rules)
	c.expires = c.now().Add(c.ttl)
	return nil
}

func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = nil
	return nil
}

const DefaultRedisKey = "availability:rules"

// RedisCache shares the rule list between processes as a JSON value.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, key string, ttl time.Duration) *RedisCache {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisCache{client: client, key: key, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) ([]model.AvailabilityRule, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rules []model.AvailabilityRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, false, err
	}
	return rules, true, nil
}

func (c *RedisCache) Set(ctx context.Context, rules []model.AvailabilityRule) error {
	raw, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
