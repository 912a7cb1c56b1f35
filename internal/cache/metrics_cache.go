package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

const dashboardPrefix = "sla:dashboard:"

// MetricsCache stores rendered dashboard payloads keyed by period. A miss
// returns (nil, nil); cache failures are never fatal to the caller.
type MetricsCache interface {
	GetDashboard(ctx context.Context, key string) (*domain.DashboardMetrics, error)
	SetDashboard(ctx context.Context, key string, metrics *domain.DashboardMetrics, ttl time.Duration) error
	InvalidateDashboards(ctx context.Context) error
}

// DashboardKey derives the cache key for a dashboard period. Periods are
// truncated to the hour so close-together requests share an entry.
func DashboardKey(start, end time.Time) string {
	return fmt.Sprintf("%s%s:%s",
		dashboardPrefix,
		start.UTC().Truncate(time.Hour).Format("2006-01-02T15"),
		end.UTC().Truncate(time.Hour).Format("2006-01-02T15"),
	)
}

type redisMetricsCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisMetricsCache builds a Redis-backed metrics cache.
func NewRedisMetricsCache(client *redis.Client, logger *zap.Logger) MetricsCache {
	return &redisMetricsCache{client: client, logger: logger}
}

func (c *redisMetricsCache) GetDashboard(ctx context.Context, key string) (*domain.DashboardMetrics, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var metrics domain.DashboardMetrics
	if err := json.Unmarshal(payload, &metrics); err != nil {
		// Stale or corrupt entry; drop it and treat as a miss.
		c.logger.Warn("discarding unreadable dashboard cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return nil, nil
	}
	return &metrics, nil
}

func (c *redisMetricsCache) SetDashboard(ctx context.Context, key string, metrics *domain.DashboardMetrics, ttl time.Duration) error {
	payload, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *redisMetricsCache) InvalidateDashboards(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, dashboardPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

type memoryEntry struct {
	metrics   domain.DashboardMetrics
	expiresAt time.Time
}

type memoryMetricsCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryMetricsCache builds the in-process fallback used when Redis is
// unavailable and in tests.
func NewMemoryMetricsCache() MetricsCache {
	return &memoryMetricsCache{entries: make(map[string]memoryEntry)}
}

func (c *memoryMetricsCache) GetDashboard(_ context.Context, key string) (*domain.DashboardMetrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, nil
	}
	copied := entry.metrics
	return &copied, nil
}

func (c *memoryMetricsCache) SetDashboard(_ context.Context, key string, metrics *domain.DashboardMetrics, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{metrics: *metrics, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *memoryMetricsCache) InvalidateDashboards(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}
