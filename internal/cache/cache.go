package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/config"
	"github.com/haven-shield/insight-engine/internal/metrics"
	"github.com/haven-shield/insight-engine/internal/pipeline"
)

// SnapshotCache keeps the latest analysis snapshot per child so dashboard
// reads do not trigger recomputation.
type SnapshotCache struct {
	client    *redis.Client
	ttl       time.Duration
	logger    *zap.Logger
	collector *metrics.Collector
}

// New creates the snapshot cache.
func New(cfg config.RedisConfig, logger *zap.Logger, collector *metrics.Collector) *SnapshotCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &SnapshotCache{
		client:    client,
		ttl:       cfg.SnapshotTTL,
		logger:    logger,
		collector: collector,
	}
}

func key(childName string) string {
	return "insight:snapshot:" + childName
}

// Put stores the snapshot under the child's key with the configured TTL.
func (c *SnapshotCache) Put(ctx context.Context, snapshot *pipeline.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", snapshot.ID, err)
	}
	if err := c.client.Set(ctx, key(snapshot.ChildName), payload, c.ttl).Err(); err != nil {
		c.count("put", "error")
		return fmt.Errorf("failed to cache snapshot %s: %w", snapshot.ID, err)
	}
	c.count("put", "ok")
	return nil
}

// Get returns the cached snapshot for a child, or nil on a miss.
func (c *SnapshotCache) Get(ctx context.Context, childName string) (*pipeline.Snapshot, error) {
	payload, err := c.client.Get(ctx, key(childName)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.count("get", "miss")
		return nil, nil
	}
	if err != nil {
		c.count("get", "error")
		return nil, fmt.Errorf("failed to read cached snapshot for %s: %w", childName, err)
	}
	var snapshot pipeline.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		// A corrupt cache entry is a miss, not a failure.
		c.logger.Warn("dropping corrupt cached snapshot",
			zap.String("child", childName),
			zap.Error(err))
		c.count("get", "corrupt")
		return nil, nil
	}
	c.count("get", "hit")
	return &snapshot, nil
}

// Invalidate removes a child's cached snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context, childName string) error {
	return c.client.Del(ctx, key(childName)).Err()
}

// Ping verifies connectivity for readiness checks.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}

func (c *SnapshotCache) count(op, outcome string) {
	if c.collector != nil {
		c.collector.SnapshotCacheOps.WithLabelValues(op, outcome).Inc()
	}
}
