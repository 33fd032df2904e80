// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"influencer-workers/internal/common/errors"
	"influencer-workers/internal/common/logger"
	"influencer-workers/internal/common/metrics"
	"influencer-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// MetricsCache serves pre-computed aggregate metrics from Redis within a
// bounded staleness window. It is read-only from the ranking engine's point
// of view: invalidation happens elsewhere when influencer data mutates, and
// the TTL bounds how stale a served aggregate can be. Cache failures are
// never fatal; the caller falls back to recomputing.
type MetricsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewMetricsCache(client *redis.Client, ttl time.Duration, log logger.Logger) *MetricsCache {
	return &MetricsCache{client: client, ttl: ttl, logger: log}
}

// GetOrCompute returns cached metrics for the influencer under the given
// platform scope, computing and storing them on a miss.
func (c *MetricsCache) GetOrCompute(
	ctx context.Context,
	inf *models.Influencer,
	platforms []string,
	compute func(*models.Influencer, []string) models.PlatformMetrics,
) models.PlatformMetrics {
	key := metricsKey(inf.ID, platforms)

	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		var m models.PlatformMetrics
		if err := json.Unmarshal([]byte(val), &m); err == nil {
			metrics.MetricCacheHits.Inc()
			return m
		}
	} else if err != redis.Nil {
		cacheErr := errors.NewMetricCacheFailedError(err)
		c.logger.Warn("metrics cache read failed", map[string]interface{}{
			"influencerId": inf.ID,
			"errorCode":    string(cacheErr.Code),
			"error":        cacheErr,
		})
	}
	metrics.MetricCacheMisses.Inc()

	m := compute(inf, platforms)

	if data, err := json.Marshal(m); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			cacheErr := errors.NewMetricCacheFailedError(err)
			c.logger.Warn("metrics cache write failed", map[string]interface{}{
				"influencerId": inf.ID,
				"errorCode":    string(cacheErr.Code),
				"error":        cacheErr,
			})
		}
	}
	return m
}

// metricsKey is stable under platform-subset ordering so that scoped
// aggregates for {"instagram","youtube"} and {"youtube","instagram"} share an
// entry.
func metricsKey(influencerID string, platforms []string) string {
	scope := "all"
	if len(platforms) > 0 {
		sorted := make([]string, len(platforms))
		for i, p := range platforms {
			sorted[i] = strings.ToLower(p)
		}
		sort.Strings(sorted)
		scope = strings.Join(sorted, ",")
	}
	return "influencer:metrics:" + influencerID + ":" + scope
}

// GetJSON loads a cached JSON document into dst; found is false on miss or
// on a decode failure.
func (c *MetricsCache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dst) == nil
}

// SetJSON stores a JSON document under the cache TTL. Failures are logged,
// not returned.
func (c *MetricsCache) SetJSON(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}
